package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quiz-forge/internal/adapter/quizgen"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/validation"

	"go.uber.org/zap"
)

// QuizService defines the interface for quiz generation
type QuizService interface {
	GenerateQuiz(ctx context.Context, input domain.ExtractionInput, questionCount int) (*domain.QuizResult, error)
}

// quizService implements QuizService
type quizService struct {
	extractor domain.TextExtractor
	client    domain.CompletionClient
	parser    domain.ResponseParser
	validator *validation.Validator
}

// NewQuizService creates a new instance of quizService
func NewQuizService(
	extractor domain.TextExtractor,
	client domain.CompletionClient,
	parser domain.ResponseParser,
) QuizService {
	return &quizService{
		extractor: extractor,
		client:    client,
		parser:    parser,
		validator: validation.NewValidator(),
	}
}

// GenerateQuiz implements QuizService.
// The pipeline runs once per call: extract, prompt, complete, parse. Nothing is retried.
func (s *quizService) GenerateQuiz(ctx context.Context, input domain.ExtractionInput, questionCount int) (result *domain.QuizResult, err error) {
	l := logger.Get()

	defer func() {
		if r := recover(); r != nil {
			l.Error("Recovered panic in quiz pipeline", zap.Any("panic", r), zap.Stack("stack"))
			result = nil
			err = domain.NewInternalError("An unexpected error occurred", fmt.Errorf("panic: %v", r))
		}
	}()

	if errs := s.validator.ValidateQuestionCount(questionCount); len(errs) > 0 {
		return nil, domain.NewInvalidInputError(errs.Error()).
			WithContext("question_count", questionCount)
	}

	l.Info("Generating quiz",
		zap.String("filename", input.Filename),
		zap.String("content_type", input.MediaType),
		zap.Int("size", len(input.Data)),
		zap.Int("question_count", questionCount),
	)

	text, err := s.extractor.Extract(input.Data, input.MediaType)
	if err != nil {
		return nil, asDomainError(err, "Failed to extract text from file")
	}
	l.Info("Extracted text", zap.Int("length", len(text)))

	if strings.TrimSpace(text) == "" {
		return nil, domain.NewEmptyContentError()
	}

	prompt := domain.CompletionPrompt{
		System: quizgen.SystemInstruction,
		User:   quizgen.BuildQuizPrompt(text, questionCount),
	}

	reply, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, asDomainError(err, "Failed to generate quiz")
	}

	questions, err := s.parser.Parse(reply)
	if err != nil {
		return nil, asDomainError(err, "Failed to parse quiz")
	}

	if len(questions) != questionCount {
		l.Warn("Generated question count differs from request",
			zap.Int("requested", questionCount),
			zap.Int("received", len(questions)),
		)
	}

	return &domain.QuizResult{Questions: questions}, nil
}

// asDomainError passes domain errors through and hides everything else behind INTERNAL_ERROR
func asDomainError(err error, message string) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return domain.NewInternalError(message, err)
}
