package service

import (
	"context"

	"quiz-forge/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockTextExtractor ---
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(data []byte, mediaType string) (string, error) {
	args := m.Called(data, mediaType)
	return args.String(0), args.Error(1)
}

var _ domain.TextExtractor = (*MockTextExtractor)(nil)

// --- MockCompletionClient ---
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, prompt domain.CompletionPrompt) (domain.CompletionReply, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CompletionReply), args.Error(1)
}

var _ domain.CompletionClient = (*MockCompletionClient)(nil)

// --- MockResponseParser ---
type MockResponseParser struct {
	mock.Mock
}

func (m *MockResponseParser) Parse(reply domain.CompletionReply) ([]domain.QuizQuestion, error) {
	args := m.Called(reply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizQuestion), args.Error(1)
}

var _ domain.ResponseParser = (*MockResponseParser)(nil)
