package handler

import (
	"io"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/dto"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/middleware"
	"quiz-forge/internal/service"
	"quiz-forge/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service      service.QuizService
	validator    *validation.Validator
	maxFileBytes int64
}

// NewQuizHandler creates a new QuizHandler instance.
// maxFileBytes bounds a single upload; 0 disables the check.
func NewQuizHandler(service service.QuizService, maxFileBytes int64) *QuizHandler {
	return &QuizHandler{
		service:      service,
		validator:    validation.NewValidator(),
		maxFileBytes: maxFileBytes,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from study material
// @Description Extracts text from an uploaded PDF or text file and asks the completion API for multiple-choice questions
// @Tags quiz
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Study material (PDF or text)"
// @Param question_count formData int false "Number of questions (1-20)" default(5)
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Failure 504 {object} middleware.ErrorResponse
// @Router /generate-quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	count, ok := c.Locals(middleware.ValidatedQuestionCountKey).(int)
	if !ok {
		parsed, errs := h.validator.ParseQuestionCount(c.Query("question_count"))
		if len(errs) > 0 {
			return errs
		}
		count = parsed
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	if errs := h.validator.ValidateUpload(fileHeader.Filename, fileHeader.Size, h.maxFileBytes); len(errs) > 0 {
		return errs
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.NewInternalError("Failed to read uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.NewInternalError("Failed to read uploaded file", err)
	}

	mediaType := fileHeader.Header.Get(fiber.HeaderContentType)
	logger.Get().Info("Received file",
		zap.String("filename", fileHeader.Filename),
		zap.String("content_type", mediaType),
		zap.Int64("size", fileHeader.Size),
	)

	result, err := h.service.GenerateQuiz(c.UserContext(), domain.ExtractionInput{
		Data:      data,
		MediaType: mediaType,
		Filename:  fileHeader.Filename,
	}, count)
	if err != nil {
		return err // handled by middleware.ErrorHandler
	}

	return c.JSON(dto.NewGenerateQuizResponse(result))
}
