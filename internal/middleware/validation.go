package middleware

import (
	"quiz-forge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidatedQuestionCountKey holds the parsed question_count in fiber.Ctx locals
const ValidatedQuestionCountKey = "validated_question_count"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateQuestionCount validates question_count from the multipart form or the query string.
// The form field wins when both are present.
func (vm *ValidationMiddleware) ValidateQuestionCount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bodyFormValue(c, "question_count")
		if raw == "" {
			raw = c.Query("question_count")
		}

		count, errors := vm.validator.ParseQuestionCount(raw)
		if len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals(ValidatedQuestionCountKey, count)
		return c.Next()
	}
}

// bodyFormValue reads a field from the request body only.
// fiber's FormValue consults the query string first, which would invert the precedence.
func bodyFormValue(c *fiber.Ctx, key string) string {
	if form, err := c.MultipartForm(); err == nil {
		if values := form.Value[key]; len(values) > 0 {
			return values[0]
		}
		return ""
	}
	return string(c.Request().PostArgs().Peek(key))
}
