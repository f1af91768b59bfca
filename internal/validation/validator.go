package validation

import (
	"strconv"
	"strings"

	"quiz-forge/internal/domain"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateQuestionCount checks that count is within the supported range
func (v *Validator) ValidateQuestionCount(count int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if count < domain.MinQuestionCount || count > domain.MaxQuestionCount {
		errors = append(errors, domain.NewOutOfRangeError("question_count", count, domain.MinQuestionCount, domain.MaxQuestionCount))
	}

	return errors
}

// ParseQuestionCount parses the raw question_count parameter.
// An empty value yields the default count.
func (v *Validator) ParseQuestionCount(raw string) (int, domain.ValidationErrors) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.DefaultQuestionCount, nil
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError("question_count", raw)}
	}

	if errors := v.ValidateQuestionCount(count); len(errors) > 0 {
		return 0, errors
	}
	return count, nil
}

// ValidateUpload validates the uploaded file metadata
func (v *Validator) ValidateUpload(filename string, size int64, maxBytes int64) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(filename) == "" {
		errors = append(errors, domain.NewMissingFieldError("file"))
	}
	if maxBytes > 0 && size > maxBytes {
		errors = append(errors, domain.NewOutOfRangeError("file", size, 0, int(maxBytes)))
	}

	return errors
}
