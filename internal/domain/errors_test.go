package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportFailureError(cause)

	assert.Equal(t, "Completion API request failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Extracted text content is empty", NewEmptyContentError().Error())
}

func TestDomainError_MarshalJSONOmitsDiagnostics(t *testing.T) {
	err := NewUpstreamStatusError(500, "stack trace with sk-secret")
	err.Cause = errors.New("internal cause")

	raw, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"code":"UPSTREAM_STATUS_ERROR","message":"Completion API error (status 500)","context":{"upstream_status":500}}`, string(raw))
}

func TestCodeOfAndIsCode(t *testing.T) {
	wrapped := fmt.Errorf("pipeline: %w", NewSchemaError("question 1: /options: bad"))

	assert.Equal(t, CodeSchema, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, CodeSchema))
	assert.False(t, IsCode(wrapped, CodeJSONSyntax))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.False(t, IsCode(nil, CodeInternal))
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		code ErrorCode
	}{
		{"invalid input", NewInvalidInputError("bad"), CodeInvalidInput},
		{"internal", NewInternalError("oops", nil), CodeInternal},
		{"rate limited", NewRateLimitedError(), CodeRateLimited},
		{"extraction", NewExtractionError("UTF-8", nil), CodeExtraction},
		{"empty content", NewEmptyContentError(), CodeEmptyContent},
		{"timeout", NewUpstreamTimeoutError(nil), CodeUpstreamTimeout},
		{"transport", NewTransportFailureError(nil), CodeTransportFailure},
		{"status", NewUpstreamStatusError(502, ""), CodeUpstreamStatus},
		{"envelope", NewMalformedEnvelopeError("no choices"), CodeMalformedEnvelope},
		{"json", NewJSONSyntaxError(nil, "[{"), CodeJSONSyntax},
		{"schema", NewSchemaError("bad"), CodeSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestNewExtractionError_NamesEncoding(t *testing.T) {
	err := NewExtractionError("windows-1252", errors.New("x"))
	assert.Contains(t, err.Message, "attempted encoding: windows-1252")
	assert.Equal(t, "windows-1252", err.Context["encoding"])
}

func TestNewJSONSyntaxError_KeepsTextOutOfMessage(t *testing.T) {
	err := NewJSONSyntaxError(errors.New("unexpected end"), `[{"question": "Q"`)
	assert.Equal(t, "Failed to parse API response", err.Message)
	assert.Equal(t, `[{"question": "Q"`, err.Detail)
}

func TestWithContext(t *testing.T) {
	err := NewInvalidInputError("bad").WithContext("question_count", 0).WithContext("max", 20)
	assert.Equal(t, map[string]interface{}{"question_count": 0, "max": 20}, err.Context)
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		NewMissingFieldError("file"),
		NewOutOfRangeError("question_count", 0, 1, 20),
	}
	assert.Equal(t, "file is required; question_count must be between 1 and 20", errs.Error())
	assert.Equal(t, CodeInvalidFormat, NewInvalidFormatError("question_count", "x").Code)
}
