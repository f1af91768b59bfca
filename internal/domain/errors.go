package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Request errors
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"

	// Extraction errors
	CodeExtraction   ErrorCode = "EXTRACTION_ERROR"
	CodeEmptyContent ErrorCode = "EMPTY_CONTENT"

	// Completion API errors
	CodeUpstreamTimeout  ErrorCode = "UPSTREAM_TIMEOUT"
	CodeTransportFailure ErrorCode = "TRANSPORT_FAILURE"
	CodeUpstreamStatus   ErrorCode = "UPSTREAM_STATUS_ERROR"

	// Reply parsing errors
	CodeMalformedEnvelope ErrorCode = "MALFORMED_ENVELOPE"
	CodeJSONSyntax        ErrorCode = "JSON_SYNTAX_ERROR"
	CodeSchema            ErrorCode = "SCHEMA_ERROR"

	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a domain-specific error.
// Message and Context are safe to show to API callers. Cause and Detail
// are diagnostic only and never leave the process except through logs.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
	Detail  string
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext attaches a user-visible key/value pair to the error.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the code of the first DomainError in err's chain,
// or CodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewRateLimitedError() *DomainError {
	return NewError(CodeRateLimited, "Too many quiz generation requests, please retry later", nil)
}

// NewExtractionError reports that the upload could not be decoded with the named encoding.
func NewExtractionError(encoding string, cause error) *DomainError {
	return NewError(CodeExtraction,
		fmt.Sprintf("Could not decode file content (attempted encoding: %s). Please ensure the file is properly encoded text or PDF.", encoding),
		cause,
	).WithContext("encoding", encoding)
}

func NewEmptyContentError() *DomainError {
	return NewError(CodeEmptyContent, "Extracted text content is empty", nil)
}

func NewUpstreamTimeoutError(cause error) *DomainError {
	return NewError(CodeUpstreamTimeout, "Completion API request timed out", cause)
}

func NewTransportFailureError(cause error) *DomainError {
	return NewError(CodeTransportFailure, "Completion API request failed", cause)
}

// NewUpstreamStatusError keeps the raw body as Detail; it may echo request data and is not returned to callers.
func NewUpstreamStatusError(status int, body string) *DomainError {
	err := NewError(CodeUpstreamStatus, fmt.Sprintf("Completion API error (status %d)", status), nil).
		WithContext("upstream_status", status)
	err.Detail = body
	return err
}

func NewMalformedEnvelopeError(reason string) *DomainError {
	return NewError(CodeMalformedEnvelope, "Unexpected completion API response format", errors.New(reason))
}

func NewJSONSyntaxError(cause error, text string) *DomainError {
	err := NewError(CodeJSONSyntax, "Failed to parse API response", cause)
	err.Detail = text
	return err
}

func NewSchemaError(reason string) *DomainError {
	return NewError(CodeSchema, reason, nil)
}
