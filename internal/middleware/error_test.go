package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/fail", func(c *fiber.Ctx) error { return err })
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandler_DomainErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", domain.NewInvalidInputError("question_count must be between 1 and 20"), http.StatusBadRequest},
		{"extraction", domain.NewExtractionError("UTF-8", errors.New("bad bytes")), http.StatusBadRequest},
		{"empty content", domain.NewEmptyContentError(), http.StatusBadRequest},
		{"rate limited", domain.NewRateLimitedError(), http.StatusTooManyRequests},
		{"timeout", domain.NewUpstreamTimeoutError(errors.New("deadline")), http.StatusGatewayTimeout},
		{"transport", domain.NewTransportFailureError(errors.New("refused")), http.StatusInternalServerError},
		{"upstream status", domain.NewUpstreamStatusError(401, "bad key"), http.StatusInternalServerError},
		{"malformed envelope", domain.NewMalformedEnvelopeError("no choices"), http.StatusInternalServerError},
		{"json syntax", domain.NewJSONSyntaxError(errors.New("eof"), "[{"), http.StatusInternalServerError},
		{"schema", domain.NewSchemaError("question 1: /options: bad"), http.StatusInternalServerError},
		{"internal", domain.NewInternalError("An unexpected error occurred", errors.New("nil map")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newErrorApp(tt.err).Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, string(domain.CodeOf(tt.err)), body["code"])
			assert.EqualValues(t, tt.status, body["status"])
		})
	}
}

func TestErrorHandler_DoesNotLeakDiagnostics(t *testing.T) {
	err := domain.NewUpstreamStatusError(401, `{"error":"key sk-secret is invalid"}`)

	resp, testErr := newErrorApp(err).Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, testErr)

	body := decode(t, resp)
	assert.Equal(t, "Completion API error (status 401)", body["message"])
	assert.Equal(t, map[string]interface{}{"upstream_status": float64(401)}, body["details"])

	raw, _ := json.Marshal(body)
	assert.NotContains(t, string(raw), "sk-secret")
}

func TestErrorHandler_ExtractionDetailsIncludeEncoding(t *testing.T) {
	resp, err := newErrorApp(domain.NewExtractionError("windows-1252", errors.New("x"))).
		Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)

	body := decode(t, resp)
	assert.Equal(t, map[string]interface{}{"encoding": "windows-1252"}, body["details"])
	assert.Contains(t, body["message"], "windows-1252")
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	errs := domain.ValidationErrors{domain.NewOutOfRangeError("question_count", 21, 1, 20)}

	resp, err := newErrorApp(errs).Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, string(domain.CodeValidation), body["code"])
	fieldErrs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "question_count", fieldErrs[0].(map[string]interface{})["field"])
}

func TestErrorHandler_FiberAndUnknownErrors(t *testing.T) {
	resp, err := newErrorApp(fiber.NewError(http.StatusRequestEntityTooLarge, "Request Entity Too Large")).
		Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "HTTP_ERROR", decode(t, resp)["code"])

	resp, err = newErrorApp(errors.New("raw driver failure")).Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, string(domain.CodeInternal), body["code"])
	assert.Equal(t, "Internal server error", body["message"])
}
