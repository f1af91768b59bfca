package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"go.uber.org/zap"
)

// maxLoggedBody bounds how much of an upstream body reaches the debug log
const maxLoggedBody = 1000

// HTTPClient calls an OpenAI-compatible chat-completion endpoint directly
type HTTPClient struct {
	cfg        config.LLMConfig
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTPClient. A nil httpClient gets a pooled default transport.
func NewHTTPClient(cfg config.LLMConfig, httpClient *http.Client) (*HTTPClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion API key cannot be empty")
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("completion API URL cannot be empty")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("completion timeout must be positive")
	}
	if httpClient == nil {
		httpClient = newPooledHTTPClient()
	}
	return &HTTPClient{cfg: cfg, httpClient: httpClient}, nil
}

func newPooledHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Complete implements domain.CompletionClient
func (c *HTTPClient) Complete(ctx context.Context, prompt domain.CompletionPrompt) (domain.CompletionReply, error) {
	l := logger.Get()

	body, err := json.Marshal(buildRequest(c.cfg, prompt))
	if err != nil {
		return nil, domain.NewInternalError("failed to encode completion request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewInternalError("failed to build completion request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		l.Error("Completion API request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		l.Error("Failed to read completion API response", zap.Error(err))
		return nil, classifyTransportError(ctx, err)
	}

	l.Info("Completion API response status",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)
	l.Debug("Raw completion response", zap.String("body", truncate(string(raw), maxLoggedBody)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewUpstreamStatusError(resp.StatusCode, string(raw))
	}

	return decodeReply(raw)
}

func buildRequest(cfg config.LLMConfig, prompt domain.CompletionPrompt) domain.CompletionRequest {
	req := domain.CompletionRequest{
		Model: cfg.Model,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: prompt.System},
			{Role: domain.RoleUser, Content: prompt.User},
		},
		Temperature: cfg.Temperature,
	}
	if cfg.MaxTokens > 0 {
		req.MaxTokens = cfg.MaxTokens
	}
	return req
}

// decodeReply decodes the top-level envelope object only
func decodeReply(raw []byte) (domain.CompletionReply, error) {
	var reply domain.CompletionReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, domain.NewMalformedEnvelopeError(fmt.Sprintf("response body is not a JSON object: %v", err))
	}
	if reply == nil {
		return nil, domain.NewMalformedEnvelopeError("response body is null")
	}
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ domain.CompletionClient = (*HTTPClient)(nil)
