package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

const chatCompletionsPath = "/chat/completions"

// LangChainClient talks to the same OpenAI-compatible endpoint through langchaingo
type LangChainClient struct {
	llm *openai.LLM
	cfg config.LLMConfig
}

// NewLangChainClient creates a new LangChainClient. A nil httpClient gets a pooled default transport.
func NewLangChainClient(cfg config.LLMConfig, httpClient *http.Client) (*LangChainClient, error) {
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

	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(baseURL(cfg.APIURL)),
		openai.WithHTTPClient(&statusCapturingDoer{client: httpClient}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchaingo client: %w", err)
	}

	return &LangChainClient{llm: llm, cfg: cfg}, nil
}

// baseURL strips the endpoint path langchaingo appends on its own
func baseURL(apiURL string) string {
	trimmed := strings.TrimSuffix(apiURL, "/")
	return strings.TrimSuffix(trimmed, chatCompletionsPath)
}

// Complete implements domain.CompletionClient
func (c *LangChainClient) Complete(ctx context.Context, prompt domain.CompletionPrompt) (domain.CompletionReply, error) {
	l := logger.Get()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, prompt.System),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt.User),
	}
	opts := []llms.CallOption{llms.WithTemperature(c.cfg.Temperature)}
	if c.cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.cfg.MaxTokens))
	}

	start := time.Now()
	resp, err := c.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		l.Error("Completion API request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		if errors.Is(err, openai.ErrEmptyResponse) {
			return nil, domain.NewMalformedEnvelopeError("empty choices array")
		}
		if isDecodeError(err) {
			return nil, domain.NewMalformedEnvelopeError(fmt.Sprintf("response body is not a JSON object: %v", err))
		}
		return nil, classifyTransportError(ctx, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, domain.NewMalformedEnvelopeError("empty choices array")
	}

	content := resp.Choices[0].Content
	l.Info("Completion API response received",
		zap.Int("choices", len(resp.Choices)),
		zap.Int("bytes", len(content)),
		zap.Duration("elapsed", time.Since(start)),
	)
	l.Debug("Raw completion content", zap.String("content", truncate(content, maxLoggedBody)))

	return domain.CompletionReply{
		"choices": []interface{}{
			map[string]interface{}{
				"index": float64(0),
				"message": map[string]interface{}{
					"role":    domain.RoleAssistant,
					"content": content,
				},
			},
		},
	}, nil
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

var _ domain.CompletionClient = (*LangChainClient)(nil)
