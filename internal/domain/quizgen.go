package domain

import "context"

// Chat message roles understood by the completion API
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of a chat-completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the wire body sent to the completion API
type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// CompletionPrompt holds the two instructions for a single completion call
type CompletionPrompt struct {
	System string
	User   string
}

// CompletionReply is the decoded top-level JSON object returned by the completion API.
// The model's answer is nested inside it at choices[0].message.content.
type CompletionReply map[string]interface{}

// TextExtractor turns uploaded bytes into plain text
type TextExtractor interface {
	Extract(data []byte, mediaType string) (string, error)
}

// CompletionClient performs one chat-completion call
type CompletionClient interface {
	Complete(ctx context.Context, prompt CompletionPrompt) (CompletionReply, error)
}

// ResponseParser turns a completion reply into validated quiz questions
type ResponseParser interface {
	Parse(reply CompletionReply) ([]QuizQuestion, error)
}
