package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

const questionSchemaURL = "https://quiz-forge.local/schemas/quiz_question.json"

const questionSchema = `{
	"type": "object",
	"required": ["question", "options", "correct_answer"],
	"properties": {
		"question": {"type": "string"},
		"options": {
			"type": "array",
			"items": {"type": "string"},
			"minItems": 4,
			"maxItems": 4
		},
		"correct_answer": {"type": "string"}
	}
}`

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*")
	trailingFence = "```"
)

// ResponseParser turns the completion envelope into validated quiz questions.
// It is stateless after construction and safe for concurrent use.
type ResponseParser struct {
	schema *jsonschema.Schema
}

// NewResponseParser compiles the per-question schema
func NewResponseParser() (*ResponseParser, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(questionSchemaURL, strings.NewReader(questionSchema)); err != nil {
		return nil, fmt.Errorf("add quiz question schema: %w", err)
	}
	schema, err := compiler.Compile(questionSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile quiz question schema: %w", err)
	}
	return &ResponseParser{schema: schema}, nil
}

// Parse implements domain.ResponseParser
func (p *ResponseParser) Parse(reply domain.CompletionReply) ([]domain.QuizQuestion, error) {
	l := logger.Get()

	content, err := messageContent(reply)
	if err != nil {
		l.Error("Completion reply has no message content", zap.Error(err))
		return nil, err
	}

	content = stripCodeFence(content)

	arrayText, err := sliceJSONArray(content)
	if err != nil {
		l.Error("Validation error", zap.Error(err), zap.String("content", content))
		return nil, err
	}

	var data interface{}
	if parseErr := json.Unmarshal([]byte(arrayText), &data); parseErr != nil {
		// Single recovery pass: raw newlines inside strings are the usual culprit
		collapsed := collapseWhitespace(arrayText)
		l.Debug("Retrying JSON parse with collapsed whitespace", zap.Error(parseErr))
		data = nil
		if retryErr := json.Unmarshal([]byte(collapsed), &data); retryErr != nil {
			l.Error("JSON parsing error", zap.Error(parseErr), zap.String("content", arrayText))
			return nil, domain.NewJSONSyntaxError(parseErr, arrayText)
		}
	}

	items, ok := data.([]interface{})
	if !ok {
		return nil, domain.NewSchemaError("Quiz data is not a list")
	}

	questions := make([]domain.QuizQuestion, 0, len(items))
	for i, item := range items {
		question, err := p.coerce(i+1, item)
		if err != nil {
			l.Error("Validation error", zap.Int("question_index", i+1), zap.Error(err))
			return nil, err
		}
		questions = append(questions, question)
	}

	return questions, nil
}

func (p *ResponseParser) coerce(index int, item interface{}) (domain.QuizQuestion, error) {
	if err := p.schema.Validate(item); err != nil {
		return domain.QuizQuestion{}, domain.NewSchemaError(fmt.Sprintf("question %d: %s", index, schemaReason(err)))
	}

	obj := item.(map[string]interface{})
	rawOptions := obj["options"].([]interface{})
	options := make([]string, len(rawOptions))
	for i, opt := range rawOptions {
		options[i] = opt.(string)
	}

	return domain.NewQuizQuestion(obj["question"].(string), options, obj["correct_answer"].(string))
}

// messageContent reads choices[0].message.content from the envelope
func messageContent(reply domain.CompletionReply) (string, error) {
	choices, ok := reply["choices"].([]interface{})
	if !ok {
		return "", domain.NewMalformedEnvelopeError("missing choices array")
	}
	if len(choices) == 0 {
		return "", domain.NewMalformedEnvelopeError("empty choices array")
	}
	choice, ok := choices[0].(map[string]interface{})
	if !ok {
		return "", domain.NewMalformedEnvelopeError("choices[0] is not an object")
	}
	message, ok := choice["message"].(map[string]interface{})
	if !ok {
		return "", domain.NewMalformedEnvelopeError("choices[0].message is missing")
	}
	content, ok := message["content"].(string)
	if !ok {
		return "", domain.NewMalformedEnvelopeError("choices[0].message.content is not a string")
	}
	return content, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	content = leadingFence.ReplaceAllString(content, "")
	content = strings.TrimSuffix(content, trailingFence)
	return strings.TrimSpace(content)
}

func sliceJSONArray(content string) (string, error) {
	if strings.HasPrefix(content, "[") {
		return content, nil
	}
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return "", domain.NewSchemaError("no JSON array found")
	}
	return content[start : end+1], nil
}

// collapseWhitespace replaces every whitespace run, newlines included, with one space
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func schemaReason(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	location := ve.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("%s: %s", location, ve.Message)
}

var _ domain.ResponseParser = (*ResponseParser)(nil)
