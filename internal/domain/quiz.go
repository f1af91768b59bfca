package domain

import "fmt"

const (
	// OptionsPerQuestion is the fixed number of answer choices per question
	OptionsPerQuestion = 4

	MinQuestionCount     = 1
	MaxQuestionCount     = 20
	DefaultQuestionCount = 5
)

// QuizQuestion is one validated multiple-choice question
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// NewQuizQuestion builds a question and checks its invariants.
// The options slice is copied so later changes by the caller do not leak in.
func NewQuizQuestion(question string, options []string, correctAnswer string) (QuizQuestion, error) {
	q := QuizQuestion{
		Question:      question,
		Options:       append([]string(nil), options...),
		CorrectAnswer: correctAnswer,
	}
	if err := q.Validate(); err != nil {
		return QuizQuestion{}, err
	}
	return q, nil
}

// Validate checks the option count and that the answer matches exactly one option
func (q QuizQuestion) Validate() error {
	if len(q.Options) != OptionsPerQuestion {
		return NewSchemaError(fmt.Sprintf("expected %d options, got %d", OptionsPerQuestion, len(q.Options)))
	}
	switch matches := q.optionMatches(q.CorrectAnswer); {
	case matches == 0:
		return NewSchemaError(fmt.Sprintf("Correct answer '%s' not in options", q.CorrectAnswer))
	case matches > 1:
		return NewSchemaError(fmt.Sprintf("Correct answer '%s' matches %d options", q.CorrectAnswer, matches))
	}
	return nil
}

// HasOption reports whether answer equals one of the options exactly
func (q QuizQuestion) HasOption(answer string) bool {
	return q.optionMatches(answer) > 0
}

func (q QuizQuestion) optionMatches(answer string) int {
	n := 0
	for _, opt := range q.Options {
		if opt == answer {
			n++
		}
	}
	return n
}

// QuizResult is the payload returned for one generation request
type QuizResult struct {
	Questions []QuizQuestion `json:"questions"`
}

// ExtractionInput is an uploaded file as received by the HTTP layer
type ExtractionInput struct {
	Data      []byte
	MediaType string
	Filename  string
}
