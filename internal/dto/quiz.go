package dto

import "quiz-forge/internal/domain"

// QuestionResponse represents one generated question in the API response
// @Description Multiple-choice question
type QuestionResponse struct {
	Question      string   `json:"question" example:"What is the capital of France?"`
	Options       []string `json:"options" example:"Paris,London,Berlin,Madrid"`
	CorrectAnswer string   `json:"correct_answer" example:"Paris"`
}

// GenerateQuizResponse represents the quiz returned for an upload
// @Description Generated quiz
type GenerateQuizResponse struct {
	Questions []QuestionResponse `json:"questions"`
}

// HealthResponse represents the liveness probe payload
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

// NewGenerateQuizResponse converts a domain result into its wire form.
// A nil or empty result still encodes as an empty questions array.
func NewGenerateQuizResponse(result *domain.QuizResult) GenerateQuizResponse {
	resp := GenerateQuizResponse{Questions: []QuestionResponse{}}
	if result == nil {
		return resp
	}
	for _, q := range result.Questions {
		resp.Questions = append(resp.Questions, QuestionResponse{
			Question:      q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return resp
}
