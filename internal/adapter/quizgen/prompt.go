package quizgen

import "fmt"

// SystemInstruction is sent as the system message of every completion call
const SystemInstruction = "You are a quiz generator that creates multiple choice questions. Always respond with valid JSON arrays."

const quizPromptTemplate = `Create %d multiple choice questions based on this study material. Format your response as a JSON array.

Example format:
[
    {
        "question": "What is X?",
        "options": ["A", "B", "C", "D"],
        "correct_answer": "A"
    }
]

Rules:
1. Response must be a valid JSON array containing exactly %d objects
2. Each question must have exactly 4 options
3. The correct_answer must exactly match one of the options
4. No explanations or additional text, only the JSON array

Study material:
%s`

// BuildQuizPrompt renders the user prompt. questionCount is expected to be range-checked already.
func BuildQuizPrompt(text string, questionCount int) string {
	return fmt.Sprintf(quizPromptTemplate, questionCount, questionCount, text)
}
