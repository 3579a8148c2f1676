package assistant

import "strings"

// QuestionType is the flavour of interview questions to generate.
type QuestionType string

const (
	Technical  QuestionType = "Technical"
	Behavioral QuestionType = "Behavioral"
)

// ParseQuestionType is case-insensitive; anything else is invalid.
func ParseQuestionType(raw string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "technical":
		return Technical, true
	case "behavioral", "behavioural":
		return Behavioral, true
	default:
		return "", false
	}
}

// QA is a generated interview question with a model answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// TailoredBullets pairs extracted resume bullets with their rewrites.
type TailoredBullets struct {
	OriginalBullets []string `json:"originalBullets"`
	TailoredBullets []string `json:"tailoredBullets"`
}

// Feedback is the post-interview assessment.
type Feedback struct {
	Rating       float64 `json:"rating"`
	Score        int     `json:"score"`
	FeedbackText string  `json:"feedbackText"`
}
