package prep

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"career-backend/internal/assistant"
	"career-backend/internal/records"
)

// ErrNoJobDescription is returned when no job description is selected.
var ErrNoJobDescription = errors.New("job description required")

// MsgNoJobDescription is shown to the user for ErrNoJobDescription.
const MsgNoJobDescription = "Please set an active job description first."

// QuestionGenerator is the subset of assistant.Service used here.
type QuestionGenerator interface {
	InterviewQuestions(ctx context.Context, jobDescription string, qt assistant.QuestionType, exclude []string) ([]assistant.QA, error)
}

// RecordResolver returns a record by id, or the active record when id is empty.
type RecordResolver interface {
	Resolve(ctx context.Context, id string) (records.Record, error)
}

// Service generates practice questions for a job description.
type Service struct {
	JobDescriptions RecordResolver
	Assistant       QuestionGenerator
}

// Batch is one generation result. Questions holds only the new questions;
// the caller appends them when loading more.
type Batch struct {
	Type             assistant.QuestionType `json:"type"`
	JobDescriptionID string                 `json:"jobDescriptionId"`
	Questions        []assistant.QA         `json:"questions"`
}

// Generate asks for a fresh set of questions. Questions already shown to the
// user are passed in existing so the provider does not repeat them.
func (s *Service) Generate(ctx context.Context, jobDescriptionID string, qt assistant.QuestionType, existing []string) (Batch, error) {
	jd, err := s.JobDescriptions.Resolve(ctx, jobDescriptionID)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return Batch{}, fmt.Errorf("%w: %v", ErrNoJobDescription, err)
		}
		return Batch{}, err
	}

	exclude := make([]string, 0, len(existing))
	seen := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		exclude = append(exclude, q)
	}

	qs, err := s.Assistant.InterviewQuestions(ctx, jd.Content, qt, exclude)
	if err != nil {
		return Batch{}, err
	}
	return Batch{Type: qt, JobDescriptionID: jd.ID, Questions: qs}, nil
}

// ExportFileName is the download name for a question list.
func ExportFileName(qt assistant.QuestionType) string {
	return "interview_questions_" + strings.ToLower(string(qt)) + ".txt"
}

// Export renders questions as plain text, one Q/A block per question.
func Export(questions []assistant.QA) string {
	var b strings.Builder
	for _, qa := range questions {
		b.WriteString("Q: ")
		b.WriteString(qa.Question)
		b.WriteString("\n\nA: ")
		b.WriteString(qa.Answer)
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}
