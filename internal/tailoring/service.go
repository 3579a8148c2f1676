package tailoring

import (
	"context"
	"errors"
	"fmt"

	"career-backend/internal/assistant"
	"career-backend/internal/records"
)

// ErrMissingRecords is returned when the resume or job description to tailor against is not set.
var ErrMissingRecords = errors.New("resume and job description required")

// MsgMissingRecords is shown to the user for ErrMissingRecords.
const MsgMissingRecords = "Please set an active resume and an active job description."

// Tailorer is the subset of assistant.Service used here.
type Tailorer interface {
	TailorBullets(ctx context.Context, resume, jobDescription string) (assistant.TailoredBullets, error)
}

// RecordResolver returns a record by id, or the active record when id is empty.
type RecordResolver interface {
	Resolve(ctx context.Context, id string) (records.Record, error)
}

// Service tailors a resume toward a job description.
type Service struct {
	Resumes         RecordResolver
	JobDescriptions RecordResolver
	Assistant       Tailorer
}

// Result is a tailoring outcome with the records it was computed from.
type Result struct {
	ResumeID         string   `json:"resumeId"`
	JobDescriptionID string   `json:"jobDescriptionId"`
	OriginalBullets  []string `json:"originalBullets"`
	TailoredBullets  []string `json:"tailoredBullets"`
}

// Tailor uses the given ids, falling back to the active records for blank ones.
func (s *Service) Tailor(ctx context.Context, resumeID, jobDescriptionID string) (Result, error) {
	resume, err := s.Resumes.Resolve(ctx, resumeID)
	if err != nil {
		return Result{}, missing(err)
	}
	jd, err := s.JobDescriptions.Resolve(ctx, jobDescriptionID)
	if err != nil {
		return Result{}, missing(err)
	}

	out, err := s.Assistant.TailorBullets(ctx, resume.Content, jd.Content)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ResumeID:         resume.ID,
		JobDescriptionID: jd.ID,
		OriginalBullets:  out.OriginalBullets,
		TailoredBullets:  out.TailoredBullets,
	}, nil
}

func missing(err error) error {
	if errors.Is(err, records.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrMissingRecords, err)
	}
	return err
}
