package suggestions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"career-backend/internal/assistant"
	"career-backend/internal/records"
)

// Assistant is the subset of assistant.Service used here.
type Assistant interface {
	SuggestTitle(ctx context.Context, kind assistant.Kind, content string) (string, error)
	Improve(ctx context.Context, kind assistant.Kind, action assistant.Action, title, content string) (string, error)
}

// RecordSource reads stored records.
type RecordSource interface {
	Get(ctx context.Context, id string) (records.Record, error)
}

// Service runs title suggestions and smart actions for one record kind.
// Results are returned to the caller; nothing is saved.
type Service struct {
	Kind      records.Kind
	Assistant Assistant
	Records   RecordSource
}

// Input is the editor state a suggestion works from. When RecordID is set,
// blank Title and Content are filled from the stored record.
type Input struct {
	RecordID string
	Title    string
	Content  string
}

func (s *Service) SuggestTitle(ctx context.Context, in Input) (string, error) {
	in, err := s.fill(ctx, in)
	if err != nil {
		return "", err
	}
	return s.Assistant.SuggestTitle(ctx, assistant.Kind(s.Kind), in.Content)
}

// Improve applies the named smart action and returns the new content.
func (s *Service) Improve(ctx context.Context, rawAction string, in Input) (assistant.Action, string, error) {
	in, err := s.fill(ctx, in)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Content) == "" {
		return "", "", fmt.Errorf("%w: add content or a title first", assistant.ErrInvalidInput)
	}
	kind := assistant.Kind(s.Kind)
	action := assistant.ParseAction(kind, rawAction)
	out, err := s.Assistant.Improve(ctx, kind, action, in.Title, in.Content)
	if err != nil {
		return action, "", err
	}
	return action, out, nil
}

func (s *Service) fill(ctx context.Context, in Input) (Input, error) {
	if strings.TrimSpace(in.RecordID) == "" || s.Records == nil {
		return in, nil
	}
	rec, err := s.Records.Get(ctx, in.RecordID)
	if err != nil {
		return in, err
	}
	if strings.TrimSpace(in.Title) == "" {
		in.Title = rec.Title
	}
	if strings.TrimSpace(in.Content) == "" {
		in.Content = rec.Content
	}
	return in, nil
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, records.ErrNotFound)
}
