package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/telemetry"
)

// Service owns one collection. Every mutation loads the snapshot, changes it
// and writes it back while holding mu.
type Service struct {
	Kind Kind
	Repo Repo

	mu  sync.Mutex
	now func() time.Time
}

// NewService constructs a Service for kind.
func NewService(kind Kind, repo Repo) *Service {
	return &Service{Kind: kind, Repo: repo, now: time.Now}
}

// List returns records in insertion order and the active id ("" when none).
func (s *Service) List(ctx context.Context) (Snapshot, error) {
	return s.Repo.Load(ctx, s.Kind)
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	snap, err := s.Repo.Load(ctx, s.Kind)
	if err != nil {
		return Record{}, err
	}
	i := snap.index(id)
	if i < 0 {
		return Record{}, ErrNotFound
	}
	return snap.Records[i], nil
}

// Add appends a new record. The id is the creation time in unix milliseconds,
// moved forward until it is unused.
func (s *Service) Add(ctx context.Context, title, content string) (Record, error) {
	title, content, err := validate(title, content)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Repo.Load(ctx, s.Kind)
	if err != nil {
		return Record{}, err
	}
	now := s.now().UTC()
	rec := Record{
		ID:        nextID(snap, now),
		Title:     title,
		Content:   content,
		UpdatedAt: now,
	}
	snap.Records = append(snap.Records, rec)
	if err := s.Repo.SaveRecords(ctx, s.Kind, snap.Records); err != nil {
		return Record{}, err
	}
	s.mutated("add", rec.ID)
	return rec, nil
}

// Update replaces title and content of an existing record.
func (s *Service) Update(ctx context.Context, id, title, content string) (Record, error) {
	title, content, err := validate(title, content)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Repo.Load(ctx, s.Kind)
	if err != nil {
		return Record{}, err
	}
	i := snap.index(id)
	if i < 0 {
		return Record{}, ErrNotFound
	}
	snap.Records[i].Title = title
	snap.Records[i].Content = content
	snap.Records[i].UpdatedAt = s.now().UTC()
	if err := s.Repo.SaveRecords(ctx, s.Kind, snap.Records); err != nil {
		return Record{}, err
	}
	s.mutated("update", id)
	return snap.Records[i], nil
}

// Delete removes a record and clears the active pointer if it referenced it.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Repo.Load(ctx, s.Kind)
	if err != nil {
		return err
	}
	i := snap.index(id)
	if i < 0 {
		return ErrNotFound
	}
	// Clear the pointer first so a failed save never leaves it dangling.
	if snap.ActiveID == id {
		if err := s.Repo.SaveActive(ctx, s.Kind, ""); err != nil {
			return err
		}
	}
	snap.Records = append(snap.Records[:i], snap.Records[i+1:]...)
	if err := s.Repo.SaveRecords(ctx, s.Kind, snap.Records); err != nil {
		if snap.ActiveID == id {
			telemetry.Warn("records.delete_partial", map[string]any{
				"kind": string(s.Kind),
				"id":   id,
				"err":  err,
			})
		}
		return err
	}
	s.mutated("delete", id)
	return nil
}

// SetActive points the active pointer at id, or clears it when id is empty.
func (s *Service) SetActive(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Repo.Load(ctx, s.Kind)
	if err != nil {
		return "", err
	}
	if id != "" && snap.index(id) < 0 {
		return "", ErrNotFound
	}
	if err := s.Repo.SaveActive(ctx, s.Kind, id); err != nil {
		return "", err
	}
	s.mutated("set_active", id)
	return id, nil
}

// Toggle makes id active, or clears the pointer if id is already active.
func (s *Service) Toggle(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Repo.Load(ctx, s.Kind)
	if err != nil {
		return "", err
	}
	if snap.index(id) < 0 {
		return "", ErrNotFound
	}
	next := id
	if snap.ActiveID == id {
		next = ""
	}
	if err := s.Repo.SaveActive(ctx, s.Kind, next); err != nil {
		return "", err
	}
	s.mutated("toggle_active", id)
	return next, nil
}

// Active returns the active record. A dangling pointer reads as not found.
func (s *Service) Active(ctx context.Context) (Record, error) {
	snap, err := s.Repo.Load(ctx, s.Kind)
	if err != nil {
		return Record{}, err
	}
	if snap.ActiveID == "" {
		return Record{}, ErrNotFound
	}
	i := snap.index(snap.ActiveID)
	if i < 0 {
		return Record{}, ErrNotFound
	}
	return snap.Records[i], nil
}

// Resolve returns the record with id, or the active record when id is empty.
func (s *Service) Resolve(ctx context.Context, id string) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return s.Active(ctx)
	}
	return s.Get(ctx, id)
}

func (s *Service) mutated(op, id string) {
	metrics.IncRecordMutation()
	telemetry.Info("record.mutated", map[string]any{
		"kind": string(s.Kind),
		"op":   op,
		"id":   id,
	})
}

func validate(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return "", "", fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	return title, content, nil
}

func nextID(snap Snapshot, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if snap.index(id) < 0 {
			return id
		}
		ms++
	}
}
