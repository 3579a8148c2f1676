package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"career-backend/internal/assistant"
	"career-backend/internal/llm"
	"career-backend/internal/records"
	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/telemetry"
)

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 2 * time.Hour

// Interviewer is the subset of assistant.Service used here.
type Interviewer interface {
	InterviewReply(ctx context.Context, history []llm.Message) (string, error)
	InterviewFeedback(ctx context.Context, jobDescription, transcript string) (assistant.Feedback, error)
}

// RecordResolver returns a record by id, or the active record when id is empty.
type RecordResolver interface {
	Resolve(ctx context.Context, id string) (records.Record, error)
}

// Service keeps interview sessions in memory.
type Service struct {
	AI              Interviewer
	JobDescriptions RecordResolver
	TTL             time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewService constructs a Service. ttl <= 0 uses DefaultTTL.
func NewService(ai Interviewer, jds RecordResolver, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		AI:              ai,
		JobDescriptions: jds,
		TTL:             ttl,
		sessions:        make(map[string]*Session),
		now:             time.Now,
	}
}

// Start opens a new session against the given job description, or the active
// one when jobDescriptionID is empty, and returns it with the AI greeting.
func (s *Service) Start(ctx context.Context, jobDescriptionID string) (View, error) {
	s.Prune()

	now := s.now().UTC()
	sess := &Session{
		id:        uuid.NewString(),
		state:     StateIdle,
		createdAt: now,
		updatedAt: now,
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	v, err := s.Begin(ctx, sess.id, jobDescriptionID)
	if err != nil {
		s.remove(sess.id)
		return View{}, err
	}
	return v, nil
}

// Begin moves an idle session to active and asks the interviewer to open.
func (s *Service) Begin(ctx context.Context, id, jobDescriptionID string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if !sess.turn.TryLock() {
		return View{}, ErrTurnInProgress
	}
	defer sess.turn.Unlock()

	sess.mu.Lock()
	state := sess.state
	sess.mu.Unlock()
	if state != StateIdle {
		return View{}, fmt.Errorf("%w: session is %s", ErrInvalidState, state)
	}

	jd, err := s.JobDescriptions.Resolve(ctx, jobDescriptionID)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return View{}, fmt.Errorf("%w: %v", ErrNoJobDescription, err)
		}
		return View{}, err
	}

	opening := llm.Message{Role: llm.RoleUser, Text: assistant.OpeningMessage(jd.Content)}
	greeting, err := s.AI.InterviewReply(ctx, []llm.Message{opening})
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = StateActive
	sess.jobDescriptionID = jd.ID
	sess.jobDescription = jd.Content
	sess.history = []llm.Message{opening, {Role: llm.RoleModel, Text: greeting}}
	sess.messages = []ChatMessage{{Sender: SenderAI, Text: greeting}}
	sess.updatedAt = s.now().UTC()

	metrics.IncInterviewStarted()
	telemetry.Info("interview.started", map[string]any{
		"session_id":         sess.id,
		"job_description_id": jd.ID,
	})
	return sess.view(), nil
}

// Send submits the candidate's answer and returns the session with the
// interviewer's reply. A failed AI call leaves the session as it was.
func (s *Service) Send(ctx context.Context, id, text string) (View, error) {
	if strings.TrimSpace(text) == "" {
		return View{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if !sess.turn.TryLock() {
		return View{}, ErrTurnInProgress
	}
	defer sess.turn.Unlock()

	sess.mu.Lock()
	if sess.state != StateActive {
		state := sess.state
		sess.mu.Unlock()
		return View{}, fmt.Errorf("%w: session is %s", ErrInvalidState, state)
	}
	history := append(append([]llm.Message{}, sess.history...), llm.Message{Role: llm.RoleUser, Text: text})
	sess.mu.Unlock()

	reply, err := s.AI.InterviewReply(ctx, history)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.history = append(history, llm.Message{Role: llm.RoleModel, Text: reply})
	sess.messages = append(sess.messages,
		ChatMessage{Sender: SenderUser, Text: text},
		ChatMessage{Sender: SenderAI, Text: reply},
	)
	sess.updatedAt = s.now().UTC()
	return sess.view(), nil
}

// End finishes the interview and requests feedback. The session is finished
// even when scoring fails; the failure is reported in FeedbackError.
func (s *Service) End(ctx context.Context, id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if !sess.turn.TryLock() {
		return View{}, ErrTurnInProgress
	}
	defer sess.turn.Unlock()

	sess.mu.Lock()
	if sess.state != StateActive {
		state := sess.state
		sess.mu.Unlock()
		return View{}, fmt.Errorf("%w: session is %s", ErrInvalidState, state)
	}
	sess.state = StateFinished
	sess.updatedAt = s.now().UTC()
	jd := sess.jobDescription
	transcript := scoringTranscript(sess.messages)
	sess.mu.Unlock()

	metrics.IncInterviewEnded()
	fb, err := s.AI.InterviewFeedback(ctx, jd, transcript)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		metrics.IncFeedbackFailed()
		telemetry.Warn("interview.feedback_failed", map[string]any{
			"session_id": sess.id,
			"error":      err,
		})
		sess.feedback = nil
		sess.feedbackError = MsgFeedbackUnavailable
	} else {
		sess.feedback = &fb
		sess.feedbackError = ""
	}
	sess.updatedAt = s.now().UTC()
	telemetry.Info("interview.ended", map[string]any{
		"session_id": sess.id,
		"messages":   len(sess.messages),
		"scored":     err == nil,
	})
	return sess.view(), nil
}

// Reset returns the session to idle with no messages or feedback. The next
// Begin picks its job description afresh.
func (s *Service) Reset(id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	if !sess.turn.TryLock() {
		return View{}, ErrTurnInProgress
	}
	defer sess.turn.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = StateIdle
	sess.messages = nil
	sess.history = nil
	sess.feedback = nil
	sess.feedbackError = ""
	sess.jobDescriptionID = ""
	sess.jobDescription = ""
	sess.updatedAt = s.now().UTC()
	return sess.view(), nil
}

func (s *Service) Get(id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	return sess.snapshot(), nil
}

func (s *Service) Delete(id string) error {
	if _, err := s.lookup(id); err != nil {
		return err
	}
	s.remove(id)
	return nil
}

// Transcript renders the plain-text export of a session.
func (s *Service) Transcript(id string) (string, error) {
	v, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return FormatTranscript(v), nil
}

// Prune drops sessions untouched for longer than TTL and returns how many
// were removed. Sessions with a turn in flight are kept.
func (s *Service) Prune() int {
	cutoff := s.now().UTC().Add(-s.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if !sess.turn.TryLock() {
			continue
		}
		sess.mu.Lock()
		stale := sess.updatedAt.Before(cutoff)
		sess.mu.Unlock()
		sess.turn.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		telemetry.Info("interview.pruned", map[string]any{"removed": removed})
	}
	return removed
}

// Run prunes on every tick until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

func (s *Service) lookup(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Service) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
