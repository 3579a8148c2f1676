package interview

import (
	"errors"
	"sync"
	"time"

	"career-backend/internal/assistant"
	"career-backend/internal/llm"
)

var (
	ErrNotFound     = errors.New("interview session not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState is returned for operations not allowed in the session's current state.
	ErrInvalidState = errors.New("operation not allowed in current interview state")
	// ErrTurnInProgress is returned while another request on the same session awaits the AI.
	ErrTurnInProgress = errors.New("interview turn in progress")
	// ErrNoJobDescription is returned when starting without a job description.
	ErrNoJobDescription = errors.New("job description required")
)

// MsgFeedbackUnavailable replaces the feedback when scoring fails.
const MsgFeedbackUnavailable = "Sorry, I couldn't generate feedback at this time."

// State is the lifecycle position of a session.
type State string

const (
	StateIdle     State = "idle"
	StateActive   State = "active"
	StateFinished State = "finished"
)

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMessage is one visible line of the interview.
type ChatMessage struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Session is one mock interview. turn is held for the whole of an AI round
// trip; mu guards the fields and is only held briefly.
type Session struct {
	turn sync.Mutex
	mu   sync.Mutex

	id               string
	state            State
	jobDescriptionID string
	jobDescription   string
	messages         []ChatMessage
	// history is what the provider sees, including the hidden opening prompt.
	history       []llm.Message
	feedback      *assistant.Feedback
	feedbackError string
	createdAt     time.Time
	updatedAt     time.Time
}

// View is a point-in-time copy of a session.
type View struct {
	ID               string              `json:"id"`
	State            State               `json:"state"`
	JobDescriptionID string              `json:"jobDescriptionId"`
	Messages         []ChatMessage       `json:"messages"`
	Feedback         *assistant.Feedback `json:"feedback,omitempty"`
	FeedbackError    string              `json:"feedbackError,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// view must be called with s.mu held.
func (s *Session) view() View {
	v := View{
		ID:               s.id,
		State:            s.state,
		JobDescriptionID: s.jobDescriptionID,
		Messages:         append([]ChatMessage{}, s.messages...),
		FeedbackError:    s.feedbackError,
		CreatedAt:        s.createdAt,
		UpdatedAt:        s.updatedAt,
	}
	if s.feedback != nil {
		fb := *s.feedback
		v.Feedback = &fb
	}
	return v
}

func (s *Session) snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}
