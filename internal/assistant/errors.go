package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests rejected before any provider call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedResponse marks provider replies that did not match the requested shape.
	ErrMalformedResponse = errors.New("malformed ai response")
)

// User-facing messages, one per operation.
const (
	MsgSuggestion       = "Failed to get suggestion from AI."
	MsgSmartAction      = "Failed to apply smart action."
	MsgExtract          = "Failed to parse document with AI."
	MsgTailor           = "Failed to generate tailored bullets from AI."
	MsgFeedback         = "Failed to generate interview feedback."
	MsgInterviewer      = "Failed to get a response from the interviewer."
	msgQuestionsPattern = "Failed to generate %s interview questions."
)

// Error is an AI operation failure. Message is safe to show to the user;
// Err carries the cause for logs.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Message
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func questionsMessage(t QuestionType) string {
	return fmt.Sprintf(msgQuestionsPattern, t)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
