package llm

import (
	"context"
	"errors"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a conversation.
type Message struct {
	Role Role
	Text string
}

// Attachment is inline binary content sent with the last user message.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is a single provider round trip. When Schema is set the provider
// is asked for JSON conforming to it and Response.Text holds that JSON.
type Request struct {
	// Operation names the caller for logs and metrics.
	Operation   string
	System      string
	Messages    []Message
	Attachments []Attachment
	Schema      *Schema
}

// Prompt builds a single-turn request.
func Prompt(operation, text string) Request {
	return Request{
		Operation: operation,
		Messages:  []Message{{Role: RoleUser, Text: text}},
	}
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the provider's reply.
type Response struct {
	Text  string
	Model string
	Usage *Usage
}

// Client abstracts LLM providers.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

var (
	// ErrNotConfigured is returned when no provider credentials are available.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrEmptyResponse is returned when the provider answered without content.
	ErrEmptyResponse = errors.New("llm response empty")
	// ErrAttachmentUnsupported is returned when a provider cannot take an inline file.
	ErrAttachmentUnsupported = errors.New("llm provider does not accept attachments")
)

// Unconfigured fails every call with ErrNotConfigured.
type Unconfigured struct {
	Reason string
}

// Generate returns ErrNotConfigured.
func (Unconfigured) Generate(context.Context, Request) (Response, error) {
	return Response{}, ErrNotConfigured
}

// LastUserIndex returns the index of the last user message, or -1.
func LastUserIndex(msgs []Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return i
		}
	}
	return -1
}
