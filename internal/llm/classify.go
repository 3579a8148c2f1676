package llm

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Error codes attached to failed calls in logs. Calls are never retried
// automatically; the code only tells an operator what went wrong.
const (
	CodeNotConfigured = "LLM_NOT_CONFIGURED"
	CodeTimeout       = "LLM_TIMEOUT"
	CodeCanceled      = "LLM_CANCELED"
	CodeTransient     = "LLM_TRANSIENT"
	CodeEmpty         = "LLM_EMPTY_RESPONSE"
	CodeUnsupported   = "LLM_UNSUPPORTED"
	CodeProvider      = "LLM_PROVIDER"
)

// Classify maps a provider error to one of the Code constants.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotConfigured):
		return CodeNotConfigured
	case errors.Is(err, ErrEmptyResponse):
		return CodeEmpty
	case errors.Is(err, ErrAttachmentUnsupported):
		return CodeUnsupported
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "client.timeout") || strings.Contains(msg, "timeout") {
		return CodeTimeout
	}
	if strings.Contains(msg, "status 5") ||
		strings.Contains(msg, "server_error") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof") {
		return CodeTransient
	}
	return CodeProvider
}
