package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"career-backend/internal/llm"
	"career-backend/internal/shared/server/respond"
)

// RespondError writes the HTTP error for an assistant failure and reports
// whether err was one. Other errors are left to the caller.
func RespondError(c *gin.Context, err error) bool {
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return true
	}
	var aiErr *Error
	if !errors.As(err, &aiErr) {
		return false
	}
	if errors.Is(err, llm.ErrNotConfigured) {
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", aiErr.Message, nil)
		return true
	}
	respond.Error(c, http.StatusBadGateway, "ai_error", aiErr.Message, nil)
	return true
}
