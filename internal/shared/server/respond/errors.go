package respond

import (
	"github.com/gin-gonic/gin"

	"career-backend/internal/shared/telemetry"
)

// ErrorBody is the payload every failed request carries under "error".
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and aborts the chain with the error envelope.
// Client errors log at warn, server errors at error.
func Error(c *gin.Context, status int, code, message string, details any) {
	log := telemetry.Warn
	if status >= 500 {
		log = telemetry.Error
	}
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("requestId"),
	}
	if uid := c.GetString("userId"); uid != "" {
		fields["user_id"] = uid
	}
	log("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}})
}
