package tailoring

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"career-backend/internal/assistant"
	"career-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the tailoring route; middleware run first.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{}, middleware...)
	rg.POST("/tailor", append(handlers, h.tailor)...)
}

type tailorRequest struct {
	ResumeID         string `json:"resumeId"`
	JobDescriptionID string `json:"jobDescriptionId"`
}

func (h *Handler) tailor(c *gin.Context) {
	var req tailorRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	res, err := h.Svc.Tailor(c.Request.Context(), req.ResumeID, req.JobDescriptionID)
	if err != nil {
		if assistant.RespondError(c, err) {
			return
		}
		if errors.Is(err, ErrMissingRecords) {
			respond.Error(c, http.StatusBadRequest, "validation_error", MsgMissingRecords, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to tailor resume", nil)
		return
	}
	respond.OK(c, res)
}
