package prep

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

// RegisterRoutes attaches interview prep routes. middleware guard generation only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	g := rg.Group("/interview-prep")
	generate := append([]gin.HandlerFunc{}, middleware...)
	g.POST("/questions", append(generate, h.generate)...)
	g.POST("/export", h.export)
}

type generateRequest struct {
	Type             string   `json:"type"`
	JobDescriptionID string   `json:"jobDescriptionId"`
	Existing         []string `json:"existing"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	qt, ok := assistant.ParseQuestionType(req.Type)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "type must be Technical or Behavioral", nil)
		return
	}

	batch, err := h.Svc.Generate(c.Request.Context(), req.JobDescriptionID, qt, req.Existing)
	if err != nil {
		if assistant.RespondError(c, err) {
			return
		}
		if errors.Is(err, ErrNoJobDescription) {
			respond.Error(c, http.StatusBadRequest, "validation_error", MsgNoJobDescription, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate questions", nil)
		return
	}
	respond.OK(c, batch)
}

type exportRequest struct {
	Type      string         `json:"type"`
	Questions []assistant.QA `json:"questions"`
}

func (h *Handler) export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	qt, ok := assistant.ParseQuestionType(req.Type)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "type must be Technical or Behavioral", nil)
		return
	}
	if len(req.Questions) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "questions are required", nil)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ExportFileName(qt)+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(Export(req.Questions)))
}
