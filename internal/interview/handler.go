package interview

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"career-backend/internal/assistant"
	"career-backend/internal/shared/server/middleware"
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

// RegisterRoutes attaches interview routes. guards run before the routes that
// call the AI provider.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	ai := func(last gin.HandlerFunc) []gin.HandlerFunc {
		out := make([]gin.HandlerFunc, 0, len(guards)+1)
		out = append(out, guards...)
		return append(out, last)
	}

	g := rg.Group("/interviews")
	g.Use(func(c *gin.Context) {
		if id := c.Param("id"); id != "" {
			middleware.SetLogField(c, "session_id", id)
		}
		c.Next()
	})
	g.POST("", ai(h.start)...)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/start", ai(h.begin)...)
	g.POST("/:id/messages", ai(h.send)...)
	g.POST("/:id/end", ai(h.end)...)
	g.POST("/:id/reset", h.reset)
	g.GET("/:id/transcript", h.transcript)
}

type startRequest struct {
	JobDescriptionID string `json:"jobDescriptionId"`
}

type messageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) start(c *gin.Context) {
	var req startRequest
	if !bindOptional(c, &req) {
		return
	}
	v, err := h.Svc.Start(c.Request.Context(), req.JobDescriptionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Created(c, v)
}

func (h *Handler) begin(c *gin.Context) {
	var req startRequest
	if !bindOptional(c, &req) {
		return
	}
	v, err := h.Svc.Begin(c.Request.Context(), c.Param("id"), req.JobDescriptionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.Svc.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) send(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	v, err := h.Svc.Send(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) end(c *gin.Context) {
	v, err := h.Svc.End(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) reset(c *gin.Context) {
	v, err := h.Svc.Reset(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) transcript(c *gin.Context) {
	text, err := h.Svc.Transcript(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+TranscriptFileName+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *Handler) fail(c *gin.Context, err error) {
	if assistant.RespondError(c, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "interview session not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNoJobDescription):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Please set an active job description first.", nil)
	case errors.Is(err, ErrTurnInProgress):
		respond.Error(c, http.StatusConflict, "turn_in_progress", "wait for the interviewer to respond", nil)
	case errors.Is(err, ErrInvalidState):
		respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "interview request failed", nil)
	}
}

// bindOptional decodes a JSON body when one was sent.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return false
	}
	return true
}
