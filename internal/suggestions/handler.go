package suggestions

import (
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

// RegisterRoutes attaches the AI editor routes under /<kind path>. The
// middleware run before the handlers, typically the AI rate limiter.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	base := "/" + h.Svc.Kind.Path()
	rg.POST(base+"/suggest-title", chain(middleware, h.suggestTitle)...)
	rg.POST(base+"/improve", chain(middleware, h.improve)...)
	rg.GET(base+"/smart-actions", h.actions)
}

type suggestRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Action  string `json:"action"`
}

func (h *Handler) suggestTitle(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	title, err := h.Svc.SuggestTitle(c.Request.Context(), Input{RecordID: req.ID, Title: req.Title, Content: req.Content})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"title": title})
}

func (h *Handler) improve(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	action, content, err := h.Svc.Improve(c.Request.Context(), req.Action, Input{RecordID: req.ID, Title: req.Title, Content: req.Content})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"action": action, "content": content})
}

func (h *Handler) actions(c *gin.Context) {
	respond.OK(c, gin.H{"actions": assistant.Actions(assistant.Kind(h.Svc.Kind))})
}

func (h *Handler) fail(c *gin.Context, err error) {
	if assistant.RespondError(c, err) {
		return
	}
	if IsNotFound(err) {
		respond.Error(c, http.StatusNotFound, "not_found", h.Svc.Kind.Label()+" not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate suggestion", nil)
}

func chain(middleware []gin.HandlerFunc, last gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware)+1)
	out = append(out, middleware...)
	return append(out, last)
}
