package records

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"career-backend/internal/shared/server/middleware"
	"career-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to one collection service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the collection routes under /<kind path>.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/" + h.Svc.Kind.Path())
	g.Use(func(c *gin.Context) {
		middleware.SetLogField(c, "record_kind", string(h.Svc.Kind))
		c.Next()
	})
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/active", h.active)
	g.PUT("/active", h.setActive)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/toggle-active", h.toggle)
}

func (h *Handler) list(c *gin.Context) {
	snap, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list records")
		return
	}
	respond.OK(c, ListResponse{Items: snap.Records, ActiveID: optionalID(snap.ActiveID)})
}

func (h *Handler) create(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	rec, err := h.Svc.Add(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		h.fail(c, err, "failed to save record")
		return
	}
	respond.Created(c, rec)
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to fetch record")
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) update(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	rec, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.Title, req.Content)
	if err != nil {
		h.fail(c, err, "failed to save record")
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete record")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) active(c *gin.Context) {
	rec, err := h.Svc.Active(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no active "+h.Svc.Kind.Label(), nil)
			return
		}
		h.fail(c, err, "failed to fetch active record")
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) setActive(c *gin.Context) {
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	id := ""
	if req.ID != nil {
		id = strings.TrimSpace(*req.ID)
	}
	activeID, err := h.Svc.SetActive(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to set active record")
		return
	}
	respond.OK(c, ActiveResponse{ActiveID: optionalID(activeID)})
}

func (h *Handler) toggle(c *gin.Context) {
	activeID, err := h.Svc.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to toggle active record")
		return
	}
	respond.OK(c, ActiveResponse{ActiveID: optionalID(activeID)})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", h.Svc.Kind.Label()+" not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
