package imports

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

// RegisterRoutes attaches import routes to the router group. Uploads may
// fall back to the AI provider, so guards run first.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(guards)+1)
	handlers = append(handlers, guards...)
	rg.POST("/imports", append(handlers, h.upload)...)
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.Svc.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.Import(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		if assistant.RespondError(c, err) {
			return
		}
		switch {
		case errors.Is(err, ErrUnsupported):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", "Unsupported file format. Please use PDF, DOCX or TXT.", nil)
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNoText):
			respond.Error(c, http.StatusUnprocessableEntity, "no_text", "no text could be extracted from the file", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to import file", nil)
		}
		return
	}

	respond.OK(c, res)
}
