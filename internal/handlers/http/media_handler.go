package http

import (
	"errors"
	"io"
	"net/http"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/infrastructure/media"
	apperrors "reelhub/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// MediaHandler serves stored images read-only. Refs are random and never
// reused, so responses are cacheable forever.
type MediaHandler struct {
	store    ports.MediaStore
	maxBytes int64
}

func NewMediaHandler(store ports.MediaStore, maxBytes int64) *MediaHandler {
	return &MediaHandler{store: store, maxBytes: maxBytes}
}

func (h *MediaHandler) SetupRoutes(router gin.IRouter, prefix string) {
	router.GET(prefix+"/:ref", h.ServeImage)
	router.HEAD(prefix+"/:ref", h.ServeImage)
}

func (h *MediaHandler) ServeImage(c *gin.Context) {
	ref := c.Param("ref")

	rc, err := h.store.Load(c.Request.Context(), ref)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, media.ErrInvalidName):
		_ = c.Error(apperrors.NewNotFoundError("image"))
		return
	case err != nil:
		_ = c.Error(apperrors.NewUpstreamError(err))
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, h.maxBytes+1))
	if err != nil {
		_ = c.Error(apperrors.NewUpstreamError(err))
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
