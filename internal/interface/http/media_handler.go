package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agriconnect/agriconnect/internal/domain/media"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// MediaHandler exposes image upload and retrieval.
type MediaHandler struct {
	svc    media.Service
	logger *slog.Logger
}

// NewMediaHandler constructs the media handler.
func NewMediaHandler(svc media.Service, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{svc: svc, logger: logger.With("component", "http.media")}
}

// Upload stores a base64 data URI image.
func (h *MediaHandler) Upload(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth context", nil))
		return
	}
	var req struct {
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	obj, err := h.svc.UploadDataURI(c.Request.Context(), claims.UserID, req.Image)
	if err != nil {
		if apperrors.IsCode(err, "invalid_input") {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusCreated, obj)
}

// Fetch streams a stored object back to the client.
func (h *MediaHandler) Fetch(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid object key", nil))
		return
	}
	rc, mimeType, err := h.svc.Fetch(c.Request.Context(), key)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err))
		return
	}
	defer rc.Close()
	c.Header("Content-Type", mimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn("failed to stream object", "key", key, "error", err)
	}
}
