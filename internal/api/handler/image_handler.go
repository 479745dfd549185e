package handler

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/autoparts/catalog-api/internal/core/ports"
)

// ImageHandler serves stored part images.
type ImageHandler struct {
	images ports.ImageStorage
}

func NewImageHandler(images ports.ImageStorage) *ImageHandler {
	return &ImageHandler{images: images}
}

// Serve handles GET /img/:name.
//
// @Summary      Download a part image
// @Tags         images
// @Produce      octet-stream
// @Param        name  path      string  true  "Image name"
// @Success      200
// @Failure      404   {object}  errorResponse
// @Router       /img/{name} [get]
func (h *ImageHandler) Serve(c echo.Context) error {
	name := filepath.Base(c.Param("name"))

	rc, err := h.images.Open(c.Request().Context(), name)
	if err != nil {
		return err
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
