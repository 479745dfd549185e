package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/autoparts/catalog-api/internal/api/metrics"
	"github.com/autoparts/catalog-api/internal/api/middleware"
	"github.com/autoparts/catalog-api/internal/core/domain"
	"github.com/autoparts/catalog-api/internal/core/ports"
)

const imageFormField = "image"

// PartHandler handles HTTP requests for catalog parts.
type PartHandler struct {
	service        ports.PartService
	images         ports.ImageStorage
	maxUploadBytes int64
}

func NewPartHandler(service ports.PartService, images ports.ImageStorage, maxUploadBytes int64) *PartHandler {
	return &PartHandler{service: service, images: images, maxUploadBytes: maxUploadBytes}
}

// List handles GET /repuestos.
//
// @Summary      List active parts
// @Tags         parts
// @Produce      json
// @Success      200  {array}   domain.Part
// @Failure      500  {object}  errorResponse
// @Router       /repuestos [get]
func (h *PartHandler) List(c echo.Context) error {
	parts, err := h.service.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, parts)
}

// ListDisabled handles GET /repuestos/deshabilitados.
//
// @Summary      List inactive parts
// @Tags         parts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Part
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /repuestos/deshabilitados [get]
func (h *PartHandler) ListDisabled(c echo.Context) error {
	requester, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	parts, err := h.service.ListDisabled(c.Request().Context(), requester)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, parts)
}

// Get handles GET /repuestos/:id. Inactive parts are only visible to admins.
//
// @Summary      Get a part by id
// @Tags         parts
// @Produce      json
// @Param        id   path      int  true  "Part id"
// @Success      200  {object}  domain.Part
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /repuestos/{id} [get]
func (h *PartHandler) Get(c echo.Context) error {
	id, err := partID(c)
	if err != nil {
		return err
	}

	var requester *domain.IdentityContext
	if identity, ok := middleware.IdentityFrom(c); ok {
		requester = &identity
	}

	p, err := h.service.Get(c.Request().Context(), id, requester)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /repuestos.
//
// @Summary      Create a part
// @Tags         parts
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        name         formData  string  false  "Name"
// @Param        brand        formData  string  false  "Brand"
// @Param        description  formData  string  false  "Description"
// @Param        price        formData  number  false  "Price"
// @Param        image        formData  file    false  "Image"
// @Success      201  {object}  domain.Part
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /repuestos [post]
func (h *PartHandler) Create(c echo.Context) error {
	requester, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	fields, err := h.readFields(c)
	if err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), fields, requester)
	if err != nil {
		h.discardImage(c, fields.ImageRef)
		return err
	}

	metrics.PartMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /repuestos/:id. Only supplied, non-empty fields overwrite
// stored values; the image is replaced only when a new one is uploaded.
//
// @Summary      Update a part
// @Tags         parts
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      int     true   "Part id"
// @Param        name         formData  string  false  "Name"
// @Param        brand        formData  string  false  "Brand"
// @Param        description  formData  string  false  "Description"
// @Param        price        formData  number  false  "Price"
// @Param        image        formData  file    false  "Image"
// @Success      200  {object}  domain.Part
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /repuestos/{id} [put]
func (h *PartHandler) Update(c echo.Context) error {
	requester, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	id, err := partID(c)
	if err != nil {
		return err
	}

	fields, err := h.readFields(c)
	if err != nil {
		return err
	}

	p, err := h.service.Update(c.Request().Context(), id, fields, requester)
	if err != nil {
		h.discardImage(c, fields.ImageRef)
		return err
	}

	metrics.PartMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, p)
}

// Toggle handles PATCH /repuestos/:id/toggle.
//
// @Summary      Toggle part visibility
// @Tags         parts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Part id"
// @Success      200  {object}  toggleResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /repuestos/{id}/toggle [patch]
func (h *PartHandler) Toggle(c echo.Context) error {
	requester, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	id, err := partID(c)
	if err != nil {
		return err
	}

	p, msg, err := h.service.ToggleActive(c.Request().Context(), id, requester)
	if err != nil {
		return err
	}

	metrics.PartMutationsTotal.WithLabelValues("toggle").Inc()
	return c.JSON(http.StatusOK, toggleResponse{Message: msg, Part: p})
}

// readFields maps the multipart form onto a patch, storing the image if one was uploaded.
func (h *PartHandler) readFields(c echo.Context) (domain.PartFields, error) {
	fields := domain.PartFields{
		Name:        formValue(c, "name"),
		Brand:       formValue(c, "brand"),
		Description: formValue(c, "description"),
	}

	if raw := formValue(c, "price"); raw != nil {
		price, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return fields, fmt.Errorf("%w: price must be a non-negative number", domain.ErrValidation)
		}
		fields.Price = &price
	}

	ref, err := h.storeImage(c)
	if err != nil {
		return fields, err
	}
	fields.ImageRef = ref
	return fields, nil
}

func (h *PartHandler) storeImage(c echo.Context) (*string, error) {
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form").SetInternal(err)
	}
	if fh.Size == 0 {
		return nil, nil
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		metrics.ImageUploadsTotal.WithLabelValues("too_large").Inc()
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %v", domain.ErrStorage, err)
	}
	defer src.Close()

	ref, err := h.images.Store(c.Request().Context(), fh.Filename, src)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ImageUploadsTotal.WithLabelValues("stored").Inc()
	return &ref, nil
}

// discardImage removes an image stored for a request whose mutation failed.
func (h *PartHandler) discardImage(c echo.Context, ref *string) {
	if ref == nil {
		return
	}
	if err := h.images.Delete(c.Request().Context(), path.Base(*ref)); err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("orphaned").Inc()
		return
	}
	metrics.ImageUploadsTotal.WithLabelValues("discarded").Inc()
}

// formValue returns nil for a missing or blank field.
func formValue(c echo.Context, name string) *string {
	v := c.FormValue(name)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func partID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid part id")
	}
	return id, nil
}
