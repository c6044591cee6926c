package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
	"github.com/portfoliocms/backend/internal/services"
)

// multipartMemory is the part of a form kept in memory; larger files spill to temp files
const multipartMemory = 32 << 20

// UploadService is the interface that wraps methods for file uploads.
type UploadService interface {
	// Method UploadImages stores the images of field and creates their resized WebP variants.
	//
	// With single set the request must carry exactly one file. Field, count, size and type
	// violations fail with a validation error carrying an upload error code.
	UploadImages(ctx context.Context, form *multipart.Form, field string, single bool) ([]models.UploadedFile, error)
	UploadDocument(ctx context.Context, form *multipart.Form, field string) (*models.UploadedFile, error)
	// Method DeleteImage removes an image with all its variants.
	DeleteImage(ctx context.Context, filename string) error
	DeleteDocument(ctx context.Context, filename string) error
	MaxFileSize() int64
	MaxFiles() int
}

// UploadHandler handles file upload HTTP requests
type UploadHandler struct {
	BaseHandler
	service UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(svc UploadService, base BaseHandler) *UploadHandler {
	return &UploadHandler{
		BaseHandler: base,
		service:     svc,
	}
}

// MaxRequestSize bounds an upload request: every allowed file plus room for the form overhead
func (h *UploadHandler) MaxRequestSize() int64 {
	return h.service.MaxFileSize()*int64(h.service.MaxFiles()) + 1<<20
}

// RegisterRoutes registers all upload handler routes
func (h *UploadHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/upload", func(r chi.Router) {
		r.Use(g.Authenticate, g.Admin)
		r.Post("/image", h.UploadImage)
		r.Post("/images", h.UploadImages)
		r.Post("/document", h.UploadDocument)
		r.Delete("/images/{filename}", h.DeleteImage)
		r.Delete("/documents/{filename}", h.DeleteDocument)
	})
}

// UploadImage handles POST /upload/image
// @Summary Upload an image
// @Description Stores the image and its thumbnail, medium, large and optimized WebP variants
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param image formData file true "Image (jpeg, png, gif or webp)"
// @Success 201 {object} Response{data=models.UploadedFile}
// @Failure 400 {object} Response "FILE_TOO_LARGE, UNEXPECTED_FIELD, TOO_MANY_FILES or INVALID_FILE_TYPE"
// @Router /upload/image [post]
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer h.cleanup(form)

	files, err := h.service.UploadImages(r.Context(), form, services.FieldImage, true)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "Image uploaded successfully", map[string]any{"file": files[0]})
}

// UploadImages handles POST /upload/images
// @Summary Upload several images
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param images formData file true "Up to 5 images"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /upload/images [post]
func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer h.cleanup(form)

	files, err := h.service.UploadImages(r.Context(), form, services.FieldImages, false)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "Images uploaded successfully", map[string]any{"files": files})
}

// UploadDocument handles POST /upload/document
// @Summary Upload a document
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param document formData file true "Document (pdf, doc, docx or txt)"
// @Success 201 {object} Response{data=models.UploadedFile}
// @Failure 400 {object} Response
// @Router /upload/document [post]
func (h *UploadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer h.cleanup(form)

	file, err := h.service.UploadDocument(r.Context(), form, services.FieldDocument)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "Document uploaded successfully", map[string]any{"file": file})
}

// DeleteImage handles DELETE /upload/images/{filename}
// @Summary Delete an image and its variants
// @Tags upload
// @Produce json
// @Security ApiKeyAuth
// @Param filename path string true "Stored file name"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /upload/images/{filename} [delete]
func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteImage(r.Context(), chi.URLParam(r, "filename")); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "Image deleted successfully")
}

// DeleteDocument handles DELETE /upload/documents/{filename}
// @Summary Delete a document
// @Tags upload
// @Produce json
// @Security ApiKeyAuth
// @Param filename path string true "Stored file name"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /upload/documents/{filename} [delete]
func (h *UploadHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDocument(r.Context(), chi.URLParam(r, "filename")); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "Document deleted successfully")
}

// parseForm reads the multipart body; a body over the request limit is reported as FILE_TOO_LARGE
func (h *UploadHandler) parseForm(r *http.Request) (*multipart.Form, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, services.FileTooLarge(h.service.MaxFileSize())
		}
		return nil, apperrors.Validation("No file uploaded")
	}
	return r.MultipartForm, nil
}

func (h *UploadHandler) cleanup(form *multipart.Form) {
	if err := form.RemoveAll(); err != nil {
		h.logger.Warn("failed to remove multipart temp files", zap.Error(err))
	}
}
