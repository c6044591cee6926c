package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/models"
)

// TestimonialService is the interface that wraps methods for testimonial moderation.
type TestimonialService interface {
	List(ctx context.Context, filter models.TestimonialFilter, params models.ListParams) (*models.ListResult[models.Testimonial], error)
	// Method GetByID retrieves a testimonial; with approvedOnly anything not approved is reported as not found.
	GetByID(ctx context.Context, id int, approvedOnly bool) (*models.Testimonial, error)
	Create(ctx context.Context, req *models.CreateTestimonialRequest) (*models.Testimonial, error)
	Update(ctx context.Context, id int, req *models.UpdateTestimonialRequest) (*models.Testimonial, error)
	Delete(ctx context.Context, id int) error
	// Method Approve publishes the testimonial and stamps the approval time.
	Approve(ctx context.Context, id int) (*models.Testimonial, error)
	Reject(ctx context.Context, id int) (*models.Testimonial, error)
	ToggleFeatured(ctx context.Context, id int) (*models.Testimonial, error)
}

// TestimonialHandler handles testimonial HTTP requests
type TestimonialHandler struct {
	BaseHandler
	service TestimonialService
}

// NewTestimonialHandler creates a new testimonial handler
func NewTestimonialHandler(svc TestimonialService, base BaseHandler) *TestimonialHandler {
	return &TestimonialHandler{
		BaseHandler: base,
		service:     svc,
	}
}

// RegisterRoutes registers all testimonial handler routes
func (h *TestimonialHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/testimonials", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(g.Optional)
			r.Get("/", h.List)
			r.Get("/{id}", h.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(g.Authenticate, g.Admin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Patch("/{id}/approve", h.Approve)
			r.Patch("/{id}/reject", h.Reject)
			r.Patch("/{id}/featured", h.ToggleFeatured)
		})
	})
}

// List handles GET /testimonials
// @Summary List testimonials
// @Description Anonymous callers only see approved testimonials
// @Tags testimonials
// @Produce json
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size 1..100, default 10"
// @Param status query string false "pending, approved or rejected (admins only)"
// @Param featured query bool false "Featured flag"
// @Param rating query int false "Rating 1..5"
// @Param search query string false "Substring of name, company or content"
// @Param orderBy query string false "name or rating"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /testimonials [get]
func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.TestimonialFilter{
		Status:   models.TestimonialStatus(q.Get("status")),
		Featured: parseBool(q, "featured"),
		Rating:   parseInt(q, "rating"),
		Search:   q.Get("search"),
		OrderBy:  q.Get("orderBy"),
	}
	if !middleware.IsAdmin(r.Context()) {
		filter.Status = models.TestimonialApproved
	}

	result, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", listData("testimonials", result))
}

// GetByID handles GET /testimonials/{id}
// @Summary Get a testimonial
// @Tags testimonials
// @Produce json
// @Param id path int true "Testimonial ID"
// @Success 200 {object} Response{data=models.Testimonial}
// @Failure 404 {object} Response
// @Router /testimonials/{id} [get]
func (h *TestimonialHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	testimonial, err := h.service.GetByID(r.Context(), id, !middleware.IsAdmin(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"testimonial": testimonial})
}

// Create handles POST /testimonials
// @Summary Create a testimonial
// @Tags testimonials
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateTestimonialRequest true "Testimonial"
// @Success 201 {object} Response{data=models.Testimonial}
// @Failure 400 {object} Response
// @Router /testimonials [post]
func (h *TestimonialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTestimonialRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	testimonial, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "Testimonial created successfully", map[string]any{"testimonial": testimonial})
}

// Update handles PUT /testimonials/{id}
// @Summary Update a testimonial
// @Tags testimonials
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Testimonial ID"
// @Param request body models.UpdateTestimonialRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Testimonial}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /testimonials/{id} [put]
func (h *TestimonialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req models.UpdateTestimonialRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	testimonial, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Testimonial updated successfully", map[string]any{"testimonial": testimonial})
}

// Delete handles DELETE /testimonials/{id}
// @Summary Delete a testimonial
// @Tags testimonials
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Testimonial ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /testimonials/{id} [delete]
func (h *TestimonialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "Testimonial deleted successfully")
}

// Approve handles PATCH /testimonials/{id}/approve
// @Summary Approve a testimonial
// @Tags testimonials
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Testimonial ID"
// @Success 200 {object} Response{data=models.Testimonial}
// @Failure 404 {object} Response
// @Router /testimonials/{id}/approve [patch]
func (h *TestimonialHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve, "Testimonial approved successfully")
}

// Reject handles PATCH /testimonials/{id}/reject
// @Summary Reject a testimonial
// @Tags testimonials
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Testimonial ID"
// @Success 200 {object} Response{data=models.Testimonial}
// @Failure 404 {object} Response
// @Router /testimonials/{id}/reject [patch]
func (h *TestimonialHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject, "Testimonial rejected successfully")
}

// ToggleFeatured handles PATCH /testimonials/{id}/featured
// @Summary Toggle the featured flag
// @Tags testimonials
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Testimonial ID"
// @Success 200 {object} Response{data=models.Testimonial}
// @Failure 404 {object} Response
// @Router /testimonials/{id}/featured [patch]
func (h *TestimonialHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ToggleFeatured, "Featured status updated successfully")
}

func (h *TestimonialHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, int) (*models.Testimonial, error), message string) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	testimonial, err := apply(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, message, map[string]any{"testimonial": testimonial})
}
