package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliocms/backend/internal/models"
)

// ExperienceService is the interface that wraps methods for work history business logic.
type ExperienceService interface {
	List(ctx context.Context, filter models.ExperienceFilter, params models.ListParams) (*models.ListResult[models.Experience], error)
	GetByID(ctx context.Context, id int) (*models.Experience, error)
	// Method Create stores a new entry. A current entry never keeps an end date.
	Create(ctx context.Context, req *models.CreateExperienceRequest) (*models.Experience, error)
	Update(ctx context.Context, id int, req *models.UpdateExperienceRequest) (*models.Experience, error)
	Delete(ctx context.Context, id int) error
	Companies(ctx context.Context) ([]string, error)
}

// ExperienceHandler handles experience HTTP requests
type ExperienceHandler struct {
	BaseHandler
	service ExperienceService
}

// NewExperienceHandler creates a new experience handler
func NewExperienceHandler(svc ExperienceService, base BaseHandler) *ExperienceHandler {
	return &ExperienceHandler{
		BaseHandler: base,
		service:     svc,
	}
}

// RegisterRoutes registers all experience handler routes
func (h *ExperienceHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/experience", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(g.Optional)
			r.Get("/", h.List)
			r.Get("/companies", h.Companies)
			r.Get("/{id}", h.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(g.Authenticate, g.Admin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles GET /experience
// @Summary List experience entries
// @Tags experience
// @Produce json
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size 1..100, default 10"
// @Param type query string false "full-time, part-time, contract, freelance or internship"
// @Param company query string false "Company"
// @Param current query bool false "Current position"
// @Param search query string false "Substring of company, position, description or location"
// @Param orderBy query string false "company or start_date"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /experience [get]
func (h *ExperienceHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.ExperienceFilter{
		Type:    models.ExperienceType(q.Get("type")),
		Company: q.Get("company"),
		Current: parseBool(q, "current"),
		Search:  q.Get("search"),
		OrderBy: q.Get("orderBy"),
	}

	result, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", listData("experiences", result))
}

// GetByID handles GET /experience/{id}
// @Summary Get an experience entry
// @Tags experience
// @Produce json
// @Param id path int true "Experience ID"
// @Success 200 {object} Response{data=models.Experience}
// @Failure 404 {object} Response
// @Router /experience/{id} [get]
func (h *ExperienceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	experience, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"experience": experience})
}

// Companies handles GET /experience/companies
// @Summary Distinct companies
// @Tags experience
// @Produce json
// @Success 200 {object} Response
// @Router /experience/companies [get]
func (h *ExperienceHandler) Companies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.Companies(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"companies": companies})
}

// Create handles POST /experience
// @Summary Create an experience entry
// @Tags experience
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateExperienceRequest true "Experience"
// @Success 201 {object} Response{data=models.Experience}
// @Failure 400 {object} Response
// @Router /experience [post]
func (h *ExperienceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExperienceRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	experience, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "Experience created successfully", map[string]any{"experience": experience})
}

// Update handles PUT /experience/{id}
// @Summary Update an experience entry
// @Tags experience
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Experience ID"
// @Param request body models.UpdateExperienceRequest true "Fields to change"
// @Success 200 {object} Response{data=models.Experience}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /experience/{id} [put]
func (h *ExperienceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req models.UpdateExperienceRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	experience, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Experience updated successfully", map[string]any{"experience": experience})
}

// Delete handles DELETE /experience/{id}
// @Summary Delete an experience entry
// @Tags experience
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Experience ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /experience/{id} [delete]
func (h *ExperienceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "Experience deleted successfully")
}
