package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/models"
)

// PortfolioService is the interface that wraps methods for portfolio business logic.
type PortfolioService interface {
	List(ctx context.Context, filter models.PortfolioFilter, params models.ListParams) (*models.ListResult[models.PortfolioItem], error)
	// Method GetByID retrieves an item; with publishedOnly a draft is reported as not found.
	GetByID(ctx context.Context, id int, publishedOnly bool) (*models.PortfolioItem, error)
	// Method GetBySlug retrieves an item by slug. A public view hides drafts and counts the view.
	GetBySlug(ctx context.Context, slug string, publicView bool) (*models.PortfolioItem, error)
	// Method Create stores a new item, deriving the slug from the title when none is given.
	//
	// A taken slug fails with a conflict error.
	Create(ctx context.Context, req *models.CreatePortfolioRequest, authorID *int) (*models.PortfolioItem, error)
	Update(ctx context.Context, id int, req *models.UpdatePortfolioRequest) (*models.PortfolioItem, error)
	Delete(ctx context.Context, id int) error
	Categories(ctx context.Context, publishedOnly bool) ([]string, error)
	ToggleFeatured(ctx context.Context, id int) (*models.PortfolioItem, error)
	// Method OwnerID returns the author of the item, nil when it has none.
	OwnerID(ctx context.Context, id int) (*int, error)
}

// PortfolioHandler handles portfolio HTTP requests
type PortfolioHandler struct {
	BaseHandler
	service PortfolioService
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(svc PortfolioService, base BaseHandler) *PortfolioHandler {
	return &PortfolioHandler{
		BaseHandler: base,
		service:     svc,
	}
}

// RegisterRoutes registers all portfolio handler routes
func (h *PortfolioHandler) RegisterRoutes(r chi.Router, g Guards) {
	owner := middleware.RequireOwnership(h.service.OwnerID, "id")

	r.Route("/portfolio", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(g.Optional)
			r.Get("/", h.List)
			r.Get("/categories", h.Categories)
			r.Get("/slug/{slug}", h.GetBySlug)
			r.Get("/{id}", h.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(g.Authenticate, g.Admin)
			r.Post("/", h.Create)
			r.With(owner).Put("/{id}", h.Update)
			r.With(owner).Delete("/{id}", h.Delete)
			r.Patch("/{id}/featured", h.ToggleFeatured)
		})
	})
}

// List handles GET /portfolio
// @Summary List portfolio items
// @Description Anonymous callers only see published items whatever status they ask for
// @Tags portfolio
// @Produce json
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size 1..100, default 10"
// @Param status query string false "draft or published (admins only)"
// @Param category query string false "Category"
// @Param featured query bool false "Featured flag"
// @Param search query string false "Substring of title, description or content"
// @Param orderBy query string false "title, views or created_at"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /portfolio [get]
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.PortfolioFilter{
		Status:   models.PublishStatus(q.Get("status")),
		Category: q.Get("category"),
		Featured: parseBool(q, "featured"),
		Search:   q.Get("search"),
		OrderBy:  q.Get("orderBy"),
	}
	if !middleware.IsAdmin(r.Context()) {
		filter.Status = models.StatusPublished
	}

	result, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", listData("portfolioItems", result))
}

// GetByID handles GET /portfolio/{id}
// @Summary Get a portfolio item
// @Tags portfolio
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} Response{data=models.PortfolioItem}
// @Failure 404 {object} Response
// @Router /portfolio/{id} [get]
func (h *PortfolioHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := h.service.GetByID(r.Context(), id, !middleware.IsAdmin(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"portfolioItem": item})
}

// GetBySlug handles GET /portfolio/slug/{slug}
// @Summary Get a portfolio item by slug
// @Description Public reads only resolve published items and increment the view counter
// @Tags portfolio
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} Response{data=models.PortfolioItem}
// @Failure 404 {object} Response
// @Router /portfolio/slug/{slug} [get]
func (h *PortfolioHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"), !middleware.IsAdmin(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"portfolioItem": item})
}

// Categories handles GET /portfolio/categories
// @Summary Distinct portfolio categories
// @Tags portfolio
// @Produce json
// @Success 200 {object} Response
// @Router /portfolio/categories [get]
func (h *PortfolioHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context(), !middleware.IsAdmin(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"categories": categories})
}

// Create handles POST /portfolio
// @Summary Create a portfolio item
// @Tags portfolio
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreatePortfolioRequest true "Portfolio item"
// @Success 201 {object} Response{data=models.PortfolioItem}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 403 {object} Response
// @Router /portfolio [post]
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePortfolioRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := h.service.Create(r.Context(), &req, currentIdentityID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "Portfolio item created successfully", map[string]any{"portfolioItem": item})
}

// Update handles PUT /portfolio/{id}
// @Summary Update a portfolio item
// @Description Only the fields present in the body are changed
// @Tags portfolio
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Item ID"
// @Param request body models.UpdatePortfolioRequest true "Fields to change"
// @Success 200 {object} Response{data=models.PortfolioItem}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /portfolio/{id} [put]
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req models.UpdatePortfolioRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Portfolio item updated successfully", map[string]any{"portfolioItem": item})
}

// Delete handles DELETE /portfolio/{id}
// @Summary Delete a portfolio item
// @Tags portfolio
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Item ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /portfolio/{id} [delete]
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "Portfolio item deleted successfully")
}

// ToggleFeatured handles PATCH /portfolio/{id}/featured
// @Summary Toggle the featured flag
// @Tags portfolio
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Item ID"
// @Success 200 {object} Response{data=models.PortfolioItem}
// @Failure 404 {object} Response
// @Router /portfolio/{id}/featured [patch]
func (h *PortfolioHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := h.service.ToggleFeatured(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Featured status updated successfully", map[string]any{"portfolioItem": item})
}
