package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/models"
)

// BlogService is the interface that wraps methods for blog business logic.
type BlogService interface {
	List(ctx context.Context, filter models.BlogFilter, params models.ListParams) (*models.ListResult[models.BlogPost], error)
	GetByID(ctx context.Context, id int, publishedOnly bool) (*models.BlogPost, error)
	// Method GetBySlug retrieves a post with its rendered HTML. A public view hides drafts and counts the view.
	GetBySlug(ctx context.Context, slug string, publicView bool) (*models.BlogPost, error)
	// Method Create stores a new post. Read time is computed from the content and
	// the publish date is stamped when the post is created as published.
	Create(ctx context.Context, req *models.CreateBlogPostRequest, authorID *int) (*models.BlogPost, error)
	Update(ctx context.Context, id int, req *models.UpdateBlogPostRequest) (*models.BlogPost, error)
	Delete(ctx context.Context, id int) error
	Categories(ctx context.Context, publishedOnly bool) ([]string, error)
	Tags(ctx context.Context, publishedOnly bool) ([]string, error)
	ToggleFeatured(ctx context.Context, id int) (*models.BlogPost, error)
	OwnerID(ctx context.Context, id int) (*int, error)
}

// BlogHandler handles blog HTTP requests
type BlogHandler struct {
	BaseHandler
	service BlogService
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(svc BlogService, base BaseHandler) *BlogHandler {
	return &BlogHandler{
		BaseHandler: base,
		service:     svc,
	}
}

// RegisterRoutes registers all blog handler routes
func (h *BlogHandler) RegisterRoutes(r chi.Router, g Guards) {
	owner := middleware.RequireOwnership(h.service.OwnerID, "id")

	r.Route("/blog", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(g.Optional)
			r.Get("/", h.List)
			r.Get("/categories", h.Categories)
			r.Get("/tags", h.Tags)
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

// List handles GET /blog
// @Summary List blog posts
// @Description Anonymous callers only see published posts whatever status they ask for
// @Tags blog
// @Produce json
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size 1..100, default 10"
// @Param status query string false "draft or published (admins only)"
// @Param category query string false "Category"
// @Param tag query string false "Tag"
// @Param featured query bool false "Featured flag"
// @Param search query string false "Substring of title, excerpt or content"
// @Param orderBy query string false "title, views or publish_date"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /blog [get]
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.BlogFilter{
		Status:   models.PublishStatus(q.Get("status")),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
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
	h.respondData(w, http.StatusOK, "", listData("posts", result))
}

// GetByID handles GET /blog/{id}
// @Summary Get a blog post
// @Tags blog
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} Response{data=models.BlogPost}
// @Failure 404 {object} Response
// @Router /blog/{id} [get]
func (h *BlogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	post, err := h.service.GetByID(r.Context(), id, !middleware.IsAdmin(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"post": post})
}

// GetBySlug handles GET /blog/slug/{slug}
// @Summary Get a blog post by slug
// @Description Includes the rendered contentHtml. Public reads only resolve published posts and count the view.
// @Tags blog
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} Response{data=models.BlogPost}
// @Failure 404 {object} Response
// @Router /blog/slug/{slug} [get]
func (h *BlogHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"), !middleware.IsAdmin(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"post": post})
}

// Categories handles GET /blog/categories
// @Summary Distinct blog categories
// @Tags blog
// @Produce json
// @Success 200 {object} Response
// @Router /blog/categories [get]
func (h *BlogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context(), !middleware.IsAdmin(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"categories": categories})
}

// Tags handles GET /blog/tags
// @Summary Distinct blog tags
// @Tags blog
// @Produce json
// @Success 200 {object} Response
// @Router /blog/tags [get]
func (h *BlogHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.Tags(r.Context(), !middleware.IsAdmin(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"tags": tags})
}

// Create handles POST /blog
// @Summary Create a blog post
// @Tags blog
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateBlogPostRequest true "Post"
// @Success 201 {object} Response{data=models.BlogPost}
// @Failure 400 {object} Response
// @Router /blog [post]
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBlogPostRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	post, err := h.service.Create(r.Context(), &req, currentIdentityID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "Blog post created successfully", map[string]any{"post": post})
}

// Update handles PUT /blog/{id}
// @Summary Update a blog post
// @Tags blog
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Param request body models.UpdateBlogPostRequest true "Fields to change"
// @Success 200 {object} Response{data=models.BlogPost}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /blog/{id} [put]
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req models.UpdateBlogPostRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	post, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Blog post updated successfully", map[string]any{"post": post})
}

// Delete handles DELETE /blog/{id}
// @Summary Delete a blog post
// @Tags blog
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /blog/{id} [delete]
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "Blog post deleted successfully")
}

// ToggleFeatured handles PATCH /blog/{id}/featured
// @Summary Toggle the featured flag
// @Tags blog
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Success 200 {object} Response{data=models.BlogPost}
// @Failure 404 {object} Response
// @Router /blog/{id}/featured [patch]
func (h *BlogHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	post, err := h.service.ToggleFeatured(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Featured status updated successfully", map[string]any{"post": post})
}
