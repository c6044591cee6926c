package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/models"
)

// ContactService is the interface that wraps methods for the contact inbox.
type ContactService interface {
	// Method Submit stores a public contact form submission and notifies the administrator
	// and the sender in the background. Email failures never fail the submission.
	Submit(ctx context.Context, req *models.CreateContactRequest, client models.ClientInfo) (*models.ContactMessage, error)
	List(ctx context.Context, filter models.ContactFilter, params models.ListParams) (*models.ListResult[models.ContactMessage], error)
	// Method GetByID retrieves a message, marking an unread message as read.
	GetByID(ctx context.Context, id int) (*models.ContactMessage, error)
	UpdateStatus(ctx context.Context, id int, req *models.UpdateContactStatusRequest) (*models.ContactMessage, error)
	Archive(ctx context.Context, id int) (*models.ContactMessage, error)
	// Method Reply records the reply on the message and emails it to the sender in the background.
	Reply(ctx context.Context, id int, req *models.ReplyContactRequest) (*models.ContactMessage, error)
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context) (*models.ContactStats, error)
}

// ContactHandler handles contact form HTTP requests
type ContactHandler struct {
	BaseHandler
	service ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(svc ContactService, base BaseHandler) *ContactHandler {
	return &ContactHandler{
		BaseHandler: base,
		service:     svc,
	}
}

// RegisterRoutes registers all contact handler routes
func (h *ContactHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/contact", func(r chi.Router) {
		r.With(g.ContactLimit).Post("/", h.Submit)

		r.Group(func(r chi.Router) {
			r.Use(g.Authenticate, g.Admin)
			r.Get("/", h.List)
			r.Get("/stats", h.Stats)
			r.Get("/{id}", h.GetByID)
			r.Patch("/{id}/status", h.UpdateStatus)
			r.Patch("/{id}/archive", h.Archive)
			r.Post("/{id}/reply", h.Reply)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Submit handles POST /contact
// @Summary Submit the contact form
// @Description Stores the message and sends the notification and auto-reply emails in the background
// @Tags contact
// @Accept json
// @Produce json
// @Param request body models.CreateContactRequest true "Message"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 429 {object} Response
// @Router /contact [post]
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContactRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	message, err := h.service.Submit(r.Context(), &req, middleware.GetClientInfo(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "Thank you for your message! I will get back to you soon.", map[string]any{
		"id": message.ID,
	})
}

// List handles GET /contact
// @Summary List contact messages
// @Tags contact
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size 1..100, default 10"
// @Param status query string false "unread, read, replied or archived"
// @Param replied query bool false "Replied flag"
// @Param dateFrom query string false "Inclusive lower bound on creation date"
// @Param dateTo query string false "Inclusive upper bound on creation date"
// @Param search query string false "Substring of name, email, subject or message"
// @Param orderBy query string false "name, email or status"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /contact [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	dateFrom, err := parseDate(q, "dateFrom")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	dateTo, err := parseDate(q, "dateTo")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	filter := models.ContactFilter{
		Status:   models.ContactStatus(q.Get("status")),
		Replied:  parseBool(q, "replied"),
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Search:   q.Get("search"),
		OrderBy:  q.Get("orderBy"),
	}

	result, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", listData("contacts", result))
}

// GetByID handles GET /contact/{id}
// @Summary Get a contact message
// @Description Reading an unread message marks it as read
// @Tags contact
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Message ID"
// @Success 200 {object} Response{data=models.ContactMessage}
// @Failure 404 {object} Response
// @Router /contact/{id} [get]
func (h *ContactHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"contact": message})
}

// UpdateStatus handles PATCH /contact/{id}/status
// @Summary Change the message status
// @Tags contact
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Message ID"
// @Param request body models.UpdateContactStatusRequest true "Status"
// @Success 200 {object} Response{data=models.ContactMessage}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /contact/{id}/status [patch]
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req models.UpdateContactStatusRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	message, err := h.service.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Contact status updated successfully", map[string]any{"contact": message})
}

// Archive handles PATCH /contact/{id}/archive
// @Summary Archive a message
// @Tags contact
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Message ID"
// @Success 200 {object} Response{data=models.ContactMessage}
// @Failure 404 {object} Response
// @Router /contact/{id}/archive [patch]
func (h *ContactHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message, err := h.service.Archive(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Contact message archived successfully", map[string]any{"contact": message})
}

// Reply handles POST /contact/{id}/reply
// @Summary Reply to a message
// @Description Stores the reply and emails it to the sender; a send failure does not fail the request
// @Tags contact
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Message ID"
// @Param request body models.ReplyContactRequest true "Reply"
// @Success 200 {object} Response{data=models.ContactMessage}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /contact/{id}/reply [post]
func (h *ContactHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req models.ReplyContactRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	message, err := h.service.Reply(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Reply sent successfully", map[string]any{"contact": message})
}

// Delete handles DELETE /contact/{id}
// @Summary Delete a message
// @Tags contact
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Message ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /contact/{id} [delete]
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "Contact message deleted successfully")
}

// Stats handles GET /contact/stats
// @Summary Message counts per status
// @Tags contact
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response{data=models.ContactStats}
// @Router /contact/stats [get]
func (h *ContactHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"stats": stats})
}
