package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const healthTimeout = 5 * time.Second

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	BaseHandler
	db          Pinger
	environment string
	version     string
	now         func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, environment, version string, base BaseHandler) *HealthHandler {
	return &HealthHandler{
		BaseHandler: base,
		db:          db,
		environment: environment,
		version:     version,
		now:         time.Now,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	data := map[string]any{
		"environment": h.environment,
		"version":     h.version,
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"database":    "connected",
	}

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		data["database"] = "disconnected"
		h.respondJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Message: "Service unavailable",
			Data:    data,
		})
		return
	}

	h.respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Server is running",
		Data:    data,
	})
}
