package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/middleware"
)

const msgInternalError = "Internal server error"

// Response is the envelope returned by every endpoint
type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    any                    `json:"data,omitempty"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
	Code    string                 `json:"code,omitempty"`
}

// BaseHandler provides the envelope helpers shared by all controllers
type BaseHandler struct {
	logger *zap.Logger
	// development exposes the message of internal errors to clients
	development bool
}

// NewBaseHandler creates the shared handler base
func NewBaseHandler(logger *zap.Logger, development bool) BaseHandler {
	return BaseHandler{logger: logger, development: development}
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondData sends a successful envelope carrying data
func (h *BaseHandler) respondData(w http.ResponseWriter, status int, message string, data any) {
	h.respondJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// respondMessage sends a successful envelope without data
func (h *BaseHandler) respondMessage(w http.ResponseWriter, message string) {
	h.respondJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// respondError translates err into the envelope and logs the original error
func (h *BaseHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Upstream(msgInternalError, err)
	}
	status := appErr.Kind.HTTPStatus()

	fields := []zap.Field{
		zap.Error(err),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	}
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
		if !h.development {
			message = msgInternalError
		}
	} else {
		h.logger.Info("request rejected", fields...)
	}

	h.respondJSON(w, status, Response{
		Success: false,
		Message: message,
		Errors:  appErr.Fields,
		Code:    appErr.Code,
	})
}

// decodeJSON reads the request body into dst
func (h *BaseHandler) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.Validation("Request body too large")
		case errors.Is(err, io.EOF):
			return apperrors.Validation("Request body is required")
		default:
			return apperrors.Validation("Invalid request body")
		}
	}
	return nil
}

// parseID reads a positive integer URL parameter
func parseID(r *http.Request, param string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("Invalid ID", apperrors.FieldError{Field: param, Message: "ID must be a positive integer"})
	}
	return id, nil
}

// currentIdentityID returns the caller id, or nil for anonymous requests
func currentIdentityID(r *http.Request) *int {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		return nil
	}
	id := identity.ID
	return &id
}
