package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

const (
	adminToken  = "admin-token"
	superToken  = "super-token"
	viewerToken = "viewer-token"
)

// mockResolver is a mock implementation of middleware.UserResolver
type mockResolver struct {
	users map[string]*models.User
}

func (m *mockResolver) ResolveUser(ctx context.Context, token string) (*models.User, error) {
	user, ok := m.users[token]
	if !ok {
		return nil, apperrors.Unauthenticated("Invalid token.")
	}
	return user, nil
}

func newTestGuards() Guards {
	return NewGuards(&mockResolver{users: map[string]*models.User{
		adminToken:  {ID: 1, Name: "Admin", Email: "admin@portfolio.com", Role: models.RoleAdmin, IsActive: true},
		superToken:  {ID: 2, Name: "Root", Email: "root@portfolio.com", Role: models.RoleSuperAdmin, IsActive: true},
		viewerToken: {ID: 3, Name: "Viewer", Email: "viewer@portfolio.com", Role: models.Role("viewer"), IsActive: true},
	}})
}

func newTestBase() BaseHandler {
	return NewBaseHandler(zap.NewNop(), false)
}

// routeRegistrar is implemented by every resource controller
type routeRegistrar interface {
	RegisterRoutes(r chi.Router, g Guards)
}

func newTestRouter(h routeRegistrar) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r, newTestGuards())
	return r
}

// envelope mirrors Response with raw data for per-test decoding
type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Errors  []apperrors.FieldError `json:"errors"`
	Code    string                 `json:"code"`
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := newJSONRequest(t, method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(h, req)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestBaseHandler_RespondError(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		err         error
		status      int
		message     string
		code        string
		fields      int
	}{
		{
			name:    "validation with fields",
			err:     apperrors.Validation("Validation failed", apperrors.FieldError{Field: "title", Message: "title is required"}),
			status:  http.StatusBadRequest,
			message: "Validation failed",
			fields:  1,
		},
		{
			name:    "conflict maps to bad request",
			err:     apperrors.Conflict("A portfolio item with this slug already exists"),
			status:  http.StatusBadRequest,
			message: "A portfolio item with this slug already exists",
		},
		{
			name:    "code travels",
			err:     apperrors.WithCode("FILE_TOO_LARGE", "File too large. Maximum size is 5MB"),
			status:  http.StatusBadRequest,
			message: "File too large. Maximum size is 5MB",
			code:    "FILE_TOO_LARGE",
		},
		{
			name:    "upstream redacted in production",
			err:     apperrors.Upstream("failed to list portfolio items", errors.New("connection refused")),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
		{
			name:        "upstream exposed in development",
			development: true,
			err:         apperrors.Upstream("failed to list portfolio items", errors.New("connection refused")),
			status:      http.StatusInternalServerError,
			message:     "failed to list portfolio items",
		},
		{
			name:    "unclassified error",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBaseHandler(zap.NewNop(), tt.development)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			h.respondError(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, tt.code, env.Code)
			assert.Len(t, env.Errors, tt.fields)
		})
	}
}

func TestBaseHandler_DecodeJSON(t *testing.T) {
	h := newTestBase()

	var dst models.LoginRequest
	err := h.decodeJSON(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{")), &dst)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	err = h.decodeJSON(httptest.NewRequest(http.MethodPost, "/", http.NoBody), &dst)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	err = h.decodeJSON(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"a@b.co","password":"x"}`)), &dst)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", dst.Email)
}
