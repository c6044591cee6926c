package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/models"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	users        map[int]*models.User
	password     string
	deletedBy    int
	registered   *models.RegisterRequest
	refreshToken string
	lastFilter   models.UserFilter
}

func newMockAuthService() *mockAuthService {
	return &mockAuthService{
		users: map[int]*models.User{
			1: {ID: 1, Name: "Admin", Email: "admin@portfolio.com", Role: models.RoleAdmin, IsActive: true},
			2: {ID: 2, Name: "Super Admin", Email: "root@portfolio.com", Role: models.RoleSuperAdmin, IsActive: true},
		},
		password:     "Admin123!@#",
		refreshToken: "refresh-1",
	}
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	for _, u := range m.users {
		if u.Email == req.Email && req.Password == m.password {
			return &models.AuthResult{User: u, Token: "access-" + u.Email, RefreshToken: m.refreshToken}, nil
		}
	}
	return nil, apperrors.Unauthenticated("Invalid credentials")
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	if refreshToken != m.refreshToken {
		return nil, apperrors.Unauthenticated("Invalid refresh token")
	}
	return &models.AuthResult{User: m.users[1], Token: "access-new", RefreshToken: "refresh-2"}, nil
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	m.registered = req
	return &models.User{ID: 10, Name: req.Name, Email: req.Email, Role: models.RoleAdmin, IsActive: true}, nil
}

func (m *mockAuthService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	return u, nil
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	u, err := m.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	return u, nil
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	if req.CurrentPassword != m.password {
		return apperrors.Validation("Current password is incorrect")
	}
	m.password = req.NewPassword
	return nil
}

func (m *mockAuthService) ListUsers(ctx context.Context, filter models.UserFilter, params models.ListParams) (*models.ListResult[models.User], error) {
	m.lastFilter = filter
	var users []models.User
	for _, u := range m.users {
		if filter.Role == "" || u.Role == filter.Role {
			users = append(users, *u)
		}
	}
	return models.NewListResult(params, users), nil
}

func (m *mockAuthService) DeleteUser(ctx context.Context, actorID, userID int) error {
	if actorID == userID {
		return apperrors.Validation("You cannot delete your own account")
	}
	if _, ok := m.users[userID]; !ok {
		return apperrors.NotFound("User not found")
	}
	m.deletedBy = actorID
	delete(m.users, userID)
	return nil
}

func newAuthTestRouter(svc AuthService) http.Handler {
	return newTestRouter(NewAuthHandler(svc, CookieConfig{
		AccessMaxAge:  7 * 24 * time.Hour,
		RefreshMaxAge: 30 * 24 * time.Hour,
	}, newTestBase()))
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	rec := doRequest(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "root@portfolio.com",
		"password": "Admin123!@#",
	}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var data models.AuthResult
	decodeData(t, env, &data)
	assert.Equal(t, models.RoleSuperAdmin, data.User.Role)
	assert.NotEmpty(t, data.Token)
	assert.NotEmpty(t, data.RefreshToken)
	assert.NotContains(t, rec.Body.String(), "password")

	for _, name := range []string{middleware.TokenCookieName, RefreshCookieName} {
		c := findCookie(rec, name)
		require.NotNil(t, c, name)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.Equal(t, "/", c.Path)
	}
	assert.Equal(t, data.Token, findCookie(rec, middleware.TokenCookieName).Value)
	assert.Equal(t, 7*24*3600, findCookie(rec, middleware.TokenCookieName).MaxAge)
	assert.Equal(t, 30*24*3600, findCookie(rec, RefreshCookieName).MaxAge)
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	rec := doRequest(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "root@portfolio.com",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeEnvelope(t, rec).Message)
	assert.Nil(t, findCookie(rec, middleware.TokenCookieName))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("not json"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Login_RateLimited(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	for i := 0; i < LoginAttempts; i++ {
		rec := doRequest(t, router, http.MethodPost, "/auth/login", map[string]string{"email": "x@y.co", "password": "bad"}, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "/auth/login", map[string]string{"email": "x@y.co", "password": "bad"}, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, middleware.MsgTooManyLogins, decodeEnvelope(t, rec).Message)
}

func TestAuthHandler_Refresh(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	t.Run("body token", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": "refresh-1"}, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "refresh-2", findCookie(rec, RefreshCookieName).Value)
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "refresh-1"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "access-new", findCookie(rec, middleware.TokenCookieName).Value)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/auth/refresh", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": "forged"}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid refresh token", decodeEnvelope(t, rec).Message)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	rec := doRequest(t, router, http.MethodPost, "/auth/logout", nil, adminToken)

	require.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{middleware.TokenCookieName, RefreshCookieName} {
		c := findCookie(rec, name)
		require.NotNil(t, c)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	router := newAuthTestRouter(newMockAuthService())

	rec := doRequest(t, router, http.MethodGet, "/auth/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access denied. No token provided.", decodeEnvelope(t, rec).Message)

	rec = doRequest(t, router, http.MethodGet, "/auth/profile", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		User models.User `json:"user"`
	}
	decodeData(t, decodeEnvelope(t, rec), &data)
	assert.Equal(t, "admin@portfolio.com", data.User.Email)

	rec = doRequest(t, router, http.MethodPut, "/auth/profile", map[string]string{"name": "Renamed"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, decodeEnvelope(t, rec), &data)
	assert.Equal(t, "Renamed", data.User.Name)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	svc := newMockAuthService()
	router := newAuthTestRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/auth/change-password", map[string]string{
		"currentPassword": "nope",
		"newPassword":     "N3w!Password",
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/auth/change-password", map[string]string{
		"currentPassword": "Admin123!@#",
		"newPassword":     "N3w!Password",
	}, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "N3w!Password", svc.password)
}

func TestAuthHandler_AdminRoutes(t *testing.T) {
	svc := newMockAuthService()
	router := newAuthTestRouter(svc)
	body := map[string]string{"name": "Editor", "email": "editor@portfolio.com", "password": "Editor123!"}

	rec := doRequest(t, router, http.MethodPost, "/auth/register", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/auth/register", body, viewerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/auth/register", body, adminToken)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.registered)
	assert.Equal(t, "editor@portfolio.com", svc.registered.Email)

	rec = doRequest(t, router, http.MethodGet, "/auth/users?role=super_admin&search=root", nil, superToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleSuperAdmin, svc.lastFilter.Role)
	assert.Equal(t, "root", svc.lastFilter.Search)

	rec = doRequest(t, router, http.MethodGet, "/auth/users?role=owner", nil, superToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.lastFilter.Role)
}

func TestAuthHandler_DeleteUser(t *testing.T) {
	svc := newMockAuthService()
	router := newAuthTestRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/auth/users/2", nil, superToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/auth/users/1", nil, superToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.deletedBy)

	rec = doRequest(t, router, http.MethodDelete, "/auth/users/1", nil, superToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/auth/users/abc", nil, superToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
