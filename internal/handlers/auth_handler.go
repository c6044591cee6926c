package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/models"
)

// RefreshCookieName is the cookie carrying the refresh token
const RefreshCookieName = "refreshToken"

// AuthService is the interface that wraps methods for authentication and account management.
type AuthService interface {
	// Method Login checks the credentials of an active account and issues a token pair.
	//
	// Unknown email, wrong password and deactivated accounts all fail with the same authentication error.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)
	// Method Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	// Method Register creates a new administrator account.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error)
	// Method ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error
	ListUsers(ctx context.Context, filter models.UserFilter, params models.ListParams) (*models.ListResult[models.User], error)
	// Method DeleteUser deactivates an account. Callers cannot deactivate themselves.
	DeleteUser(ctx context.Context, actorID, userID int) error
}

// CookieConfig controls the token cookies set on login and refresh
type CookieConfig struct {
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
	// Secure marks the cookies HTTPS only
	Secure bool
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
	cookies     CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, cookies CookieConfig, base BaseHandler) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
		cookies:     cookies,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/auth", func(r chi.Router) {
		r.With(g.LoginLimit).Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(g.Authenticate)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/change-password", h.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(g.Admin)
				r.Post("/register", h.Register)
				r.Get("/users", h.ListUsers)
				r.Delete("/users/{id}", h.DeleteUser)
			})
		})
	})
}

// Login handles POST /auth/login
// @Summary Login
// @Description Authenticate with email and password. Tokens are returned in the body and as HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} Response{data=models.AuthResult}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 429 {object} Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.setTokenCookies(w, result.Token, result.RefreshToken)
	h.respondData(w, http.StatusOK, "Login successful", result)
}

// Refresh handles POST /auth/refresh
// @Summary Refresh tokens
// @Description Exchange a refresh token from the body or the refreshToken cookie for a new pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest false "Refresh token (optional when using the cookie)"
// @Success 200 {object} Response{data=models.AuthResult}
// @Failure 401 {object} Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	// The body is optional; a missing or malformed body falls back to the cookie
	_ = h.decodeJSON(r, &req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		if cookie, err := r.Cookie(RefreshCookieName); err == nil {
			refreshToken = cookie.Value
		}
	}
	if refreshToken == "" {
		h.respondError(w, r, apperrors.Unauthenticated("Refresh token required"))
		return
	}

	result, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.setTokenCookies(w, result.Token, result.RefreshToken)
	h.respondData(w, http.StatusOK, "Token refreshed successfully", result)
}

// Logout handles POST /auth/logout
// @Summary Logout
// @Description Clear the token cookies
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookies(w)
	h.respondMessage(w, "Logout successful")
}

// GetProfile handles GET /auth/profile
// @Summary Current profile
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} Response
// @Router /auth/profile [get]
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.respondError(w, r, apperrors.Unauthenticated("Access denied. Authentication required."))
		return
	}

	user, err := h.authService.GetProfile(r.Context(), identity.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", map[string]any{"user": user})
}

// UpdateProfile handles PUT /auth/profile
// @Summary Update profile
// @Description Update name, email or avatar of the current account
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.respondError(w, r, apperrors.Unauthenticated("Access denied. Authentication required."))
		return
	}

	var req models.UpdateProfileRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), identity.ID, &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "Profile updated successfully", map[string]any{"user": user})
}

// ChangePassword handles PUT /auth/change-password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /auth/change-password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.respondError(w, r, apperrors.Unauthenticated("Access denied. Authentication required."))
		return
	}

	var req models.ChangePasswordRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), identity.ID, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "Password changed successfully")
}

// Register handles POST /auth/register
// @Summary Create an administrator
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.RegisterRequest true "Account"
// @Success 201 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusCreated, "User registered successfully", map[string]any{"user": user})
}

// ListUsers handles GET /auth/users
// @Summary List active accounts
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size 1..100, default 10"
// @Param role query string false "admin or super_admin"
// @Param search query string false "Substring of name or email"
// @Success 200 {object} Response
// @Router /auth/users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.UserFilter{Search: q.Get("search")}
	if role, err := models.ParseRole(q.Get("role")); err == nil {
		filter.Role = role
	}

	result, err := h.authService.ListUsers(r.Context(), filter, params)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondData(w, http.StatusOK, "", listData("users", result))
}

// DeleteUser handles DELETE /auth/users/{id}
// @Summary Deactivate an account
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /auth/users/{id} [delete]
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.respondError(w, r, apperrors.Unauthenticated("Access denied. Authentication required."))
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.authService.DeleteUser(r.Context(), identity.ID, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondMessage(w, "User deleted successfully")
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, h.cookie(middleware.TokenCookieName, accessToken, h.cookies.AccessMaxAge))
	http.SetCookie(w, h.cookie(RefreshCookieName, refreshToken, h.cookies.RefreshMaxAge))
}

// clearTokenCookies expires both token cookies
func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.TokenCookieName, RefreshCookieName} {
		c := h.cookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (h *AuthHandler) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
