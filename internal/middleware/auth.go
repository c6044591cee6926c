package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

// TokenCookieName is the cookie carrying the access token for browser clients
const TokenCookieName = "token"

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Invalid token."
)

// UserResolver resolves an access token into the account it belongs to.
// Implementations return an authentication error for invalid tokens and deactivated accounts.
type UserResolver interface {
	ResolveUser(ctx context.Context, accessToken string) (*models.User, error)
}

// Authenticate requires a valid access token from the Authorization header or the token cookie
func Authenticate(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, msgNoToken, "")
				return
			}

			user, err := resolver.ResolveUser(r.Context(), token)
			if err != nil {
				writeResolveError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuthenticate attaches the caller identity when a valid token is present
// and otherwise lets the request through anonymously
func OptionalAuthenticate(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if user, err := resolver.ResolveUser(r.Context(), token); err == nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the bearer token, falling back to the token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeResolveError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind == apperrors.KindUpstream {
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	message := appErr.Message
	if message == "" {
		message = msgInvalidToken
	}
	writeError(w, appErr.Kind.HTTPStatus(), message, appErr.Code)
}

// WithUser stores the authenticated account and its identity in the context
func WithUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, identityKey, user.Identity())
}

// GetIdentity retrieves the caller identity from context
func GetIdentity(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

// GetUser retrieves the authenticated account from context
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// IsAdmin reports whether the caller is authenticated with an administrative role
func IsAdmin(ctx context.Context) bool {
	identity, ok := GetIdentity(ctx)
	return ok && models.NewRoleSet(models.AdminRoles...).Allows(identity.Role)
}
