package handlers

import (
	"net/http"
	"time"

	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/models"
)

// Guards bundles the route middleware the controllers mount on their routes
type Guards struct {
	// Authenticate rejects requests without a valid access token
	Authenticate func(http.Handler) http.Handler
	// Optional attaches the identity when a valid token is present
	Optional func(http.Handler) http.Handler
	// Admin requires an administrative role; mount after Authenticate
	Admin func(http.Handler) http.Handler
	// LoginLimit throttles credential attempts
	LoginLimit func(http.Handler) http.Handler
	// ContactLimit throttles public contact form submissions
	ContactLimit func(http.Handler) http.Handler
}

// Rate limits for the sensitive public endpoints
const (
	LoginAttempts     = 5
	LoginWindow       = 15 * time.Minute
	ContactSubmits    = 5
	ContactWindow     = time.Hour
	GlobalRequests    = 100
	GlobalLimitWindow = 15 * time.Minute
)

// NewGuards builds the standard guards around the account resolver
func NewGuards(resolver middleware.UserResolver) Guards {
	return Guards{
		Authenticate: middleware.Authenticate(resolver),
		Optional:     middleware.OptionalAuthenticate(resolver),
		Admin:        middleware.RequireRoles(models.AdminRoles...),
		LoginLimit:   middleware.RateLimit(LoginAttempts, LoginWindow, middleware.MsgTooManyLogins),
		ContactLimit: middleware.RateLimit(ContactSubmits, ContactWindow, middleware.MsgTooManyContacts),
	}
}
