package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// Rate limit messages per limiter
const (
	MsgTooManyRequests = "Too many requests from this IP, please try again later."
	MsgTooManyLogins   = "Too many login attempts, please try again later."
	MsgTooManyContacts = "Too many contact form submissions, please try again later."
)

// RateLimit limits requests per client IP within a sliding window and answers 429 in the envelope.
// The key is the socket address; forwarded headers are client controlled and never used.
func RateLimit(limit int, window time.Duration, message string) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, message, "RATE_LIMITED")
		}),
	)
}
