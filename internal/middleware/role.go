package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

// RequireRoles admits only authenticated callers whose role is in the given set
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := models.NewRoleSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Access denied. Authentication required.", "")
				return
			}
			if !allowed.Allows(identity.Role) {
				writeError(w, http.StatusForbidden, "Access denied. Insufficient permissions.", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OwnerLookup returns the author id of a resource, nil when it has none
type OwnerLookup func(ctx context.Context, id int) (*int, error)

// RequireOwnership admits administrators and the owner of the resource named by the URL param
func RequireOwnership(lookup OwnerLookup, param string) func(http.Handler) http.Handler {
	privileged := models.NewRoleSet(models.AdminRoles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Access denied. Authentication required.", "")
				return
			}
			if privileged.Allows(identity.Role) {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.Atoi(chi.URLParam(r, param))
			if err != nil || id <= 0 {
				writeError(w, http.StatusBadRequest, "Invalid ID", "")
				return
			}

			owner, err := lookup(r.Context(), id)
			if err != nil {
				if apperrors.IsNotFound(err) {
					writeError(w, http.StatusNotFound, "Resource not found", "")
					return
				}
				writeError(w, http.StatusInternalServerError, "Internal server error", "")
				return
			}
			if owner == nil || *owner != identity.ID {
				writeError(w, http.StatusForbidden, "Access denied. You can only modify your own resources.", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
