package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

// parseListParams reads page and limit, rejecting out of range values
func parseListParams(r *http.Request) (models.ListParams, error) {
	q := r.URL.Query()
	params := models.DefaultListParams()
	var fields []apperrors.FieldError

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			fields = append(fields, apperrors.FieldError{Field: "page", Message: "Page must be a positive integer"})
		} else {
			params.Page = page
		}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > models.MaxLimit {
			fields = append(fields, apperrors.FieldError{
				Field:   "limit",
				Message: fmt.Sprintf("Limit must be between 1 and %d", models.MaxLimit),
			})
		} else {
			params.Limit = limit
		}
	}

	if len(fields) > 0 {
		return params, apperrors.Validation("Validation failed", fields...)
	}
	return params, nil
}

// parseBool accepts only the literal strings "true" and "false"; anything else means no filter
func parseBool(q url.Values, key string) *bool {
	var v bool
	switch q.Get(key) {
	case "true":
		v = true
	case "false":
		v = false
	default:
		return nil
	}
	return &v
}

// parseDate reads an optional YYYY-MM-DD or RFC3339 query value
func parseDate(q url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, apperrors.Validation("Validation failed", apperrors.FieldError{
			Field:   key,
			Message: key + " must be a valid date",
		})
	}
	return &d.Time, nil
}

// parseInt reads an optional integer query value; malformed input means no filter
func parseInt(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return n
}

// listData shapes a page of items as {<key>: items, pagination}
func listData[T any](key string, result *models.ListResult[T]) map[string]any {
	return map[string]any{
		key:          result.Items,
		"pagination": result.Pagination,
	}
}
