// Package apperrors defines the error taxonomy shared by services, repositories and handlers.
//
// Repositories and services return *Error values (or wrap them); handlers translate the kind
// into an HTTP status at the outer boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary
type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimit
)

// String returns the kind name used in logs
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "upstream"
	}
}

// HTTPStatus maps the kind to its response status.
// Conflicts are reported as 400 to match existing API consumers.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
	// Code is an optional machine readable code, e.g. FILE_TOO_LARGE
	Code   string
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error with optional field details
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Unauthenticated creates an authentication error
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Forbidden creates an authorization error
func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NotFound creates a not found error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict creates a unique constraint error
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// RateLimited creates a rate limit error
func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimit, Message: message}
}

// Upstream wraps a storage or transport failure
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// WithCode returns a validation error carrying a machine readable code
func WithCode(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// As extracts the *Error from an error chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err; unclassified errors are upstream failures
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindUpstream
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
