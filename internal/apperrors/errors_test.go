package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{Unauthenticated("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{RateLimited("slow down"), http.StatusTooManyRequests},
		{Upstream("db", errors.New("down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Kind.HTTPStatus())
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NotFound("blog post not found"))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, KindUpstream, KindOf(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestError_Message(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("failed to query users", cause)

	assert.Equal(t, "failed to query users: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "slug taken", Conflict("slug taken").Error())
}

func TestWithCode(t *testing.T) {
	err := WithCode("FILE_TOO_LARGE", "File too large")

	appErr, ok := As(fmt.Errorf("upload: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "FILE_TOO_LARGE", appErr.Code)
	assert.Equal(t, KindValidation, appErr.Kind)
}

func TestValidation_Fields(t *testing.T) {
	err := Validation("Validation failed", FieldError{Field: "email", Message: "is required"})

	assert.Len(t, err.Fields, 1)
	assert.Equal(t, "email", err.Fields[0].Field)
}
