package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("no rows")
	err := fmt.Errorf("failed to load rules: %w", NotFound("doctor", cause))

	appErr, ok := As(err)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus())
		assert.Equal(t, "doctor not found: no rows", appErr.Error())
		assert.ErrorIs(t, appErr, cause)
	}
	assert.True(t, HasCode(err, ErrNotFound))
	assert.False(t, HasCode(err, ErrForbidden))

	_, ok = As(cause)
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Conflict("busy", nil), http.StatusConflict},
		{Unavailable("loading", nil), http.StatusServiceUnavailable},
		{Internal(nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), tt.err.Message)
	}
}
