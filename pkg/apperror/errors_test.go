package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated sentinel", ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden helper", Forbidden("nope"), http.StatusForbidden},
		{"wrapped not found", fmt.Errorf("load course: %w", ErrNotFound), http.StatusNotFound},
		{"validation helper", Validation("title is required"), http.StatusBadRequest},
		{"conflict helper", Conflict("already enrolled"), http.StatusConflict},
		{"rate limit", RateLimited("slow down"), http.StatusTooManyRequests},
		{"internal helper", Internal(errors.New("db down")), http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	t.Run("internal details are hidden", func(t *testing.T) {
		err := Internal(errors.New("pq: relation \"users\" does not exist"))
		assert.Equal(t, "internal server error", PublicMessage(err))
	})

	t.Run("raw errors are hidden", func(t *testing.T) {
		assert.Equal(t, "internal server error", PublicMessage(errors.New("dial tcp: refused")))
	})

	t.Run("app error message is used", func(t *testing.T) {
		assert.Equal(t, "course not found", PublicMessage(NotFound("course not found")))
	})

	t.Run("wrapped sentinel uses the sentinel text", func(t *testing.T) {
		err := fmt.Errorf("lesson 42: %w", ErrForbidden)
		assert.Equal(t, ErrForbidden.Error(), PublicMessage(err))
	})
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, NotFound("x"), ErrNotFound)
}
