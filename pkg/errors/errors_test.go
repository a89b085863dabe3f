package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("forecast"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"bad request", BadRequest("bad horizon"), "BAD_REQUEST", http.StatusBadRequest, ErrBadRequest},
		{"conflict", Conflict("busy"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"internal", Internal("boom"), "INTERNAL_ERROR", http.StatusInternalServerError, ErrInternal},
		{"validation", Validation(map[string]string{"horizon": "invalid value"}), "VALIDATION_ERROR", http.StatusBadRequest, ErrValidation},
		{"unavailable", Unavailable("analytics", fmt.Errorf("dial tcp: refused")), "UPSTREAM_UNAVAILABLE", http.StatusBadGateway, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.True(t, Is(tt.err, tt.sentinel))
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(cause, "DB_ERROR", "query failed", http.StatusInternalServerError)

	assert.Equal(t, "query failed: connection reset", err.Error())
	assert.True(t, Is(err, cause))
	assert.Equal(t, "plain", New("X", "plain", http.StatusTeapot).Error())
}

func TestAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading stats: %w", NotFound("stats").WithDetails(map[string]string{"k": "v"}))

	var appErr *AppError
	require.True(t, As(wrapped, &appErr))
	assert.Equal(t, "stats not found", appErr.Message)
	assert.Equal(t, map[string]string{"k": "v"}, appErr.Details)
}
