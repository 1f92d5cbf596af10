package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrNotFound, ErrInvalidInput)
	assert.False(t, errors.Is(InvalidInput("x"), ErrNotFound))
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("disk full")}
	assert.Equal(t, "INTERNAL_ERROR: something broke: disk full", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "cake not found"}
	assert.Equal(t, "NOT_FOUND: cake not found", bare.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "cake-99")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, `product "cake-99" not found`, err.Message)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("quantity must be at least 1")
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("bad size"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("load: %w", NotFound("cart", "x")), http.StatusNotFound},
		{"bare sentinel", fmt.Errorf("parse: %w", ErrInvalidInput), http.StatusBadRequest},
		{"not found sentinel", ErrNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
