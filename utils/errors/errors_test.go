package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsAPIError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrNotFound)
	got := Wrap(wrapped, "X", "x", http.StatusTeapot)
	assert.Same(t, ErrNotFound, got)
}

func TestWrap_PlainError(t *testing.T) {
	got := Wrap(fmt.Errorf("boom"), "UNKNOWN_ERROR", "Unexpected error", http.StatusInternalServerError)
	assert.Equal(t, "UNKNOWN_ERROR", got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, "boom", got.Details)
}

func TestInvalidInput(t *testing.T) {
	got := InvalidInput("limit must be a number")
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, "INVALID_INPUT", got.Code)
	assert.Equal(t, "limit must be a number", got.Details)
	assert.Empty(t, ErrInvalidInput.Details)
}
