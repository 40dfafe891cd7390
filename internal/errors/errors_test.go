package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrorIs tests sentinel matching by code
func TestErrorIs(t *testing.T) {
	err := NotFoundf("book %s not found", "book-1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

// TestErrorIs_Wrapped tests matching through fmt wrapping
func TestErrorIs_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading library: %w", Validation("bad payload"))

	assert.ErrorIs(t, err, ErrValidation)
}

// TestWrap tests cause preservation
func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrapf(cause, CodePersistence, "failed to write %s collection", "books")

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "books")
}

// TestHTTPStatus tests the code→status mapping
func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodePersistence, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
		{Code("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), "code %s", tt.code)
	}
}

// TestWithDetails tests that details attach without losing the code
func TestWithDetails(t *testing.T) {
	err := Validation("validation failed").WithDetails(map[string]string{"title": "required"})

	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, map[string]string{"title": "required"}, err.Details)
}
