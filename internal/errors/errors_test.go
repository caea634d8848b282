package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Forbidden("books can be deleted only by the person who added them")

	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("delete book: %w", err)
	assert.True(t, Is(wrapped, ErrForbidden))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeInternal, "save book")

	assert.Equal(t, "save book: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestFieldErrors(t *testing.T) {
	err := ValidationWithDetails("invalid input", map[string]string{"value": "must be at most 10"})
	assert.Equal(t, map[string]string{"value": "must be at most 10"}, FieldErrors(err))

	assert.Nil(t, FieldErrors(NotFound("book not found")))
	assert.Nil(t, FieldErrors(Validation("no details")))
}
