package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Token abc", "abc"},
		{"  Token   abc  ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, bearerToken(tt.header))
		})
	}
}

func TestAuthMiddleware_TokenScheme(t *testing.T) {
	ts := setupTestServer(t)
	bearer, _ := ts.register(t, "alice")
	token := bearer[len("Authorization: Bearer "):]

	resp := ts.api.Get("/api/v1/me", "Authorization: Token "+token)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestAuthMiddleware_InvalidTokenIsAnonymous(t *testing.T) {
	ts := setupTestServer(t)

	// Reads stay open; writes are refused.
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/books", "Authorization: Bearer not-a-token").Code)
	assert.Equal(t, http.StatusUnauthorized,
		ts.api.Post("/api/v1/books", "Authorization: Bearer not-a-token", map[string]any{"title": "X"}).Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Do(http.MethodOptions, "/api/v1/books",
		"Origin: https://example.com",
		"Access-Control-Request-Method: POST",
	)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}
