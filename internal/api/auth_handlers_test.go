package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_CreatesUserAndProfile(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/register", map[string]any{
		"username": "alice",
		"password": "correct horse",
		"email":    "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[AccountResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, "alice", env.Data.User.Username)
	assert.Equal(t, "alice", env.Data.Profile.Name)
	assert.False(t, env.Data.User.IsAdmin)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/register", map[string]any{
		"username": "alice",
		"password": "another password",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, resp.Body.String(), "A user with that username already exists.")
}

func TestRegister_ShortPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/register", map[string]any{
		"username": "bob",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "password")
}

func TestToken_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/auth/token", map[string]any{
		"username": "alice",
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestMe(t *testing.T) {
	ts := setupTestServer(t)
	header, profileID := ts.register(t, "alice")

	resp := ts.api.Get("/api/v1/me", header)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[AccountResponse](t, resp.Body.Bytes())
	assert.Equal(t, "alice", env.Data.User.Username)
	assert.Equal(t, profileID, env.Data.Profile.ID)
}

func TestMe_Anonymous(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestToken_RateLimited(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{AuthLimiter: newLimiter(t, 2)})

	body := map[string]any{"username": "nobody", "password": "whatever1"}
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/token", body).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/token", body).Code)

	resp := ts.api.Post("/api/v1/auth/token", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
}
