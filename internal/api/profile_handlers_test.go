package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_FriendToggle(t *testing.T) {
	ts := setupTestServer(t)
	alice, aliceID := ts.register(t, "alice")
	_, bobID := ts.register(t, "bob")

	resp := ts.api.Put("/api/v1/profiles/"+aliceID+"/friends/"+bobID, alice)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	friends := decode[[]ProfileResponse](t, resp.Body.Bytes()).Data
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Name)

	// Friendship is symmetric.
	bobDetail := decode[ProfileDetailResponse](t, ts.api.Get("/api/v1/profiles/"+bobID).Body.Bytes()).Data
	require.Len(t, bobDetail.Friends, 1)
	assert.Equal(t, aliceID, bobDetail.Friends[0].ID)

	resp = ts.api.Delete("/api/v1/profiles/"+aliceID+"/friends/"+bobID, alice)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Empty(t, decode[[]ProfileResponse](t, resp.Body.Bytes()).Data)
}

func TestProfile_ToggleRequiresOwner(t *testing.T) {
	ts := setupTestServer(t)
	_, aliceID := ts.register(t, "alice")
	bob, bobID := ts.register(t, "bob")

	resp := ts.api.Put("/api/v1/profiles/"+aliceID+"/friends/"+bobID, bob)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "You have no power here!", decode[any](t, resp.Body.Bytes()).Error.Message)
}

func TestProfile_OwnedBooks(t *testing.T) {
	ts := setupTestServer(t)
	alice, aliceID := ts.register(t, "alice")
	book := ts.createBook(t, alice, map[string]any{"title": "Dune"})

	resp := ts.api.Put("/api/v1/profiles/"+aliceID+"/books/"+book.ID, alice)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	owned := decode[[]BookResponse](t, resp.Body.Bytes()).Data
	require.Len(t, owned, 1)
	assert.Equal(t, book.ID, owned[0].ID)

	resp = ts.api.Delete("/api/v1/profiles/"+aliceID+"/books/"+book.ID, alice)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[[]BookResponse](t, resp.Body.Bytes()).Data)
}

func TestProfile_Rename(t *testing.T) {
	ts := setupTestServer(t)
	alice, aliceID := ts.register(t, "alice")
	ts.register(t, "bob")

	resp := ts.api.Patch("/api/v1/profiles/"+aliceID, alice, map[string]any{"name": "bob"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Patch("/api/v1/profiles/"+aliceID, alice, map[string]any{"name": "alicia"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "alicia", decode[ProfileResponse](t, resp.Body.Bytes()).Data.Name)

	// The login name follows the profile.
	me := decode[AccountResponse](t, ts.api.Get("/api/v1/me", alice).Body.Bytes()).Data
	assert.Equal(t, "alicia", me.User.Username)
}

func TestProfile_DetailFlags(t *testing.T) {
	ts := setupTestServer(t)
	alice, aliceID := ts.register(t, "alice")
	bob, bobID := ts.register(t, "bob")
	require.Equal(t, http.StatusOK, ts.api.Put("/api/v1/profiles/"+aliceID+"/friends/"+bobID, alice).Code)

	own := decode[ProfileDetailResponse](t, ts.api.Get("/api/v1/profiles/"+aliceID, alice).Body.Bytes()).Data
	assert.True(t, own.CanEdit)

	other := decode[ProfileDetailResponse](t, ts.api.Get("/api/v1/profiles/"+aliceID, bob).Body.Bytes()).Data
	assert.False(t, other.CanEdit)
	assert.True(t, other.IsFriend)
}

func TestListProfiles(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")
	ts.register(t, "bob")

	resp := ts.api.Get("/api/v1/profiles?name=ALI")
	require.Equal(t, http.StatusOK, resp.Code)
	page := decode[PageResponse[ProfileResponse]](t, resp.Body.Bytes()).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", page.Items[0].Name)
}
