package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybooks/mybooks-server/internal/domain"
)

func TestCatalog_CreateAndList(t *testing.T) {
	for _, kind := range domain.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			ts := setupTestServer(t)
			header, profileID := ts.register(t, "alice")
			base := "/api/v1/" + kind.Plural()

			resp := ts.api.Post(base, header, map[string]any{"name": "Orbit"})
			require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

			created := decode[CatalogEntityResponse](t, resp.Body.Bytes()).Data
			assert.Equal(t, "Orbit", created.Name)
			assert.Equal(t, string(kind), created.Kind)
			require.NotNil(t, created.AddedBy)
			assert.Equal(t, profileID, *created.AddedBy)

			resp = ts.api.Post(base, header, map[string]any{"name": "Orbit"})
			assert.Equal(t, http.StatusBadRequest, resp.Code)

			resp = ts.api.Get(base + "?name=orb")
			require.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, 1, decode[PageResponse[CatalogEntityResponse]](t, resp.Body.Bytes()).Data.Total)
		})
	}
}

func TestCatalog_DeletePolicy(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := ts.register(t, "alice")
	bob, _ := ts.register(t, "bob")

	resp := ts.api.Post("/api/v1/publishers", alice, map[string]any{"name": "Tor"})
	require.Equal(t, http.StatusCreated, resp.Code)
	tor := decode[CatalogEntityResponse](t, resp.Body.Bytes()).Data

	resp = ts.api.Delete("/api/v1/publishers/"+tor.ID, bob)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, decode[any](t, resp.Body.Bytes()).Error.Message,
		"Publishers can be deleted only by the person who added them")

	assert.Equal(t, http.StatusUnauthorized, ts.api.Delete("/api/v1/publishers/"+tor.ID).Code)
	assert.Equal(t, http.StatusNoContent, ts.api.Delete("/api/v1/publishers/"+tor.ID, alice).Code)
}

func TestCatalog_NullCreatorDeletableByAnyone(t *testing.T) {
	ts := setupTestServer(t)
	bob, _ := ts.register(t, "bob")

	seeded := &domain.CatalogEntity{
		ID:        "cat-seeded",
		Kind:      domain.KindCategory,
		Name:      "Poetry",
		AddedBy:   domain.NoID(),
		AddedDate: domain.DateOf(time.Now()),
	}
	require.NoError(t, ts.db.CreateCatalogEntity(context.Background(), seeded))

	assert.Equal(t, http.StatusNoContent, ts.api.Delete("/api/v1/categories/cat-seeded", bob).Code)
}

func TestCatalog_EntityBooks(t *testing.T) {
	ts := setupTestServer(t)
	header, _ := ts.register(t, "alice")
	book := ts.createBook(t, header, map[string]any{"title": "Emma", "authors": "Jane Austen"})

	resp := ts.api.Get("/api/v1/authors/" + book.Authors[0].ID + "/books")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	books := decode[[]BookResponse](t, resp.Body.Bytes()).Data
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)

	// Deleting the author keeps the book.
	assert.Equal(t, http.StatusNoContent, ts.api.Delete("/api/v1/authors/"+book.Authors[0].ID, header).Code)
	detail := decode[BookDetailResponse](t, ts.api.Get("/api/v1/books/"+book.ID).Body.Bytes()).Data
	assert.Empty(t, detail.Authors)
}

func TestCatalog_Rename(t *testing.T) {
	ts := setupTestServer(t)
	header, _ := ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/authors", header, map[string]any{"name": "Jane Austin"})
	require.Equal(t, http.StatusCreated, resp.Code)
	author := decode[CatalogEntityResponse](t, resp.Body.Bytes()).Data

	resp = ts.api.Patch("/api/v1/authors/"+author.ID, header, map[string]any{"name": "Jane Austen"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Jane Austen", decode[CatalogEntityResponse](t, resp.Body.Bytes()).Data.Name)
}
