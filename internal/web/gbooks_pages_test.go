package web

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
)

func TestGoogleBooksList(t *testing.T) {
	ts := setupSite(t)
	ts.volumes.volumes = []googlebooks.Volume{
		{ID: "v1", Title: "Dune", Authors: []string{"Frank Herbert"}, Year: "1965"},
	}

	rec := ts.do(t, http.MethodGet, "/gbooks/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Dune")
	assert.NotContains(t, rec.Body.String(), "No results.")

	rec = ts.do(t, http.MethodGet, "/gbooks/?title=dune", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/gbooks/v1/"`)
	assert.Contains(t, body, "Frank Herbert")
	// Anonymous visitors get no add link.
	assert.NotContains(t, body, "/book/create/v1/")

	session, _ := ts.login(t, "alice")
	rec = ts.do(t, http.MethodGet, "/gbooks/?title=dune", nil, session)
	assert.Contains(t, rec.Body.String(), "/book/create/v1/")
}

func TestGoogleBooksList_ProviderFailureShowsNoResults(t *testing.T) {
	ts := setupSite(t)
	ts.volumes.err = errors.New("upstream down")

	rec := ts.do(t, http.MethodGet, "/gbooks/?authors=herbert", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No results.")
}

func TestGoogleBooksDetail(t *testing.T) {
	ts := setupSite(t)
	rank := 4.0
	ts.volumes.volumes = []googlebooks.Volume{
		{ID: "v1", Title: "Dune", Authors: []string{"Frank Herbert"}, Publisher: "Chilton", Rank: &rank, Link: "https://books.google.com/v1"},
	}

	rec := ts.do(t, http.MethodGet, "/gbooks/v1/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Chilton")
	assert.Contains(t, body, "https://books.google.com/v1")

	rec = ts.do(t, http.MethodGet, "/gbooks/missing/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
