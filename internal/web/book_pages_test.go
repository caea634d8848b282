package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
	"github.com/mybooks/mybooks-server/internal/service"
)

func TestBookList_FiltersAndPages(t *testing.T) {
	ts := setupSite(t)
	ts.login(t, "alice")
	ts.createBook(t, "alice", service.BookInput{Title: "Emma", Authors: "Jane Austen"})
	ts.createBook(t, "alice", service.BookInput{Title: "Persuasion", Authors: "Jane Austen"})
	ts.createBook(t, "alice", service.BookInput{Title: "Sanditon", Authors: "Jane Austen"})
	ts.createBook(t, "alice", service.BookInput{Title: "The Hobbit", Authors: "J. R. R. Tolkien"})

	rec := ts.do(t, http.MethodGet, "/book/list/?authors=austen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Emma")
	assert.Contains(t, body, "Persuasion")
	assert.NotContains(t, body, "The Hobbit")
	assert.Contains(t, body, "Page 1 of 2")
	assert.Contains(t, body, "/book/list/?authors=austen&amp;page=2")

	rec = ts.do(t, http.MethodGet, "/book/list/?authors=austen&page=2", nil)
	assert.Contains(t, rec.Body.String(), "Sanditon")

	// The root shows the same list.
	rec = ts.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Emma")
}

func TestBookCreate_RequiresLogin(t *testing.T) {
	ts := setupSite(t)

	rec := ts.do(t, http.MethodGet, "/book/create/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login/?next=%2Fbook%2Fcreate%2F", rec.Header().Get("Location"))

	rec = ts.do(t, http.MethodPost, "/book/create/", url.Values{"title": {"Nope"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login/?next="))
}

func TestBookCreate_Flow(t *testing.T) {
	ts := setupSite(t)
	session, _ := ts.login(t, "alice")

	rec := ts.do(t, http.MethodPost, "/book/create/", url.Values{
		"title":      {"Hobbit"},
		"authors":    {"J.R.R. Tolkien"},
		"categories": {"fantasy"},
		"publisher":  {"Pub Inc."},
		"year":       {"1937"},
		"owned":      {"True"},
	}, session)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/book/"))
	assert.Equal(t, "Hobbit was created successfully!", flashOf(t, rec))

	rec = ts.do(t, http.MethodGet, location, nil, session, cookieNamed(rec, flashCookie))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Hobbit was created successfully!")
	assert.Contains(t, body, "J.R.R. Tolkien")
	assert.Contains(t, body, "Pub Inc.")
	assert.Contains(t, body, `<option value="True" selected>`)
}

func TestBookCreate_ValidationRerenders(t *testing.T) {
	ts := setupSite(t)
	session, _ := ts.login(t, "alice")

	rec := ts.do(t, http.MethodPost, "/book/create/", url.Values{
		"title":   {"   "},
		"authors": {"Someone"},
	}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="error"`)
	assert.Contains(t, body, `value="Someone"`)

	rec = ts.do(t, http.MethodPost, "/book/create/", url.Values{"title": {"Dune"}, "year": {"soon"}}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enter a whole number.")
}

func TestBookCreate_PrefillFromGoogleBooks(t *testing.T) {
	ts := setupSite(t)
	session, _ := ts.login(t, "alice")
	rank := 4.5
	ts.volumes.volumes = []googlebooks.Volume{{ID: "gid1", Title: "Dune", Authors: []string{"Frank Herbert", "Brian Herbert"}, Year: "1965", Rank: &rank}}

	rec := ts.do(t, http.MethodGet, "/book/create/gid1/", nil, session)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, `value="Dune"`)
	assert.Contains(t, body, `value="Frank Herbert,Brian Herbert"`)
	assert.Contains(t, body, `value="1965"`)
	assert.Contains(t, body, `value="4.5"`)

	rec = ts.do(t, http.MethodGet, "/book/create/missing/", nil, session)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookUpdate(t *testing.T) {
	ts := setupSite(t)
	alice, _ := ts.login(t, "alice")
	bob, _ := ts.login(t, "bob")
	book := ts.createBook(t, "alice", service.BookInput{Title: "Dune", Authors: "Frank Herbert"})

	rec := ts.do(t, http.MethodGet, "/book/"+book.ID+"/update/", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Frank Herbert"`)

	// Clearing the authors field removes every author.
	rec = ts.do(t, http.MethodPost, "/book/"+book.ID+"/update/", url.Values{"title": {"Dune"}, "authors": {""}}, alice)
	require.Equal(t, http.StatusFound, rec.Code)
	got, err := ts.services.Books.Get(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Authors)

	rec = ts.do(t, http.MethodPost, "/book/"+book.ID+"/update/", url.Values{"title": {"Mine"}}, bob)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/book/"+book.ID+"/", rec.Header().Get("Location"))
	assert.Equal(t, "Books can be updated only by the person who added them to the database!", flashOf(t, rec))
}

func TestBookUpdateForm_DeniedRedirectsToDetail(t *testing.T) {
	ts := setupSite(t)
	ts.login(t, "alice")
	bob, _ := ts.login(t, "bob")
	root := ts.admin(t, "root")
	book := ts.createBook(t, "alice", service.BookInput{Title: "Dune"})

	rec := ts.do(t, http.MethodGet, "/book/"+book.ID+"/update/", nil, bob)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/book/"+book.ID+"/", rec.Header().Get("Location"))
	assert.Equal(t, "Books can be updated only by the person who added them to the database!", flashOf(t, rec))

	rec = ts.do(t, http.MethodGet, "/book/"+book.ID+"/update/", nil, root)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookDelete_Forbidden(t *testing.T) {
	ts := setupSite(t)
	ts.login(t, "alice")
	bob, _ := ts.login(t, "bob")
	book := ts.createBook(t, "alice", service.BookInput{Title: "Dune"})

	rec := ts.do(t, http.MethodGet, "/book/"+book.ID+"/delete/", nil, bob)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/book/"+book.ID+"/", rec.Header().Get("Location"))

	rec = ts.do(t, http.MethodPost, "/book/"+book.ID+"/delete/", url.Values{}, bob)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/book/"+book.ID+"/", rec.Header().Get("Location"))
	assert.Equal(t, "Books can be deleted only by the person who added them to the database!", flashOf(t, rec))

	_, err := ts.services.Books.Get(context.Background(), book.ID)
	assert.NoError(t, err)
}

func TestBookDelete_CreatorAndAdmin(t *testing.T) {
	ts := setupSite(t)
	alice, _ := ts.login(t, "alice")
	root := ts.admin(t, "root")
	first := ts.createBook(t, "alice", service.BookInput{Title: "Dune"})
	second := ts.createBook(t, "alice", service.BookInput{Title: "Emma"})

	rec := ts.do(t, http.MethodGet, "/book/"+first.ID+"/delete/", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Are you sure")

	rec = ts.do(t, http.MethodPost, "/book/"+first.ID+"/delete/", url.Values{}, alice)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/book/list/", rec.Header().Get("Location"))
	assert.Equal(t, "Book was deleted successfully!", flashOf(t, rec))

	rec = ts.do(t, http.MethodPost, "/book/"+second.ID+"/delete/", url.Values{}, root)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/book/list/", rec.Header().Get("Location"))
}

func TestVote(t *testing.T) {
	ts := setupSite(t)
	session, _ := ts.login(t, "alice")
	book := ts.createBook(t, "alice", service.BookInput{Title: "Dune"})

	rec := ts.do(t, http.MethodPost, "/book/"+book.ID+"/vote/", url.Values{"value": {"11"}}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)

	rec = ts.do(t, http.MethodPost, "/book/"+book.ID+"/vote/", url.Values{"value": {"5"}}, session)
	assert.Equal(t, http.StatusFound, rec.Code)
	rec = ts.do(t, http.MethodPost, "/book/"+book.ID+"/vote/", url.Values{"value": {"9"}}, session)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/book/"+book.ID+"/", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="value" min="1" max="10" value="9"`)

	rec = ts.do(t, http.MethodPost, "/book/"+book.ID+"/vote/", url.Values{"value": {"9"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login/"))
}
