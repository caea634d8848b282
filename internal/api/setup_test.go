package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/http/response"
	"github.com/mybooks/mybooks-server/internal/logger"
	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
	"github.com/mybooks/mybooks-server/internal/ratelimit"
	"github.com/mybooks/mybooks-server/internal/search"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store/sqlite"
	"github.com/mybooks/mybooks-server/internal/validation"
)

// testEnvelope mirrors response.Envelope with a typed payload.
type testEnvelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api     humatest.TestAPI
	db      *sqlite.Store
	volumes *fakeVolumes
}

// routedAPI serves requests through the root router, as production does.
// The huma adapter alone only sees the inline route group.
type routedAPI struct {
	huma.API
	adapter huma.Adapter
}

func (a routedAPI) Adapter() huma.Adapter { return a.adapter }

type routedAdapter struct {
	huma.Adapter
	root http.Handler
}

func (a routedAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.root.ServeHTTP(w, r)
}

type fakeVolumes struct {
	volumes []googlebooks.Volume
	err     error
}

func (f *fakeVolumes) Search(context.Context, googlebooks.SearchParams) ([]googlebooks.Volume, error) {
	return f.volumes, f.err
}

func (f *fakeVolumes) Get(_ context.Context, id string) (*googlebooks.Volume, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.volumes {
		if f.volumes[i].ID == id {
			return &f.volumes[i], nil
		}
	}
	return nil, googlebooks.ErrNotFound
}

func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithOptions(t, Options{})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.Open(search.Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour, 2*time.Hour)
	require.NoError(t, err)

	v := validation.New()
	searchSvc := service.NewSearchService(idx, st, log)
	reconciler := service.NewReconciler(st, log)
	authSvc := service.NewAuthService(st, tokens, v, log)
	authSvc.SetHashParams(auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	volumes := &fakeVolumes{}

	services := &Services{
		Auth:     authSvc,
		Books:    service.NewBookService(st, reconciler, v, searchSvc, log),
		Catalog:  service.NewCatalogService(st, v, searchSvc, log),
		Profiles: service.NewProfileService(st, v, log),
		Votes:    service.NewVoteService(st, v, log),
		Search:   searchSvc,
		Metadata: service.NewMetadataService(volumes, log),
	}

	router := chi.NewRouter()
	s := NewServer(router, st, services, opts, log)

	api := routedAPI{API: s.API(), adapter: routedAdapter{Adapter: s.API().Adapter(), root: router}}

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, api),
		db:      st,
		volumes: volumes,
	}
}

// register creates an account over the API and returns a bearer header
// and the profile ID.
func (ts *testServer) register(t *testing.T, username string) (authHeader, profileID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/register", map[string]any{
		"username": username,
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/token", map[string]any{
		"username": username,
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[TokenResponse](t, resp.Body.Bytes())
	return "Authorization: Bearer " + env.Data.Token, env.Data.Profile.ID
}

// admin creates an administrator and returns a bearer header.
func (ts *testServer) admin(t *testing.T, username string) string {
	t.Helper()
	_, _, err := ts.services.Auth.EnsureAdmin(context.Background(), username, "correct horse", "")
	require.NoError(t, err)

	resp := ts.api.Post("/api/v1/auth/token", map[string]any{
		"username": username,
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return "Authorization: Bearer " + decode[TokenResponse](t, resp.Body.Bytes()).Data.Token
}

// createBook posts a book and returns it.
func (ts *testServer) createBook(t *testing.T, authHeader string, body map[string]any) BookResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/books", authHeader, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[BookResponse](t, resp.Body.Bytes()).Data
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

// newLimiter allows n requests per client before rejecting.
func newLimiter(t *testing.T, n int) *ratelimit.KeyedRateLimiter {
	t.Helper()
	l := ratelimit.New(ratelimit.PerInterval(1, time.Hour), n)
	t.Cleanup(l.Stop)
	return l
}
