package providers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybooks/mybooks-server/internal/api"
	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/config"
	"github.com/mybooks/mybooks-server/internal/logger"
	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
	"github.com/mybooks/mybooks-server/internal/search"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store/sqlite"
	"github.com/mybooks/mybooks-server/internal/validation"
	"github.com/mybooks/mybooks-server/internal/web"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	log := logger.New(logger.Config{Writer: io.Discard, Level: logger.ParseLevel("error")})

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.Open(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	key, err := auth.LoadOrGenerateKey(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	searchSvc := service.NewSearchService(idx, st, log.Logger)
	authSvc := service.NewAuthService(st, tokens, v, log.Logger)
	books := service.NewBookService(st, service.NewReconciler(st, log.Logger), v, searchSvc, log.Logger)
	catalog := service.NewCatalogService(st, v, searchSvc, log.Logger)
	profiles := service.NewProfileService(st, v, log.Logger)
	votes := service.NewVoteService(st, v, log.Logger)
	metadata := service.NewMetadataService(googlebooks.New(googlebooks.Options{BaseURL: "http://127.0.0.1:0"}), log.Logger)

	handler, err := NewHandler(HandlerDeps{
		Config: &config.Config{
			Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
			Catalog: config.CatalogConfig{PageSize: 10},
		},
		Store: st,
		API: &api.Services{
			Auth: authSvc, Books: books, Catalog: catalog, Profiles: profiles,
			Votes: votes, Search: searchSvc, Metadata: metadata,
		},
		Web: &web.Services{
			Auth: authSvc, Books: books, Catalog: catalog, Profiles: profiles,
			Votes: votes, Metadata: metadata,
		},
		Logger:  log,
		Version: "test",
	})
	require.NoError(t, err)
	return handler
}

func TestNewHandler_Routes(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		path        string
		wantStatus  int
		contentType string
	}{
		{"/health", http.StatusOK, "application/json"},
		{"/api/v1/books", http.StatusOK, "application/json"},
		{"/book/list/", http.StatusOK, "text/html"},
		{"/", http.StatusOK, "text/html"},
		{"/metrics", http.StatusOK, "text/plain"},
		{"/no/such/page/", http.StatusNotFound, "text/html"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
		})
	}
}

func TestNewHandler_RecordsRequestMetrics(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/book/list/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `mybooks_http_requests_total{method="GET",route="/book/list/",status_code="200"}`)
}
