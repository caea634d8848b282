package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/logger"
	"github.com/mybooks/mybooks-server/internal/search"
	"github.com/mybooks/mybooks-server/internal/store"
	"github.com/mybooks/mybooks-server/internal/store/sqlite"
	"github.com/mybooks/mybooks-server/internal/validation"
)

// testEnv wires every service over a fresh database and in-memory index.
type testEnv struct {
	store      *sqlite.Store
	index      *search.Index
	auth       *AuthService
	reconciler *Reconciler
	catalog    *CatalogService
	books      *BookService
	votes      *VoteService
	profiles   *ProfileService
	search     *SearchService
}

func newTestEnv(t *testing.T) *testEnv {
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
	searchSvc := NewSearchService(idx, st, log)
	reconciler := NewReconciler(st, log)

	authSvc := NewAuthService(st, tokens, v, log)
	authSvc.SetHashParams(auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	return &testEnv{
		store:      st,
		index:      idx,
		auth:       authSvc,
		reconciler: reconciler,
		catalog:    NewCatalogService(st, v, searchSvc, log),
		books:      NewBookService(st, reconciler, v, searchSvc, log),
		votes:      NewVoteService(st, v, log),
		profiles:   NewProfileService(st, v, log),
		search:     searchSvc,
	}
}

// register creates a user and returns its actor.
func (e *testEnv) register(t *testing.T, username string) *domain.Actor {
	t.Helper()
	ctx := context.Background()
	user, _, err := e.auth.Register(ctx, RegisterInput{Username: username, Password: "correct horse"})
	require.NoError(t, err)
	actor, err := e.auth.ActorFor(ctx, user)
	require.NoError(t, err)
	return actor
}

// admin creates an administrator and returns its actor.
func (e *testEnv) admin(t *testing.T, username string) *domain.Actor {
	t.Helper()
	ctx := context.Background()
	user, _, err := e.auth.EnsureAdmin(ctx, username, "correct horse", "")
	require.NoError(t, err)
	actor, err := e.auth.ActorFor(ctx, user)
	require.NoError(t, err)
	return actor
}

// seedEntity inserts a catalog entity with no recorded creator.
func (e *testEnv) seedEntity(t *testing.T, kind domain.Kind, id, name string) *domain.CatalogEntity {
	t.Helper()
	ent := &domain.CatalogEntity{ID: id, Kind: kind, Name: name, AddedBy: domain.NoID(), AddedDate: today()}
	require.NoError(t, e.store.CreateCatalogEntity(context.Background(), ent))
	return ent
}

func (e *testEnv) countEntities(t *testing.T, kind domain.Kind) int {
	t.Helper()
	page, err := e.catalog.List(context.Background(), kind, store.NameFilter{}, store.PageParams{Page: 1, PerPage: store.MaxPerPage})
	require.NoError(t, err)
	return page.Total
}
