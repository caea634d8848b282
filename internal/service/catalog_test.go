package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybooks/mybooks-server/internal/domain"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
)

func TestCatalogService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "alice")

	e, err := env.catalog.Create(ctx, actor, domain.KindAuthor, CatalogInput{Name: "  J.R.R. Tolkien "})
	require.NoError(t, err)
	assert.Equal(t, "J.R.R. Tolkien", e.Name)
	assert.True(t, e.AddedBy.Is(actor.ProfileID))

	_, err = env.catalog.Create(ctx, actor, domain.KindAuthor, CatalogInput{Name: "J.R.R. Tolkien"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, domainerrors.FieldErrors(err)["name"], "already exists")
}

func TestCatalogService_CreateRequiresActor(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.Create(context.Background(), nil, domain.KindCategory, CatalogInput{Name: "fantasy"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestCatalogService_CreateRejectsBlankAndLongNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "alice")

	_, err := env.catalog.Create(ctx, actor, domain.KindCategory, CatalogInput{Name: "   "})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.catalog.Create(ctx, actor, domain.KindCategory, CatalogInput{Name: strings.Repeat("x", 51)})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestCatalogService_RejectsCommasInListedNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "alice")

	for _, kind := range []domain.Kind{domain.KindAuthor, domain.KindCategory} {
		_, err := env.catalog.Create(ctx, actor, kind, CatalogInput{Name: "Tolkien, J."})
		require.Error(t, err, kind)
		assert.Equal(t, kind.Label()+" names cannot contain commas", domainerrors.FieldErrors(err)["name"])
	}

	author, err := env.catalog.Create(ctx, actor, domain.KindAuthor, CatalogInput{Name: "Tolkien"})
	require.NoError(t, err)
	_, err = env.catalog.Update(ctx, actor, domain.KindAuthor, author.ID, CatalogInput{Name: "Tolkien, J."})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	pub, err := env.catalog.Create(ctx, actor, domain.KindPublisher, CatalogInput{Name: "Farrar, Straus and Giroux"})
	require.NoError(t, err)
	assert.Equal(t, "Farrar, Straus and Giroux", pub.Name)
}

func TestCatalogService_DeleteByNonCreatorIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	e, err := env.catalog.Create(ctx, alice, domain.KindPublisher, CatalogInput{Name: "Pub Inc."})
	require.NoError(t, err)

	err = env.catalog.Delete(ctx, bob, domain.KindPublisher, e.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
	assert.Contains(t, err.Error(), "Publishers can be deleted only by the person who added them")

	_, err = env.catalog.Get(ctx, domain.KindPublisher, e.ID)
	assert.NoError(t, err)

	_, err = env.catalog.Update(ctx, bob, domain.KindPublisher, e.ID, CatalogInput{Name: "Other"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
}

func TestCatalogService_DeleteWithoutCreatorAllowedForAnyone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.register(t, "bob")
	seeded := env.seedEntity(t, domain.KindCategory, "category-seed", "poetry")

	require.NoError(t, env.catalog.Delete(ctx, bob, domain.KindCategory, seeded.ID))
	_, err := env.catalog.Get(ctx, domain.KindCategory, seeded.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestCatalogService_AdminMayDeleteAnything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	root := env.admin(t, "root")

	e, err := env.catalog.Create(ctx, alice, domain.KindAuthor, CatalogInput{Name: "Ursula K. Le Guin"})
	require.NoError(t, err)
	require.NoError(t, env.catalog.Delete(ctx, root, domain.KindAuthor, e.ID))
}

func TestCatalogService_DeleteUnauthenticated(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedEntity(t, domain.KindCategory, "category-seed", "poetry")

	err := env.catalog.Delete(context.Background(), nil, domain.KindCategory, seeded.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestCatalogService_DeleteKeepsBooks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	book, err := env.books.Create(ctx, alice, BookInput{Title: "Hobbit", Authors: "J.R.R. Tolkien", Publisher: "Pub Inc."})
	require.NoError(t, err)
	require.NotNil(t, book.Publisher)

	require.NoError(t, env.catalog.Delete(ctx, alice, domain.KindPublisher, book.Publisher.ID))

	got, err := env.books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Publisher)
	assert.False(t, got.PublisherID.IsSet())
	assert.Len(t, got.Authors, 1)
}

func TestCatalogService_RenameRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.catalog.Create(ctx, alice, domain.KindCategory, CatalogInput{Name: "fantasy"})
	require.NoError(t, err)
	sf, err := env.catalog.Create(ctx, alice, domain.KindCategory, CatalogInput{Name: "sci-fi"})
	require.NoError(t, err)

	_, err = env.catalog.Update(ctx, alice, domain.KindCategory, sf.ID, CatalogInput{Name: "fantasy"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	renamed, err := env.catalog.Update(ctx, alice, domain.KindCategory, sf.ID, CatalogInput{Name: "science fiction"})
	require.NoError(t, err)
	assert.Equal(t, "science fiction", renamed.Name)
}

func TestCatalogService_BooksFor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.books.Create(ctx, alice, BookInput{Title: "Hobbit", Categories: "fantasy"})
	require.NoError(t, err)
	_, err = env.books.Create(ctx, alice, BookInput{Title: "Dune", Categories: "sci-fi"})
	require.NoError(t, err)

	cat, err := env.store.GetCatalogEntityByName(ctx, domain.KindCategory, "fantasy")
	require.NoError(t, err)

	books, err := env.catalog.BooksFor(ctx, domain.KindCategory, cat.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Hobbit", books[0].Title)
}
