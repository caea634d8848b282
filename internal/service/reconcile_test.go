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

func TestSplitNames(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "  ,  , ", []string{}},
		{"single", "J.R.R. Tolkien", []string{"J.R.R. Tolkien"}},
		{"trims", " Terry Pratchett ,  Neil Gaiman ", []string{"Terry Pratchett", "Neil Gaiman"}},
		{"drops repeats", "fantasy,fantasy, fantasy", []string{"fantasy"}},
		{"case sensitive", "Fantasy,fantasy", []string{"Fantasy", "fantasy"}},
		{"nfc", "Café,Café", []string{"Café"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitNames(tt.raw))
		})
	}
}

func TestValidateNames(t *testing.T) {
	long := strings.Repeat("x", domain.MaxNameLength+1)

	require.NoError(t, ValidateNames(BookNames{Authors: strPtr("a,b"), Publisher: strPtr(strings.Repeat("x", domain.MaxNameLength))}))

	err := ValidateNames(BookNames{Authors: strPtr("ok," + long), Publisher: strPtr(long)})
	require.Error(t, err)
	fields := domainerrors.FieldErrors(err)
	assert.Contains(t, fields, "authors")
	assert.Contains(t, fields, "publisher")
	assert.NotContains(t, fields, "categories")

	assert.NoError(t, ValidateNames(BookNames{}))
}

func TestReconciler_DistinctNamesCreateDistinctRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "alice")

	got, err := env.reconciler.Resolve(ctx, actor, domain.KindAuthor, []string{"N1", "N2"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.Equal(t, 2, env.countEntities(t, domain.KindAuthor))

	again, err := env.reconciler.Resolve(ctx, actor, domain.KindAuthor, []string{"N1"})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, got[0].ID, again[0].ID)
	assert.Equal(t, 2, env.countEntities(t, domain.KindAuthor))
}

func TestReconciler_StampsCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "alice")

	got, err := env.reconciler.Resolve(ctx, actor, domain.KindCategory, []string{"fantasy"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].AddedBy.Is(actor.ProfileID))
	assert.Equal(t, today(), got[0].AddedDate)
}

func TestReconciler_ReusesSeededRowWithoutRestamping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "alice")
	seeded := env.seedEntity(t, domain.KindPublisher, "publisher-seed", "Pub Inc.")

	got, err := env.reconciler.Resolve(ctx, actor, domain.KindPublisher, []string{"Pub Inc."})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got[0].ID)
	assert.False(t, got[0].AddedBy.IsSet())
}

func TestReconciler_ApplyIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "alice")

	book, err := env.books.Create(ctx, actor, BookInput{Title: "Good Omens"})
	require.NoError(t, err)

	names := BookInput{Authors: "Terry Pratchett, Neil Gaiman", Categories: "fantasy", Publisher: "Gollancz"}.Names()
	require.NoError(t, env.reconciler.Apply(ctx, actor, book.ID, names))
	first, err := env.books.Get(ctx, book.ID)
	require.NoError(t, err)

	require.NoError(t, env.reconciler.Apply(ctx, actor, book.ID, names))
	second, err := env.books.Get(ctx, book.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, domain.IDs(first.Authors), domain.IDs(second.Authors))
	assert.ElementsMatch(t, domain.IDs(first.Categories), domain.IDs(second.Categories))
	assert.Equal(t, first.PublisherID, second.PublisherID)
	assert.Equal(t, 2, env.countEntities(t, domain.KindAuthor))
	assert.Equal(t, 1, env.countEntities(t, domain.KindCategory))
	assert.Equal(t, 1, env.countEntities(t, domain.KindPublisher))
}

func TestReconciler_ApplySkipsAbsentRelations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "alice")

	book, err := env.books.Create(ctx, actor, BookInput{
		Title:      "Good Omens",
		Authors:    "Terry Pratchett",
		Categories: "fantasy",
		Publisher:  "Gollancz",
	})
	require.NoError(t, err)

	require.NoError(t, env.reconciler.Apply(ctx, actor, book.ID, BookNames{Authors: strPtr("Neil Gaiman")}))
	got, err := env.books.Get(ctx, book.ID)
	require.NoError(t, err)

	require.Len(t, got.Authors, 1)
	assert.Equal(t, "Neil Gaiman", got.Authors[0].Name)
	assert.Equal(t, domain.IDs(book.Categories), domain.IDs(got.Categories))
	assert.Equal(t, book.PublisherID, got.PublisherID)
}

func strPtr(s string) *string { return &s }
