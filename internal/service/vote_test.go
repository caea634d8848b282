package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/store"
)

func TestVoteService_SecondVoteUpdatesFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	book, err := env.books.Create(ctx, alice, BookInput{Title: "Hobbit"})
	require.NoError(t, err)

	first, err := env.votes.Cast(ctx, alice, book.ID, VoteInput{Value: 5})
	require.NoError(t, err)
	second, err := env.votes.Cast(ctx, alice, book.ID, VoteInput{Value: 9})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 9, second.Value)

	page, err := env.votes.List(ctx, store.VoteFilter{ProfileID: alice.ProfileID, BookID: book.ID}, store.PageParams{Page: 1})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, 9, page.Items[0].Value)
}

func TestVoteService_InvalidFirstVoteLeavesNoRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	book, err := env.books.Create(ctx, alice, BookInput{Title: "Hobbit"})
	require.NoError(t, err)

	for _, v := range []int{0, 11, -3} {
		_, err := env.votes.Cast(ctx, alice, book.ID, VoteInput{Value: v})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	}

	_, err = env.store.GetVoteFor(ctx, alice.ProfileID, book.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVoteService_InvalidVoteKeepsExistingValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	book, err := env.books.Create(ctx, alice, BookInput{Title: "Hobbit"})
	require.NoError(t, err)
	_, err = env.votes.Cast(ctx, alice, book.ID, VoteInput{Value: 7})
	require.NoError(t, err)

	_, err = env.votes.Cast(ctx, alice, book.ID, VoteInput{Value: 42})
	require.Error(t, err)

	vote, err := env.store.GetVoteFor(ctx, alice.ProfileID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, vote.Value)
}

func TestVoteService_BookStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	book, err := env.books.Create(ctx, alice, BookInput{Title: "Hobbit"})
	require.NoError(t, err)
	_, err = env.votes.Cast(ctx, alice, book.ID, VoteInput{Value: 4})
	require.NoError(t, err)
	_, err = env.votes.Cast(ctx, bob, book.ID, VoteInput{Value: 10})
	require.NoError(t, err)

	detail, err := env.books.Detail(ctx, bob, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Book.VoteCount)
	require.NotNil(t, detail.Book.AverageVote)
	assert.InDelta(t, 7.0, *detail.Book.AverageVote, 0.001)
	require.NotNil(t, detail.MyVote)
	assert.Equal(t, 10, detail.MyVote.Value)
}

func TestVoteService_CastErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.votes.Cast(ctx, nil, "book-x", VoteInput{Value: 5})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	_, err = env.votes.Cast(ctx, alice, "book-missing", VoteInput{Value: 5})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestVoteService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	root := env.admin(t, "root")

	book, err := env.books.Create(ctx, alice, BookInput{Title: "Hobbit"})
	require.NoError(t, err)
	vote, err := env.votes.Cast(ctx, alice, book.ID, VoteInput{Value: 5})
	require.NoError(t, err)

	err = env.votes.Delete(ctx, bob, vote.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))

	require.NoError(t, env.votes.Delete(ctx, root, vote.ID))
	_, err = env.votes.Get(ctx, vote.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestVoteService_UserDeletionRemovesVotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	book, err := env.books.Create(ctx, alice, BookInput{Title: "Hobbit"})
	require.NoError(t, err)
	vote, err := env.votes.Cast(ctx, bob, book.ID, VoteInput{Value: 3})
	require.NoError(t, err)

	require.NoError(t, env.store.DeleteUser(ctx, bob.UserID))

	_, err = env.profiles.Get(ctx, bob.ProfileID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	_, err = env.votes.Get(ctx, vote.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
