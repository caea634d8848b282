package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mybooks/mybooks-server/internal/domain"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/id"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/mybooks/mybooks-server/internal/store"
	"github.com/mybooks/mybooks-server/internal/validation"
)

// VoteInput is the vote form.
type VoteInput struct {
	Value int `json:"value" validate:"min=1,max=10"`
}

// VoteService records book ratings.
type VoteService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewVoteService creates a vote service.
func NewVoteService(store store.Store, validator *validation.Validator, logger *slog.Logger) *VoteService {
	return &VoteService{store: store, validator: validator, logger: logger}
}

// Cast records the actor's vote on a book, replacing any earlier value.
// The value is validated before anything is written, so a rejected first
// vote leaves no row behind.
func (s *VoteService) Cast(ctx context.Context, actor *domain.Actor, bookID string, in VoteInput) (*domain.Vote, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, translate(err, "book")
	}

	voteID, err := id.Generate(id.PrefixVote)
	if err != nil {
		return nil, err
	}
	ts := now()
	vote, err := s.store.UpsertVote(ctx, &domain.Vote{
		ID:        voteID,
		ProfileID: actor.ProfileID,
		BookID:    bookID,
		Value:     in.Value,
		Date:      domain.DateOf(ts),
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		return nil, translate(err, "vote")
	}

	metrics.VotesCast.Inc()
	s.logger.Info("vote cast", "book_id", bookID, "profile_id", actor.ProfileID, "value", vote.Value)
	return vote, nil
}

// Get returns one vote.
func (s *VoteService) Get(ctx context.Context, voteID string) (*domain.Vote, error) {
	vote, err := s.store.GetVote(ctx, voteID)
	if err != nil {
		return nil, translate(err, "vote")
	}
	return vote, nil
}

// List returns a page of votes, optionally filtered by profile and book.
func (s *VoteService) List(ctx context.Context, filter store.VoteFilter, page store.PageParams) (*store.Page[*domain.Vote], error) {
	res, err := s.store.ListVotes(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return res, nil
}

// Delete removes a vote. Only its caster or an administrator may do so.
func (s *VoteService) Delete(ctx context.Context, actor *domain.Actor, voteID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	vote, err := s.Get(ctx, voteID)
	if err != nil {
		return err
	}
	if !domain.CanManageProfile(actor, vote.ProfileID) {
		metrics.RecordPermissionDenied("vote")
		return domainerrors.Forbidden("votes can be deleted only by the person who cast them")
	}
	if err := s.store.DeleteVote(ctx, voteID); err != nil {
		return translate(err, "vote")
	}
	s.logger.Info("vote deleted", "vote_id", voteID, "profile_id", actor.ProfileID)
	return nil
}
