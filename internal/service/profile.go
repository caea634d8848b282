package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mybooks/mybooks-server/internal/domain"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/id"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/mybooks/mybooks-server/internal/store"
	"github.com/mybooks/mybooks-server/internal/validation"
)

// ProfileInput is the profile edit form.
type ProfileInput struct {
	Name string `json:"name" validate:"notblank,max=50"`
}

// ProfileDetail is a profile with its relations, as seen by the actor.
type ProfileDetail struct {
	Profile    *domain.Profile   `json:"profile"`
	OwnedBooks []*domain.Book    `json:"owned_books"`
	Friends    []*domain.Profile `json:"friends"`
	Votes      []*domain.Vote    `json:"votes"`
	// IsFriend reports whether the actor's profile is friends with this one.
	IsFriend bool `json:"is_friend"`
	CanEdit  bool `json:"can_edit"`
}

// ProfileService manages profiles, friendships and owned books.
type ProfileService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileService creates a profile service.
func NewProfileService(store store.Store, validator *validation.Validator, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, validator: validator, logger: logger}
}

// Get returns one profile.
func (s *ProfileService) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	if !id.IsProfileID(profileID) {
		return nil, domainerrors.NotFound("profile not found")
	}
	p, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, translate(err, "profile")
	}
	return p, nil
}

// List returns a page of profiles ordered by name.
func (s *ProfileService) List(ctx context.Context, filter store.NameFilter, page store.PageParams) (*store.Page[*domain.Profile], error) {
	res, err := s.store.ListProfiles(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return res, nil
}

// Detail returns a profile with its owned books, friends and votes.
func (s *ProfileService) Detail(ctx context.Context, actor *domain.Actor, profileID string) (*ProfileDetail, error) {
	p, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	detail := &ProfileDetail{Profile: p, CanEdit: domain.CanManageProfile(actor, profileID)}

	if detail.OwnedBooks, err = s.store.ListOwnedBooks(ctx, profileID); err != nil {
		return nil, fmt.Errorf("list owned books: %w", err)
	}
	if detail.Friends, err = s.store.ListFriends(ctx, profileID); err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	votes, err := s.store.ListVotes(ctx, store.VoteFilter{ProfileID: profileID}, store.PageParams{Page: 1, PerPage: store.MaxPerPage})
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	detail.Votes = votes.Items

	if actor != nil && actor.ProfileID != profileID {
		if detail.IsFriend, err = s.store.AreFriends(ctx, actor.ProfileID, profileID); err != nil {
			return nil, fmt.Errorf("check friendship: %w", err)
		}
	}
	return detail, nil
}

// Update renames a profile. The user's username follows the profile name.
func (s *ProfileService) Update(ctx context.Context, actor *domain.Actor, profileID string, in ProfileInput) (*domain.Profile, error) {
	if err := s.authorize(actor, profileID); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	in.Name = NormalizeName(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if in.Name == p.Name {
		return p, nil
	}

	if err := s.store.RenameProfile(ctx, profileID, in.Name); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"name": "Profile with this name already exists",
			})
		}
		return nil, translate(err, "profile")
	}

	s.logger.Info("profile renamed", "profile_id", profileID, "name", in.Name)
	return s.Get(ctx, profileID)
}

// SetFriend adds ("True") or removes ("False") friendID from the profile's
// friends. Any other flag is ignored. It reports whether the flag was acted on.
func (s *ProfileService) SetFriend(ctx context.Context, actor *domain.Actor, profileID, friendID, flag string) (bool, error) {
	if err := s.authorize(actor, profileID); err != nil {
		return false, err
	}
	toggle := domain.ParseToggle(flag)
	if toggle == domain.ToggleIgnore {
		return false, nil
	}
	if profileID == friendID {
		return false, domainerrors.Validation("a profile cannot befriend itself")
	}
	if _, err := s.Get(ctx, friendID); err != nil {
		return false, err
	}

	var err error
	if toggle == domain.ToggleAdd {
		err = s.store.AddFriend(ctx, profileID, friendID)
	} else {
		err = s.store.RemoveFriend(ctx, profileID, friendID)
	}
	if err != nil {
		return false, translate(err, "profile")
	}

	s.logger.Info("friendship changed", "profile_id", profileID, "friend_id", friendID, "flag", flag)
	return true, nil
}

// SetOwned adds ("True") or removes ("False") bookID from the profile's
// owned books. Any other flag is ignored.
func (s *ProfileService) SetOwned(ctx context.Context, actor *domain.Actor, profileID, bookID, flag string) (bool, error) {
	if err := s.authorize(actor, profileID); err != nil {
		return false, err
	}
	toggle := domain.ParseToggle(flag)
	if toggle == domain.ToggleIgnore {
		return false, nil
	}
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return false, translate(err, "book")
	}

	var err error
	if toggle == domain.ToggleAdd {
		err = s.store.AddOwnedBook(ctx, profileID, bookID)
	} else {
		err = s.store.RemoveOwnedBook(ctx, profileID, bookID)
	}
	if err != nil {
		return false, translate(err, "profile")
	}

	s.logger.Info("owned books changed", "profile_id", profileID, "book_id", bookID, "flag", flag)
	return true, nil
}

func (s *ProfileService) authorize(actor *domain.Actor, profileID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !domain.CanManageProfile(actor, profileID) {
		metrics.RecordPermissionDenied("profile")
		return domainerrors.Forbidden("You have no power here!")
	}
	return nil
}
