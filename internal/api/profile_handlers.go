package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProfiles",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles",
		Summary:     "List profiles",
		Description: "Returns a page of profiles ordered by name",
		Tags:        []string{"Profiles"},
	}, s.handleListProfiles)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{id}",
		Summary:     "Get profile",
		Description: "Returns a profile with its owned books, friends and votes",
		Tags:        []string{"Profiles"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profiles/{id}",
		Summary:     "Rename profile",
		Description: "Renames the profile and its user. Allowed for the profile's user and administrators.",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFriend",
		Method:      http.MethodPut,
		Path:        "/api/v1/profiles/{id}/friends/{friendID}",
		Summary:     "Add friend",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.toggleFriend("True"))

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFriend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profiles/{id}/friends/{friendID}",
		Summary:     "Remove friend",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.toggleFriend("False"))

	huma.Register(s.api, huma.Operation{
		OperationID: "addOwnedBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/profiles/{id}/books/{bookID}",
		Summary:     "Mark book owned",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.toggleOwned("True"))

	huma.Register(s.api, huma.Operation{
		OperationID: "removeOwnedBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profiles/{id}/books/{bookID}",
		Summary:     "Unmark book owned",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.toggleOwned("False"))
}

// === DTOs ===

// ListProfilesInput contains parameters for listing profiles.
type ListProfilesInput struct {
	PageQuery
	Name string `query:"name" doc:"Name contains"`
}

// ProfilePageOutput wraps a page of profiles for Huma.
type ProfilePageOutput struct {
	Body PageResponse[ProfileResponse]
}

// ProfileIDInput identifies a profile.
type ProfileIDInput struct {
	ID string `path:"id" doc:"Profile ID"`
}

// ProfileDetailOutput wraps a profile detail for Huma.
type ProfileDetailOutput struct {
	Body ProfileDetailResponse
}

// UpdateProfileRequest is the request body for renaming a profile.
type UpdateProfileRequest struct {
	Name string `json:"name" doc:"New unique name"`
}

// UpdateProfileInput wraps the rename request for Huma.
type UpdateProfileInput struct {
	ID   string `path:"id" doc:"Profile ID"`
	Body UpdateProfileRequest
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// FriendInput identifies a friendship.
type FriendInput struct {
	ID       string `path:"id" doc:"Profile ID"`
	FriendID string `path:"friendID" doc:"Friend profile ID"`
}

// OwnedBookInput identifies an owned book.
type OwnedBookInput struct {
	ID     string `path:"id" doc:"Profile ID"`
	BookID string `path:"bookID" doc:"Book ID"`
}

// ProfileListOutput wraps a profile's friends for Huma.
type ProfileListOutput struct {
	Body []ProfileResponse
}

// === Handlers ===

func (s *Server) handleListProfiles(ctx context.Context, input *ListProfilesInput) (*ProfilePageOutput, error) {
	page, err := s.services.Profiles.List(ctx, store.NameFilter{Name: input.Name}, s.pageParams(input.PageQuery))
	if err != nil {
		return nil, err
	}
	return &ProfilePageOutput{Body: pageResponse(page, toProfile)}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, input *ProfileIDInput) (*ProfileDetailOutput, error) {
	detail, err := s.services.Profiles.Detail(ctx, domain.ActorFrom(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileDetailOutput{Body: toProfileDetail(detail)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	p, err := s.services.Profiles.Update(ctx, domain.ActorFrom(ctx), input.ID, service.ProfileInput{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: toProfile(p)}, nil
}

// toggleFriend returns a handler applying flag to the friendship and
// answering with the profile's friends afterwards.
func (s *Server) toggleFriend(flag string) func(context.Context, *FriendInput) (*ProfileListOutput, error) {
	return func(ctx context.Context, input *FriendInput) (*ProfileListOutput, error) {
		if _, err := s.services.Profiles.SetFriend(ctx, domain.ActorFrom(ctx), input.ID, input.FriendID, flag); err != nil {
			return nil, err
		}
		detail, err := s.services.Profiles.Detail(ctx, domain.ActorFrom(ctx), input.ID)
		if err != nil {
			return nil, err
		}
		return &ProfileListOutput{Body: toProfiles(detail.Friends)}, nil
	}
}

// toggleOwned returns a handler applying flag to the ownership and
// answering with the profile's owned books afterwards.
func (s *Server) toggleOwned(flag string) func(context.Context, *OwnedBookInput) (*BookListOutput, error) {
	return func(ctx context.Context, input *OwnedBookInput) (*BookListOutput, error) {
		if _, err := s.services.Profiles.SetOwned(ctx, domain.ActorFrom(ctx), input.ID, input.BookID, flag); err != nil {
			return nil, err
		}
		detail, err := s.services.Profiles.Detail(ctx, domain.ActorFrom(ctx), input.ID)
		if err != nil {
			return nil, err
		}
		return &BookListOutput{Body: toBooks(detail.OwnedBooks)}, nil
	}
}
