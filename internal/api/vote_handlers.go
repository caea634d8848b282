package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/store"
)

func (s *Server) registerVoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listVotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/votes",
		Summary:     "List votes",
		Description: "Returns a page of votes, newest first, optionally for one profile or book",
		Tags:        []string{"Votes"},
	}, s.handleListVotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVote",
		Method:      http.MethodGet,
		Path:        "/api/v1/votes/{id}",
		Summary:     "Get vote",
		Tags:        []string{"Votes"},
	}, s.handleGetVote)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteVote",
		Method:        http.MethodDelete,
		Path:          "/api/v1/votes/{id}",
		Summary:       "Delete vote",
		Description:   "Allowed for the voter and administrators",
		Tags:          []string{"Votes"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteVote)
}

// ListVotesInput contains parameters for listing votes.
type ListVotesInput struct {
	PageQuery
	Profile string `query:"profile" doc:"Only votes by this profile ID"`
	Book    string `query:"book" doc:"Only votes on this book ID"`
}

// VotePageOutput wraps a page of votes for Huma.
type VotePageOutput struct {
	Body PageResponse[VoteResponse]
}

// VoteIDInput identifies a vote.
type VoteIDInput struct {
	ID string `path:"id" doc:"Vote ID"`
}

func (s *Server) handleListVotes(ctx context.Context, input *ListVotesInput) (*VotePageOutput, error) {
	page, err := s.services.Votes.List(ctx, store.VoteFilter{ProfileID: input.Profile, BookID: input.Book}, s.pageParams(input.PageQuery))
	if err != nil {
		return nil, err
	}
	return &VotePageOutput{Body: pageResponse(page, toVote)}, nil
}

func (s *Server) handleGetVote(ctx context.Context, input *VoteIDInput) (*VoteOutput, error) {
	v, err := s.services.Votes.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &VoteOutput{Body: toVote(v)}, nil
}

func (s *Server) handleDeleteVote(ctx context.Context, input *VoteIDInput) (*struct{}, error) {
	return nil, s.services.Votes.Delete(ctx, domain.ActorFrom(ctx), input.ID)
}
