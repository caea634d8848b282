package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/metadata/googlebooks"
	"github.com/mybooks/mybooks-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search across titles, authors, categories, publishers and descriptions",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

func (s *Server) registerGoogleBooksRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchGoogleBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/gbooks",
		Summary:     "Search Google Books",
		Description: "Queries Google Books. Provider failures yield an empty list.",
		Tags:        []string{"Google Books"},
	}, s.handleSearchGoogleBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGoogleBooksVolume",
		Method:      http.MethodGet,
		Path:        "/api/v1/gbooks/{id}",
		Summary:     "Get Google Books volume",
		Tags:        []string{"Google Books"},
	}, s.handleGetGoogleBooksVolume)
}

// SearchInput contains full-text search parameters.
type SearchInput struct {
	Query    string `query:"q" doc:"Search text"`
	Author   string `query:"author" doc:"Exact author name filter"`
	Category string `query:"category" doc:"Exact category name filter"`
	MinYear  int    `query:"min_year" doc:"Earliest publication year"`
	MaxYear  int    `query:"max_year" doc:"Latest publication year"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
	Offset   int    `query:"offset" minimum:"0" doc:"Hits to skip"`
	Facets   bool   `query:"facets" doc:"Include author and category facets"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.Result
}

// GoogleBooksSearchInput contains provider search fields.
type GoogleBooksSearchInput struct {
	Title     string `query:"title" doc:"Words in the title"`
	Authors   string `query:"authors" doc:"Words in the author names"`
	Publisher string `query:"publisher" doc:"Words in the publisher name"`
	ISBN      string `query:"isbn" doc:"ISBN"`
}

// VolumeListOutput wraps provider volumes for Huma.
type VolumeListOutput struct {
	Body []googlebooks.Volume
}

// VolumeIDInput identifies a provider volume.
type VolumeIDInput struct {
	ID string `path:"id" doc:"Google Books volume ID"`
}

// VolumeOutput wraps one provider volume for Huma.
type VolumeOutput struct {
	Body *googlebooks.Volume
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, domainerrors.Unavailable("search is not configured")
	}
	res, err := s.services.Search.Search(ctx, search.Params{
		Query:         input.Query,
		Author:        input.Author,
		Category:      input.Category,
		MinYear:       input.MinYear,
		MaxYear:       input.MaxYear,
		Limit:         input.Limit,
		Offset:        input.Offset,
		IncludeFacets: input.Facets,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: res}, nil
}

func (s *Server) handleSearchGoogleBooks(ctx context.Context, input *GoogleBooksSearchInput) (*VolumeListOutput, error) {
	volumes := s.services.Metadata.Search(ctx, googlebooks.SearchParams{
		Title:     input.Title,
		Authors:   input.Authors,
		Publisher: input.Publisher,
		ISBN:      input.ISBN,
	})
	if volumes == nil {
		volumes = []googlebooks.Volume{}
	}
	return &VolumeListOutput{Body: volumes}, nil
}

func (s *Server) handleGetGoogleBooksVolume(ctx context.Context, input *VolumeIDInput) (*VolumeOutput, error) {
	v, err := s.services.Metadata.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &VolumeOutput{Body: v}, nil
}
