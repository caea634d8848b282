package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of books ordered by title. Filters are case-insensitive substring matches.",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Creates a book. Authors and categories are comma-separated names; missing ones are created.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its authors, categories, publisher and the caller's vote",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates the given fields. A given relation field replaces the whole relation; an empty one clears it.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Deletes a book. Its authors, categories and publisher are kept.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "voteBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/vote",
		Summary:     "Vote on book",
		Description: "Records the caller's 1 to 10 rating, replacing an earlier one",
		Tags:        []string{"Books", "Votes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleVoteBook)
}

// === DTOs ===

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	PageQuery
	Title       string `query:"title" doc:"Title contains"`
	Year        string `query:"year" doc:"Year contains"`
	ISBN        string `query:"isbn" doc:"ISBN contains"`
	Description string `query:"description" doc:"Description contains"`
	Thumbnail   string `query:"thumbnail" doc:"Thumbnail URL contains"`
	Authors     string `query:"authors" doc:"Any author name contains"`
	Categories  string `query:"categories" doc:"Any category name contains"`
	Publisher   string `query:"publisher" doc:"Publisher name contains"`
}

// BookPageOutput wraps a page of books for Huma.
type BookPageOutput struct {
	Body PageResponse[BookResponse]
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title       string   `json:"title" doc:"Title"`
	Year        *int     `json:"year,omitempty" doc:"Publication year"`
	Rank        *float64 `json:"rank,omitempty" doc:"External rating"`
	Thumbnail   string   `json:"thumbnail,omitempty" doc:"Cover image URL"`
	Description string   `json:"description,omitempty" doc:"Description"`
	ISBN        string   `json:"isbn,omitempty" doc:"ISBN"`
	Authors     string   `json:"authors,omitempty" doc:"Comma-separated author names"`
	Categories  string   `json:"categories,omitempty" doc:"Comma-separated category names"`
	Publisher   string   `json:"publisher,omitempty" doc:"Publisher name"`
	Owned       string   `json:"owned,omitempty" doc:"\"True\" adds the book to the caller's owned books"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookIDInput identifies a book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookDetailOutput wraps a book detail for Huma.
type BookDetailOutput struct {
	Body BookDetailResponse
}

// UpdateBookRequest is the request body for a partial book update.
type UpdateBookRequest struct {
	Title       *string  `json:"title,omitempty" doc:"Title"`
	Year        *int     `json:"year,omitempty" doc:"Publication year"`
	Rank        *float64 `json:"rank,omitempty" doc:"External rating"`
	Thumbnail   *string  `json:"thumbnail,omitempty" doc:"Cover image URL"`
	Description *string  `json:"description,omitempty" doc:"Description"`
	ISBN        *string  `json:"isbn,omitempty" doc:"ISBN"`
	Authors     *string  `json:"authors,omitempty" doc:"Comma-separated author names; replaces the set"`
	Categories  *string  `json:"categories,omitempty" doc:"Comma-separated category names; replaces the set"`
	Publisher   *string  `json:"publisher,omitempty" doc:"Publisher name; empty clears it"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// VoteRequest is the request body for voting.
type VoteRequest struct {
	Value int `json:"value" doc:"Rating from 1 to 10"`
}

// VoteBookInput wraps the vote request for Huma.
type VoteBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body VoteRequest
}

// VoteOutput wraps a vote for Huma.
type VoteOutput struct {
	Body VoteResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookPageOutput, error) {
	filter := store.BookFilter{
		Title:       input.Title,
		Year:        input.Year,
		ISBN:        input.ISBN,
		Description: input.Description,
		Thumbnail:   input.Thumbnail,
		Author:      input.Authors,
		Category:    input.Categories,
		Publisher:   input.Publisher,
	}
	page, err := s.services.Books.List(ctx, filter, s.pageParams(input.PageQuery))
	if err != nil {
		return nil, err
	}
	return &BookPageOutput{Body: pageResponse(page, toBook)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	b := input.Body
	book, err := s.services.Books.Create(ctx, domain.ActorFrom(ctx), service.BookInput{
		Title:       b.Title,
		Year:        b.Year,
		Rank:        b.Rank,
		Thumbnail:   b.Thumbnail,
		Description: b.Description,
		ISBN:        b.ISBN,
		Authors:     b.Authors,
		Categories:  b.Categories,
		Publisher:   b.Publisher,
		Owned:       b.Owned,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBook(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookDetailOutput, error) {
	detail, err := s.services.Books.Detail(ctx, domain.ActorFrom(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &BookDetailOutput{Body: toBookDetail(detail)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	patch := input.Body
	book, err := s.services.Books.Patch(ctx, domain.ActorFrom(ctx), input.ID, service.BookPatch{
		Title:       patch.Title,
		Year:        patch.Year,
		Rank:        patch.Rank,
		Thumbnail:   patch.Thumbnail,
		Description: patch.Description,
		ISBN:        patch.ISBN,
		Authors:     patch.Authors,
		Categories:  patch.Categories,
		Publisher:   patch.Publisher,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBook(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	if err := s.services.Books.Delete(ctx, domain.ActorFrom(ctx), input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleVoteBook(ctx context.Context, input *VoteBookInput) (*VoteOutput, error) {
	vote, err := s.services.Votes.Cast(ctx, domain.ActorFrom(ctx), input.ID, service.VoteInput{Value: input.Body.Value})
	if err != nil {
		return nil, err
	}
	return &VoteOutput{Body: toVote(vote)}, nil
}
