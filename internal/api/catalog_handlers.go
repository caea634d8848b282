package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
	"github.com/mybooks/mybooks-server/internal/store"
)

// registerCatalogRoutes registers the same six operations for authors,
// categories and publishers.
func (s *Server) registerCatalogRoutes() {
	for _, kind := range domain.Kinds {
		s.registerCatalogKind(kind)
	}
}

func (s *Server) registerCatalogKind(kind domain.Kind) {
	base := "/api/v1/" + kind.Plural()
	tags := []string{kind.PluralLabel()}
	singular := kind.Label()
	plural := kind.PluralLabel()

	huma.Register(s.api, huma.Operation{
		OperationID: "list" + plural,
		Method:      http.MethodGet,
		Path:        base,
		Summary:     "List " + kind.Plural(),
		Description: "Returns a page of " + kind.Plural() + " ordered by name",
		Tags:        tags,
	}, func(ctx context.Context, input *ListCatalogInput) (*CatalogPageOutput, error) {
		page, err := s.services.Catalog.List(ctx, kind, store.NameFilter{Name: input.Name}, s.pageParams(input.PageQuery))
		if err != nil {
			return nil, err
		}
		return &CatalogPageOutput{Body: pageResponse(page, toCatalogEntity)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "create" + singular,
		Method:        http.MethodPost,
		Path:          base,
		Summary:       "Create " + string(kind),
		Description:   "Creates a " + string(kind) + " attributed to the caller",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *CatalogBodyInput) (*CatalogEntityOutput, error) {
		e, err := s.services.Catalog.Create(ctx, domain.ActorFrom(ctx), kind, service.CatalogInput{Name: input.Body.Name})
		if err != nil {
			return nil, err
		}
		return &CatalogEntityOutput{Body: toCatalogEntity(e)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get" + singular,
		Method:      http.MethodGet,
		Path:        base + "/{id}",
		Summary:     "Get " + string(kind),
		Tags:        tags,
	}, func(ctx context.Context, input *CatalogIDInput) (*CatalogEntityOutput, error) {
		e, err := s.services.Catalog.Get(ctx, kind, input.ID)
		if err != nil {
			return nil, err
		}
		return &CatalogEntityOutput{Body: toCatalogEntity(e)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update" + singular,
		Method:      http.MethodPatch,
		Path:        base + "/{id}",
		Summary:     "Rename " + string(kind),
		Description: "Allowed for administrators, anyone when no creator is recorded, otherwise only the creator",
		Tags:        tags,
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *UpdateCatalogInput) (*CatalogEntityOutput, error) {
		e, err := s.services.Catalog.Update(ctx, domain.ActorFrom(ctx), kind, input.ID, service.CatalogInput{Name: input.Body.Name})
		if err != nil {
			return nil, err
		}
		return &CatalogEntityOutput{Body: toCatalogEntity(e)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete" + singular,
		Method:        http.MethodDelete,
		Path:          base + "/{id}",
		Summary:       "Delete " + string(kind),
		Description:   "Allowed for administrators, anyone when no creator is recorded, otherwise only the creator. Books keep existing.",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *CatalogIDInput) (*struct{}, error) {
		return nil, s.services.Catalog.Delete(ctx, domain.ActorFrom(ctx), kind, input.ID)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get" + singular + "Books",
		Method:      http.MethodGet,
		Path:        base + "/{id}/books",
		Summary:     "Books for " + string(kind),
		Description: "Returns the books that reference this " + string(kind),
		Tags:        tags,
	}, func(ctx context.Context, input *CatalogIDInput) (*BookListOutput, error) {
		books, err := s.services.Catalog.BooksFor(ctx, kind, input.ID)
		if err != nil {
			return nil, err
		}
		return &BookListOutput{Body: toBooks(books)}, nil
	})
}

// === DTOs ===

// ListCatalogInput contains parameters for listing catalog entities.
type ListCatalogInput struct {
	PageQuery
	Name string `query:"name" doc:"Name contains"`
}

// CatalogPageOutput wraps a page of catalog entities for Huma.
type CatalogPageOutput struct {
	Body PageResponse[CatalogEntityResponse]
}

// CatalogRequest is the request body for creating or renaming an entity.
type CatalogRequest struct {
	Name string `json:"name" doc:"Unique name, at most 50 characters"`
}

// CatalogBodyInput wraps the catalog request for Huma.
type CatalogBodyInput struct {
	Body CatalogRequest
}

// CatalogIDInput identifies an entity.
type CatalogIDInput struct {
	ID string `path:"id" doc:"Entity ID"`
}

// UpdateCatalogInput wraps the rename request for Huma.
type UpdateCatalogInput struct {
	ID   string `path:"id" doc:"Entity ID"`
	Body CatalogRequest
}

// CatalogEntityOutput wraps an entity for Huma.
type CatalogEntityOutput struct {
	Body CatalogEntityResponse
}

// BookListOutput wraps an unpaged book list for Huma.
type BookListOutput struct {
	Body []BookResponse
}
