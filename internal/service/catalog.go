package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mybooks/mybooks-server/internal/domain"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/id"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/mybooks/mybooks-server/internal/store"
	"github.com/mybooks/mybooks-server/internal/validation"
)

// CatalogInput is the create/update form for authors, categories and publishers.
type CatalogInput struct {
	Name string `json:"name" validate:"notblank,max=50"`
}

// CatalogService manages authors, categories and publishers.
type CatalogService struct {
	store     store.Store
	validator *validation.Validator
	indexer   BookIndexer
	logger    *slog.Logger
}

// NewCatalogService creates a catalog service. indexer may be nil.
func NewCatalogService(store store.Store, validator *validation.Validator, indexer BookIndexer, logger *slog.Logger) *CatalogService {
	if indexer == nil {
		indexer = noopIndexer{}
	}
	return &CatalogService{store: store, validator: validator, indexer: indexer, logger: logger}
}

func (s *CatalogService) validate(kind domain.Kind, in *CatalogInput) error {
	in.Name = NormalizeName(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return err
	}
	// Book forms split author and category lists on commas.
	if kind != domain.KindPublisher && strings.Contains(in.Name, ",") {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"name": kind.Label() + " names cannot contain commas",
		})
	}
	return nil
}

// duplicateName is the form error for a name collision.
func duplicateName(kind domain.Kind) error {
	return domainerrors.ValidationWithDetails("validation failed", map[string]string{
		"name": kind.Label() + " with this name already exists",
	})
}

// Create adds an entity owned by the actor.
func (s *CatalogService) Create(ctx context.Context, actor *domain.Actor, kind domain.Kind, in CatalogInput) (*domain.CatalogEntity, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validate(kind, &in); err != nil {
		return nil, err
	}

	entityID, err := id.Generate(string(kind))
	if err != nil {
		return nil, err
	}
	e := &domain.CatalogEntity{
		ID:        entityID,
		Kind:      kind,
		Name:      in.Name,
		AddedBy:   domain.SomeID(actor.ProfileID),
		AddedDate: today(),
	}

	if err := s.store.CreateCatalogEntity(ctx, e); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, duplicateName(kind)
		}
		return nil, translate(err, string(kind))
	}

	metrics.RecordCatalogCreated(string(kind), "explicit")
	s.logger.Info("catalog entity created", "kind", kind, "id", e.ID, "name", e.Name, "profile_id", actor.ProfileID)
	return e, nil
}

// Get returns one entity.
func (s *CatalogService) Get(ctx context.Context, kind domain.Kind, entityID string) (*domain.CatalogEntity, error) {
	e, err := s.store.GetCatalogEntity(ctx, kind, entityID)
	if err != nil {
		return nil, translate(err, string(kind))
	}
	return e, nil
}

// List returns a page of entities ordered by name.
func (s *CatalogService) List(ctx context.Context, kind domain.Kind, filter store.NameFilter, page store.PageParams) (*store.Page[*domain.CatalogEntity], error) {
	res, err := s.store.ListCatalogEntities(ctx, kind, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Plural(), err)
	}
	return res, nil
}

// BooksFor returns the books referencing an entity.
func (s *CatalogService) BooksFor(ctx context.Context, kind domain.Kind, entityID string) ([]*domain.Book, error) {
	if _, err := s.Get(ctx, kind, entityID); err != nil {
		return nil, err
	}
	books, err := s.store.ListBooksForCatalogEntity(ctx, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("list books for %s: %w", kind, err)
	}
	return books, nil
}

// Update renames an entity, subject to the modification policy.
func (s *CatalogService) Update(ctx context.Context, actor *domain.Actor, kind domain.Kind, entityID string, in CatalogInput) (*domain.CatalogEntity, error) {
	e, err := s.Get(ctx, kind, entityID)
	if err != nil {
		return nil, err
	}
	if err := checkModify(actor, e.AddedBy, string(kind), DeniedMessage(kind, "updated")); err != nil {
		return nil, err
	}
	if err := s.validate(kind, &in); err != nil {
		return nil, err
	}

	if e.Name == in.Name {
		return e, nil
	}
	e.Name = in.Name
	if err := s.store.UpdateCatalogEntity(ctx, e); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, duplicateName(kind)
		}
		return nil, translate(err, string(kind))
	}

	s.reindexBooks(ctx, kind, entityID, nil)
	s.logger.Info("catalog entity renamed", "kind", kind, "id", e.ID, "name", e.Name)
	return e, nil
}

// Delete removes an entity, subject to the modification policy. Books that
// referenced it survive without it.
func (s *CatalogService) Delete(ctx context.Context, actor *domain.Actor, kind domain.Kind, entityID string) error {
	e, err := s.Get(ctx, kind, entityID)
	if err != nil {
		return err
	}
	if err := checkModify(actor, e.AddedBy, string(kind), DeniedMessage(kind, "deleted")); err != nil {
		return err
	}

	affected, err := s.store.ListBooksForCatalogEntity(ctx, kind, entityID)
	if err != nil {
		return fmt.Errorf("list books for %s: %w", kind, err)
	}

	if err := s.store.DeleteCatalogEntity(ctx, kind, entityID); err != nil {
		return translate(err, string(kind))
	}

	s.reindexBooks(ctx, kind, entityID, affected)
	s.logger.Info("catalog entity deleted", "kind", kind, "id", entityID, "profile_id", actor.ProfileID)
	return nil
}

// reindexBooks refreshes the search documents of books whose denormalized
// names changed. Index failures are logged, not returned.
func (s *CatalogService) reindexBooks(ctx context.Context, kind domain.Kind, entityID string, books []*domain.Book) {
	if books == nil {
		var err error
		books, err = s.store.ListBooksForCatalogEntity(ctx, kind, entityID)
		if err != nil {
			s.logger.Warn("failed to list books for reindex", "kind", kind, "id", entityID, "error", err)
			return
		}
	}
	for _, b := range books {
		fresh, err := s.store.GetBook(ctx, b.ID)
		if err != nil {
			s.logger.Warn("failed to reload book for reindex", "book_id", b.ID, "error", err)
			continue
		}
		if err := s.indexer.IndexBook(ctx, fresh); err != nil {
			s.logger.Warn("failed to reindex book", "book_id", b.ID, "error", err)
		}
	}
}

// DeniedMessage is shown to users refused by the modification policy.
func DeniedMessage(kind domain.Kind, verb string) string {
	return fmt.Sprintf("%s can be %s only by the person who added them to the database!", kind.PluralLabel(), verb)
}
