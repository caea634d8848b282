package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/search"
	"github.com/mybooks/mybooks-server/internal/store"
)

// BookIndexer keeps a search index in step with book writes.
type BookIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	RemoveBook(ctx context.Context, bookID string) error
}

// SearchService bridges the Bleve index and the store.
type SearchService struct {
	index  *search.Index
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(index *search.Index, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, store: store, logger: logger}
}

// Search runs a full-text query.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// IndexBook adds or refreshes one book document.
func (s *SearchService) IndexBook(_ context.Context, book *domain.Book) error {
	if err := s.index.IndexDocument(search.FromBook(book)); err != nil {
		return fmt.Errorf("index book %s: %w", book.ID, err)
	}
	s.logger.Debug("indexed book", "book_id", book.ID, "title", book.Title)
	return nil
}

// RemoveBook drops a book document.
func (s *SearchService) RemoveBook(_ context.Context, bookID string) error {
	if err := s.index.DeleteDocument(bookID); err != nil {
		return fmt.Errorf("remove book %s: %w", bookID, err)
	}
	return nil
}

// Reindex rebuilds the index from every book in the store.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	if err := s.index.Rebuild(); err != nil {
		return 0, err
	}

	docs := make([]*search.BookDocument, 0, len(books))
	for _, b := range books {
		docs = append(docs, search.FromBook(b))
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index books: %w", err)
	}

	s.logger.Info("search index rebuilt", "books", len(docs))
	return len(docs), nil
}

// Stale reports whether the index document count differs from the number
// of books in the store.
func (s *SearchService) Stale(ctx context.Context) (bool, error) {
	indexed, err := s.index.DocumentCount()
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	books, err := s.store.CountBooks(ctx)
	if err != nil {
		return false, fmt.Errorf("count books: %w", err)
	}
	if indexed == uint64(books) { //nolint:gosec // counts are non-negative
		return false, nil
	}
	s.logger.Info("search index out of date", "indexed", indexed, "books", books)
	return true, nil
}

// ReindexIfStale rebuilds the index when it has drifted from the store,
// e.g. after a mapping change wiped it.
func (s *SearchService) ReindexIfStale(ctx context.Context) error {
	stale, err := s.Stale(ctx)
	if err != nil || !stale {
		return err
	}
	_, err = s.Reindex(ctx)
	return err
}

// noopIndexer is used when no search index is configured.
type noopIndexer struct{}

func (noopIndexer) IndexBook(context.Context, *domain.Book) error { return nil }
func (noopIndexer) RemoveBook(context.Context, string) error      { return nil }
