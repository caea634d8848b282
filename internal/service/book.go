package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/id"
	"github.com/mybooks/mybooks-server/internal/store"
	"github.com/mybooks/mybooks-server/internal/validation"
)

// BookInput is the book create/update form. Authors and Categories are
// comma-separated names; Publisher is one name. Owned is only read on
// create: "True" adds the new book to the creator's owned set.
type BookInput struct {
	Title       string   `json:"title" validate:"notblank,max=200"`
	Year        *int     `json:"year,omitempty" validate:"omitempty,min=0,max=32767"`
	Rank        *float64 `json:"rank,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty" validate:"omitempty,url,max=500"`
	Description string   `json:"description,omitempty"`
	ISBN        string   `json:"isbn,omitempty" validate:"omitempty,max=13"`
	Authors     string   `json:"authors,omitempty"`
	Categories  string   `json:"categories,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Owned       string   `json:"owned,omitempty"`
}

// Names returns the relation fields, all present.
func (in BookInput) Names() BookNames {
	return BookNames{Authors: &in.Authors, Categories: &in.Categories, Publisher: &in.Publisher}
}

// BookPatch is a partial book update. Nil fields keep their current value;
// a present relation field replaces that relation.
type BookPatch struct {
	Title       *string
	Year        *int
	Rank        *float64
	Thumbnail   *string
	Description *string
	ISBN        *string
	Authors     *string
	Categories  *string
	Publisher   *string
}

// BookInputFrom prefills a form from an existing book.
func BookInputFrom(b *domain.Book) BookInput {
	return BookInput{
		Title:       b.Title,
		Year:        b.Year,
		Rank:        b.Rank,
		Thumbnail:   b.Thumbnail,
		Description: b.Description,
		ISBN:        b.ISBN,
		Authors:     b.AuthorNames(),
		Categories:  b.CategoryNames(),
		Publisher:   b.PublisherName(),
	}
}

// BookDetail is a book plus what the acting profile has to do with it.
type BookDetail struct {
	Book   *domain.Book `json:"book"`
	MyVote *domain.Vote `json:"my_vote,omitempty"`
	Owned  bool         `json:"owned"`
}

// BookService orchestrates book operations.
type BookService struct {
	store      store.Store
	reconciler *Reconciler
	validator  *validation.Validator
	indexer    BookIndexer
	logger     *slog.Logger
}

// NewBookService creates a book service. indexer may be nil.
func NewBookService(
	store store.Store,
	reconciler *Reconciler,
	validator *validation.Validator,
	indexer BookIndexer,
	logger *slog.Logger,
) *BookService {
	if indexer == nil {
		indexer = noopIndexer{}
	}
	return &BookService{
		store:      store,
		reconciler: reconciler,
		validator:  validator,
		indexer:    indexer,
		logger:     logger,
	}
}

func (s *BookService) validate(in *BookInput, names BookNames) error {
	in.Title = strings.TrimSpace(in.Title)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Thumbnail = strings.TrimSpace(in.Thumbnail)
	if err := s.validator.Validate(in); err != nil {
		return err
	}
	return ValidateNames(names)
}

// Create adds a book, reconciles its names and, when in.Owned is "True",
// marks it owned by the actor.
func (s *BookService) Create(ctx context.Context, actor *domain.Actor, in BookInput) (*domain.Book, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validate(&in, in.Names()); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, err
	}
	book := &domain.Book{
		ID:        bookID,
		AddedBy:   domain.SomeID(actor.ProfileID),
		AddedDate: today(),
	}
	applyScalars(book, in)
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, translate(err, "book")
	}
	if err := s.reconciler.Apply(ctx, actor, book.ID, in.Names()); err != nil {
		s.discard(ctx, book.ID)
		return nil, err
	}
	if domain.ParseToggle(in.Owned) == domain.ToggleAdd {
		if err := s.store.AddOwnedBook(ctx, actor.ProfileID, book.ID); err != nil {
			s.discard(ctx, book.ID)
			return nil, translate(err, "book")
		}
	}

	created, err := s.reload(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("book created", "book_id", created.ID, "title", created.Title, "profile_id", actor.ProfileID)
	return created, nil
}

// discard removes a book whose relations could not be written, so a failed
// create leaves nothing behind.
func (s *BookService) discard(ctx context.Context, bookID string) {
	if err := s.store.DeleteBook(context.WithoutCancel(ctx), bookID); err != nil {
		s.logger.Error("failed to remove partially created book", "book_id", bookID, "error", err)
	}
}

// Update replaces a book's fields and relations, subject to the
// modification policy. Empty relation fields clear the relation.
func (s *BookService) Update(ctx context.Context, actor *domain.Actor, bookID string, in BookInput) (*domain.Book, error) {
	book, err := s.modifiable(ctx, actor, bookID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, actor, book, in, in.Names())
}

// Patch changes only the fields present in patch, subject to the
// modification policy. Absent relation fields are not reconciled.
func (s *BookService) Patch(ctx context.Context, actor *domain.Actor, bookID string, patch BookPatch) (*domain.Book, error) {
	book, err := s.modifiable(ctx, actor, bookID)
	if err != nil {
		return nil, err
	}

	in := BookInputFrom(book)
	setIf(&in.Title, patch.Title)
	setIf(&in.Thumbnail, patch.Thumbnail)
	setIf(&in.Description, patch.Description)
	setIf(&in.ISBN, patch.ISBN)
	if patch.Year != nil {
		in.Year = patch.Year
	}
	if patch.Rank != nil {
		in.Rank = patch.Rank
	}

	names := BookNames{Authors: patch.Authors, Categories: patch.Categories, Publisher: patch.Publisher}
	return s.save(ctx, actor, book, in, names)
}

func (s *BookService) modifiable(ctx context.Context, actor *domain.Actor, bookID string) (*domain.Book, error) {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if err := checkModify(actor, book.AddedBy, "book", DeniedMessage("book", "updated")); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) save(ctx context.Context, actor *domain.Actor, book *domain.Book, in BookInput, names BookNames) (*domain.Book, error) {
	if err := s.validate(&in, names); err != nil {
		return nil, err
	}

	applyScalars(book, in)
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, translate(err, "book")
	}
	if err := s.reconciler.Apply(ctx, actor, book.ID, names); err != nil {
		return nil, err
	}

	updated, err := s.reload(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("book updated", "book_id", updated.ID, "profile_id", actor.ProfileID)
	return updated, nil
}

// Delete removes a book, subject to the modification policy. Its authors,
// categories and publisher are left in place.
func (s *BookService) Delete(ctx context.Context, actor *domain.Actor, bookID string) error {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return err
	}
	if err := checkModify(actor, book.AddedBy, "book", DeniedMessage("book", "deleted")); err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return translate(err, "book")
	}
	if err := s.indexer.RemoveBook(ctx, bookID); err != nil {
		s.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
	}

	s.logger.Info("book deleted", "book_id", bookID, "profile_id", actor.ProfileID)
	return nil
}

// Get returns one book.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, translate(err, "book")
	}
	return book, nil
}

// Detail returns a book with the actor's vote and ownership. Anonymous
// callers get neither.
func (s *BookService) Detail(ctx context.Context, actor *domain.Actor, bookID string) (*BookDetail, error) {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	detail := &BookDetail{Book: book}
	if actor == nil {
		return detail, nil
	}

	vote, err := s.store.GetVoteFor(ctx, actor.ProfileID, bookID)
	switch {
	case err == nil:
		detail.MyVote = vote
	case !isNotFound(err):
		return nil, fmt.Errorf("get vote: %w", err)
	}

	if detail.Owned, err = s.store.OwnsBook(ctx, actor.ProfileID, bookID); err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}
	return detail, nil
}

// List returns a page of books ordered by title.
func (s *BookService) List(ctx context.Context, filter store.BookFilter, page store.PageParams) (*store.Page[*domain.Book], error) {
	res, err := s.store.ListBooks(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return res, nil
}

// reload fetches the hydrated book and refreshes its search document.
func (s *BookService) reload(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if err := s.indexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", bookID, "error", err)
	}
	return book, nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyScalars(b *domain.Book, in BookInput) {
	b.Title = in.Title
	b.Year = in.Year
	b.Rank = in.Rank
	b.Thumbnail = in.Thumbnail
	b.Description = in.Description
	b.ISBN = in.ISBN
}
