// Package store defines the persistence contract for the catalog.
package store

import (
	"context"

	"github.com/mybooks/mybooks-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)

	// CreateUserWithProfile inserts a user and its profile atomically.
	CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error

	// Profiles
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	// RenameProfile updates the profile name and its user's username together.
	RenameProfile(ctx context.Context, profileID, name string) error
	ListProfiles(ctx context.Context, filter NameFilter, page PageParams) (*Page[*domain.Profile], error)

	// Social graph and ownership
	AddFriend(ctx context.Context, profileID, friendID string) error
	RemoveFriend(ctx context.Context, profileID, friendID string) error
	ListFriends(ctx context.Context, profileID string) ([]*domain.Profile, error)
	AreFriends(ctx context.Context, profileID, friendID string) (bool, error)
	AddOwnedBook(ctx context.Context, profileID, bookID string) error
	RemoveOwnedBook(ctx context.Context, profileID, bookID string) error
	ListOwnedBooks(ctx context.Context, profileID string) ([]*domain.Book, error)
	OwnsBook(ctx context.Context, profileID, bookID string) (bool, error)

	// Catalog entities (authors, categories, publishers)
	CreateCatalogEntity(ctx context.Context, e *domain.CatalogEntity) error
	GetCatalogEntity(ctx context.Context, kind domain.Kind, id string) (*domain.CatalogEntity, error)
	GetCatalogEntityByName(ctx context.Context, kind domain.Kind, name string) (*domain.CatalogEntity, error)
	// FindOrCreateCatalogEntity returns the entity with exactly this name,
	// creating it from template when absent. created reports which happened.
	FindOrCreateCatalogEntity(ctx context.Context, template *domain.CatalogEntity) (e *domain.CatalogEntity, created bool, err error)
	UpdateCatalogEntity(ctx context.Context, e *domain.CatalogEntity) error
	DeleteCatalogEntity(ctx context.Context, kind domain.Kind, id string) error
	ListCatalogEntities(ctx context.Context, kind domain.Kind, filter NameFilter, page PageParams) (*Page[*domain.CatalogEntity], error)
	ListBooksForCatalogEntity(ctx context.Context, kind domain.Kind, id string) ([]*domain.Book, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, filter BookFilter, page PageParams) (*Page[*domain.Book], error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
	// SetBookCatalog replaces the book's author or category set.
	SetBookCatalog(ctx context.Context, bookID string, kind domain.Kind, entityIDs []string) error
	SetBookPublisher(ctx context.Context, bookID string, publisherID domain.OptionalID) error

	// Votes
	GetVote(ctx context.Context, id string) (*domain.Vote, error)
	GetVoteFor(ctx context.Context, profileID, bookID string) (*domain.Vote, error)
	// UpsertVote creates the (profile, book) vote or updates its value.
	UpsertVote(ctx context.Context, vote *domain.Vote) (*domain.Vote, error)
	DeleteVote(ctx context.Context, id string) error
	ListVotes(ctx context.Context, filter VoteFilter, page PageParams) (*Page[*domain.Vote], error)
}
