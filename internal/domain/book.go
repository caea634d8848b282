// Package domain contains the catalog's entities and the rules that govern who may change them.
package domain

import (
	"strings"
	"time"
)

// Book is a catalog entry. Authors, Categories and Publisher are populated
// on reads; writes go through PublisherID and the store's association setters.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Year        *int       `json:"year,omitempty"`
	Rank        *float64   `json:"rank,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Description string     `json:"description,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	PublisherID OptionalID `json:"publisher_id"`
	AddedBy     OptionalID `json:"added_by"`
	AddedDate   time.Time  `json:"added_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Authors    []*CatalogEntity `json:"authors"`
	Categories []*CatalogEntity `json:"categories"`
	Publisher  *CatalogEntity   `json:"publisher,omitempty"`

	VoteCount   int      `json:"vote_count"`
	AverageVote *float64 `json:"average_vote,omitempty"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (b *Book) InitTimestamps() {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now()
}

// AuthorNames joins the author names for display and form prefill.
func (b *Book) AuthorNames() string {
	return strings.Join(Names(b.Authors), ", ")
}

// CategoryNames joins the category names for display and form prefill.
func (b *Book) CategoryNames() string {
	return strings.Join(Names(b.Categories), ", ")
}

// PublisherName returns the publisher's name, or "".
func (b *Book) PublisherName() string {
	if b.Publisher == nil {
		return ""
	}
	return b.Publisher.Name
}
