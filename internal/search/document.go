// Package search provides full-text search over the book catalog using Bleve.
// Author, category and publisher names are denormalized into each book
// document so a single query covers the whole catalog.
package search

import (
	"github.com/mybooks/mybooks-server/internal/domain"
)

// BookDocument is what gets stored in the index for one book.
type BookDocument struct {
	ID          string
	Title       string
	Authors     []string
	Categories  []string
	Publisher   string
	Description string
	ISBN        string
	Year        int
	AddedAt     int64 // Unix millis
}

// ToMap converts the document to a map keyed by the mapping's field names.
// Bleve would otherwise use the capitalized Go field names.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":       d.ID,
		"title":    d.Title,
		"added_at": d.AddedAt,
	}

	if len(d.Authors) > 0 {
		m["authors"] = d.Authors
		m["author_facet"] = d.Authors
	}
	if len(d.Categories) > 0 {
		m["categories"] = d.Categories
		m["category_facet"] = d.Categories
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}

	return m
}

// FromBook builds the index document for a hydrated book.
func FromBook(book *domain.Book) *BookDocument {
	doc := &BookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Authors:     domain.Names(book.Authors),
		Categories:  domain.Names(book.Categories),
		Publisher:   book.PublisherName(),
		Description: book.Description,
		ISBN:        book.ISBN,
		AddedAt:     book.CreatedAt.UnixMilli(),
	}
	if book.Year != nil {
		doc.Year = *book.Year
	}
	return doc
}
