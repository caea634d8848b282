package store

// BookFilter narrows a book listing. Every non-empty field is a
// case-insensitive substring match; empty fields are ignored.
type BookFilter struct {
	Title       string
	Year        string
	ISBN        string
	Description string
	Thumbnail   string
	Author      string // matches any author name
	Category    string // matches any category name
	Publisher   string // matches the publisher name
}

// NameFilter narrows catalog entity and profile listings by name substring.
type NameFilter struct {
	Name string
}

// VoteFilter narrows vote listings to a profile and/or book.
type VoteFilter struct {
	ProfileID string
	BookID    string
}
