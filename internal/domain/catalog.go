package domain

import (
	"strings"
	"time"
)

// Kind identifies one of the three catalog entity types attached to books.
type Kind string

const (
	KindAuthor    Kind = "author"
	KindCategory  Kind = "category"
	KindPublisher Kind = "publisher"
)

// MaxNameLength bounds catalog entity and profile names.
const MaxNameLength = 50

// Kinds lists every catalog kind in display order.
var Kinds = []Kind{KindAuthor, KindCategory, KindPublisher}

// ParseKind converts a singular or plural name ("author", "authors") to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "author", "authors":
		return KindAuthor, true
	case "category", "categories":
		return KindCategory, true
	case "publisher", "publishers":
		return KindPublisher, true
	}
	return "", false
}

// Plural returns the collection name, e.g. "categories".
func (k Kind) Plural() string {
	if k == KindCategory {
		return "categories"
	}
	return string(k) + "s"
}

// Label returns a capitalised display name, e.g. "Publisher".
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// PluralLabel returns a capitalised collection name, e.g. "Categories".
func (k Kind) PluralLabel() string {
	p := k.Plural()
	if p == "s" {
		return ""
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

// CatalogEntity is an author, category or publisher: a reusable, uniquely
// named tag shared by books. AddedBy is absent for seeded rows or when the
// creating profile has been deleted.
type CatalogEntity struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	Name      string     `json:"name"`
	AddedBy   OptionalID `json:"added_by"`
	AddedDate time.Time  `json:"added_date"`
}

// Names returns the entity names in order.
func Names(entities []*CatalogEntity) []string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	return names
}

// IDs returns the entity IDs in order.
func IDs(entities []*CatalogEntity) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	return ids
}

// DateOf returns the calendar date of t (in t's location) as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
