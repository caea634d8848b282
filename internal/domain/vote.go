package domain

import "time"

// Vote bounds.
const (
	MinVoteValue = 1
	MaxVoteValue = 10
)

// Vote is a profile's rating of a book. There is at most one per (profile, book).
type Vote struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	BookID    string    `json:"book_id"`
	Value     int       `json:"value"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidVoteValue reports whether v is within the accepted range.
func ValidVoteValue(v int) bool {
	return v >= MinVoteValue && v <= MaxVoteValue
}
