package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the catalog's entity IDs.
const (
	PrefixUser      = "user"
	PrefixBook      = "book"
	PrefixAuthor    = "author"
	PrefixCategory  = "category"
	PrefixPublisher = "publisher"
	PrefixVote      = "vote"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "book-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewProfileID returns a random UUID for a profile.
// Profiles are addressed by UUID in URLs, so they don't carry a prefix.
func NewProfileID() string {
	return uuid.NewString()
}

// IsProfileID reports whether s is a well-formed profile UUID.
func IsProfileID(s string) bool {
	return uuid.Validate(s) == nil
}
