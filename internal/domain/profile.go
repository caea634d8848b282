package domain

import "time"

// Profile is the in-application identity of a user. Owned books and
// friends are stored as join rows, not on the struct.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile creates a profile for a user.
func NewProfile(id, userID, name string) *Profile {
	now := time.Now()
	return &Profile{ID: id, UserID: userID, Name: name, CreatedAt: now, UpdatedAt: now}
}

// Toggle is the parsed form of a "True"/"False" membership flag.
type Toggle int

const (
	// ToggleIgnore means the submitted value was neither "True" nor "False".
	ToggleIgnore Toggle = iota
	ToggleAdd
	ToggleRemove
)

// ParseToggle maps the literal strings "True" and "False" to add and remove.
// Any other value, including "true", is ignored.
func ParseToggle(s string) Toggle {
	switch s {
	case "True":
		return ToggleAdd
	case "False":
		return ToggleRemove
	default:
		return ToggleIgnore
	}
}
