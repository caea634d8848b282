package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OptionalID is an identifier that is either present or absent.
// The zero value is absent. It is used for references that the store
// nulls out on delete, such as a catalog entity's creator or a book's publisher.
type OptionalID struct {
	id    string
	valid bool
}

// SomeID returns a present identifier. An empty id yields an absent one.
func SomeID(id string) OptionalID {
	if id == "" {
		return OptionalID{}
	}
	return OptionalID{id: id, valid: true}
}

// NoID returns an absent identifier.
func NoID() OptionalID {
	return OptionalID{}
}

// Get returns the identifier and whether it is present.
func (o OptionalID) Get() (string, bool) {
	return o.id, o.valid
}

// IsSet reports whether the identifier is present.
func (o OptionalID) IsSet() bool {
	return o.valid
}

// Is reports whether the identifier is present and equal to id.
func (o OptionalID) Is(id string) bool {
	return o.valid && o.id == id
}

// String returns the identifier, or "" when absent.
func (o OptionalID) String() string {
	return o.id
}

// MarshalJSON encodes an absent identifier as null.
func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.id)
}

// UnmarshalJSON accepts null or a string.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*o = OptionalID{}
		return nil
	}
	*o = SomeID(*s)
	return nil
}

// Value implements driver.Valuer; absent maps to NULL.
func (o OptionalID) Value() (driver.Value, error) {
	if !o.valid {
		return nil, nil
	}
	return o.id, nil
}

// Scan implements sql.Scanner.
func (o *OptionalID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*o = OptionalID{}
	case string:
		*o = SomeID(v)
	case []byte:
		*o = SomeID(string(v))
	default:
		return fmt.Errorf("cannot scan %T into OptionalID", src)
	}
	return nil
}
