package validation

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidID   = errors.New("invalid id")
	ErrIDsRequired = errors.New("ids are required")
	ErrIDsNotArray = errors.New("ids should be an array")
	ErrIDsEmpty    = errors.New("array can not be empty")
	ErrIDsInvalid  = errors.New("one or more ids are invalid")
)

// canonicalIDLen is the length of the hyphenated UUID form the store emits.
const canonicalIDLen = 36

// ValidateID reports whether id is a primary key the store could have issued.
func ValidateID(id string) error {
	if len(id) != canonicalIDLen {
		return ErrInvalidID
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// ValidateIDs checks the decoded "ids" member of a JSON body and returns it as strings.
// v is whatever encoding/json produced for the member: nil when absent or null.
func ValidateIDs(v any) ([]string, error) {
	if v == nil {
		return nil, ErrIDsRequired
	}
	items, ok := v.([]any)
	if !ok {
		return nil, ErrIDsNotArray
	}
	if len(items) == 0 {
		return nil, ErrIDsEmpty
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || ValidateID(s) != nil {
			return nil, ErrIDsInvalid
		}
		ids = append(ids, s)
	}
	return ids, nil
}
