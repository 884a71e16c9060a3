package orderset

import "errors"

var (
	// ErrInvalidEntityType is returned when a write names an entity-type token
	// that is not in the tier table.
	ErrInvalidEntityType = errors.New("orderset: invalid entity type")

	// ErrNotFound is returned by deletes that matched no rows.
	ErrNotFound = errors.New("orderset: not found")
)
