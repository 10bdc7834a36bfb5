package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a record does not exist or is not visible
	// to the owner in the context. The two cases are deliberately identical.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a record with the same unique key already exists.
	ErrConflict = errors.New("record already exists")
)

// ErrNoOwner is returned by owner-scoped operations when the context
// carries no owner. It indicates a wiring error, not a client error.
var ErrNoOwner = errors.New("no owner in context")
