package catalog

import "errors"

// Sentinel errors mapped to HTTP status codes by the central error handler.
var (
	// ErrValidation is returned on bad or missing input (400).
	ErrValidation = errors.New("invalid input")
	// ErrConflict is returned when a normalized item id already exists (400).
	ErrConflict = errors.New("item id already exists")
	// ErrNotFound is returned when an item is missing (400).
	ErrNotFound = errors.New("item not found")
)
