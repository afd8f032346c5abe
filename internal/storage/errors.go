package storage

import "errors"

// Storage errors shared by every store implementation.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting reference data whose key
	// already exists. Matching and odds tables never return it: they are
	// insert-or-ignore or upsert.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
