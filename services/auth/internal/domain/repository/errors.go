package repository

import "errors"

var (
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned by writes whose target row no longer exists.
	ErrNotFound = errors.New("record not found")
)
