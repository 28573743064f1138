package repository

import "errors"

var (
	// ErrNotFound is returned when the requested record or file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned by a save whose expected version is stale.
	ErrVersionConflict = errors.New("version conflict")
)
