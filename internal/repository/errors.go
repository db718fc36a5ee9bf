package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrStale means a conditional write matched no row because the record
	// changed since it was read.
	ErrStale = errors.New("stale write")
	// ErrNumberTaken means the generated booking number is already in use.
	ErrNumberTaken = errors.New("booking number taken")
)
