package domain

import "errors"

// Sentinels shared by every storage implementation.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
