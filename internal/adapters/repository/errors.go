package repository

import "errors"

// Sentinel kinds for ranking lookups.
var (
	ErrNotFound     = errors.New("team not ranked")
	ErrInvalidLimit = errors.New("invalid rankings limit")
)
