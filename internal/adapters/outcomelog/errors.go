package outcomelog

import "errors"

var (
	// ErrMissingColumn is returned when the header lacks a winner or loser column.
	ErrMissingColumn = errors.New("results header missing column")
	// ErrMalformed wraps CSV syntax errors.
	ErrMalformed = errors.New("malformed results csv")
)
