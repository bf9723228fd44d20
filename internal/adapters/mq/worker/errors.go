package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrIncompleteGame = errors.New("game missing winner or loser")
	ErrAppendRejected = errors.New("outcome store rejected game")
)
