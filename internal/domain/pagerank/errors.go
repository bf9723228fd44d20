package pagerank

import "errors"

// Sentinel kinds for PageRank errors.
var (
	ErrNotConverged  = errors.New("pagerank did not converge")
	ErrInvalidOption = errors.New("invalid pagerank option")
)
