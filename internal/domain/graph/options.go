package graph

import (
	"errors"
	"fmt"
	"strings"
)

// EdgePolicy decides how repeated games between the same ordered pair count.
type EdgePolicy int

const (
	// Collapse keeps one edge per ordered pair no matter how many games were
	// played: one game, one vote.
	Collapse EdgePolicy = iota
	// Accumulate adds one unit of weight per game, so the random walk follows
	// a loser's edges in proportion to how often each opponent beat it.
	Accumulate
)

// ErrUnknownPolicy is returned by ParseEdgePolicy.
var ErrUnknownPolicy = errors.New("unknown edge policy")

// String implements fmt.Stringer.
func (p EdgePolicy) String() string {
	switch p {
	case Collapse:
		return "collapse"
	case Accumulate:
		return "accumulate"
	default:
		return fmt.Sprintf("EdgePolicy(%d)", int(p))
	}
}

// ParseEdgePolicy parses "collapse" or "accumulate" (case-insensitive).
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "collapse":
		return Collapse, nil
	case "accumulate":
		return Accumulate, nil
	default:
		return Collapse, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

type buildConfig struct {
	policy EdgePolicy
}

// Option applies a configuration option to Build.
type Option func(*buildConfig)

// WithEdgePolicy selects how rematches are counted.
func WithEdgePolicy(p EdgePolicy) Option {
	return func(c *buildConfig) {
		if p == Collapse || p == Accumulate {
			c.policy = p
		}
	}
}
