package pagerank

import "fmt"

type config struct {
	damping       float64
	tolerance     float64
	maxIterations int
}

func (c config) validate() error {
	switch {
	case c.damping <= 0 || c.damping >= 1:
		return fmt.Errorf("%w: damping %v not in (0, 1)", ErrInvalidOption, c.damping)
	case c.tolerance <= 0:
		return fmt.Errorf("%w: tolerance %v must be positive", ErrInvalidOption, c.tolerance)
	case c.maxIterations < 1:
		return fmt.Errorf("%w: max iterations %d must be positive", ErrInvalidOption, c.maxIterations)
	}
	return nil
}

// Option applies a configuration option to Compute.
type Option func(*config)

// WithDamping sets the probability of following an edge.
func WithDamping(d float64) Option {
	return func(c *config) { c.damping = d }
}

// WithTolerance sets the per-node convergence threshold.
func WithTolerance(tol float64) Option {
	return func(c *config) { c.tolerance = tol }
}

// WithMaxIterations caps the number of power iterations.
func WithMaxIterations(n int) Option {
	return func(c *config) { c.maxIterations = n }
}
