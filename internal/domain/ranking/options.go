package ranking

import (
	"github.com/okian/courtrank/internal/domain/graph"
	"github.com/okian/courtrank/internal/domain/pagerank"
	"github.com/okian/courtrank/pkg/logger"
)

type options struct {
	policy        graph.EdgePolicy
	damping       float64
	tolerance     float64
	maxIterations int
	logger        logger.Logger
}

func newOptions(opts []Option) options {
	o := options{
		policy:        graph.Collapse,
		damping:       pagerank.DefaultDamping,
		tolerance:     pagerank.DefaultTolerance,
		maxIterations: pagerank.DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures New.
type Option func(*options)

// WithEdgePolicy selects how rematches contribute to the graph.
func WithEdgePolicy(p graph.EdgePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithDamping sets the PageRank damping factor.
func WithDamping(d float64) Option {
	return func(o *options) { o.damping = d }
}

// WithTolerance sets the PageRank convergence tolerance.
func WithTolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

// WithMaxIterations caps PageRank power iterations.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithLogger makes New log build summaries and failures.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}
