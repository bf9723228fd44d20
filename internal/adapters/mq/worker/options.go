package worker

import (
	"time"

	"github.com/okian/courtrank/internal/domain/ranking"
	"github.com/okian/courtrank/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// RebuilderOption applies a configuration option to the Rebuilder.
type RebuilderOption func(*Rebuilder)

// WithInterval sets how often the rebuilder checks for new games.
func WithInterval(d time.Duration) RebuilderOption {
	return func(r *Rebuilder) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithRankingOptions sets the options every rebuild passes to ranking.New.
func WithRankingOptions(opts ...ranking.Option) RebuilderOption {
	return func(r *Rebuilder) {
		r.rankingOpts = append(r.rankingOpts, opts...)
	}
}

// WithRebuilderLogger sets a custom logger for the rebuilder.
func WithRebuilderLogger(l logger.Logger) RebuilderOption {
	return func(r *Rebuilder) {
		if l != nil {
			r.logger = l
		}
	}
}
