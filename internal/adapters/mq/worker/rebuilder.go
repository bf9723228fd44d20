package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/courtrank/internal/domain/outcome"
	"github.com/okian/courtrank/internal/domain/pagerank"
	"github.com/okian/courtrank/internal/domain/ranking"
	"github.com/okian/courtrank/pkg/logger"
	"github.com/okian/courtrank/pkg/metrics"
)

const defaultRebuildInterval = time.Second

// Snapshotter exposes the outcome store to the rebuilder.
type Snapshotter interface {
	Snapshot(ctx context.Context) (outcome.Log, uint64)
	Version() uint64
}

// Publisher receives freshly built rankings.
type Publisher interface {
	Publish(ctx context.Context, e *ranking.Engine, v uint64)
	Version() uint64
}

// Rebuilder recomputes the ranking whenever the outcome store changes and
// publishes the result. Only one rebuild runs at a time.
type Rebuilder struct {
	store       Snapshotter
	publisher   Publisher
	interval    time.Duration
	rankingOpts []ranking.Option

	mu     sync.Mutex // serializes rebuilds
	failed uint64     // last version that failed to converge

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewRebuilder creates a rebuilder.
func NewRebuilder(store Snapshotter, pub Publisher, opts ...RebuilderOption) *Rebuilder {
	r := &Rebuilder{
		store:     store,
		publisher: pub,
		interval:  defaultRebuildInterval,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("rebuilder")
	}
	return r
}

// Run checks the store on every tick until ctx is done or Shutdown is called.
func (r *Rebuilder) Run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case <-ticker.C:
			if !r.stale() {
				continue
			}
			if _, err := r.Rebuild(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn(ctx, "rebuild failed, keeping previous ranking", logger.Error(err))
			}
		}
	}
}

// stale reports whether the store has games the published ranking lacks and
// that version has not already failed to converge.
func (r *Rebuilder) stale() bool {
	v := r.store.Version()
	r.mu.Lock()
	failed := r.failed
	r.mu.Unlock()
	return v != r.publisher.Version() && v != failed
}

// Rebuild builds a ranking from the current store contents and publishes it.
// On failure the published ranking is left untouched.
func (r *Rebuilder) Rebuild(ctx context.Context) (*ranking.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	log, version := r.store.Snapshot(ctx)

	e, err := ranking.New(ctx, log, r.rankingOpts...)
	if err != nil {
		if errors.Is(err, pagerank.ErrNotConverged) {
			r.failed = version
			metrics.RecordNonConvergence()
			metrics.RecordErrorByComponent("rebuilder", "not_converged")
		} else {
			metrics.RecordErrorByComponent("rebuilder", "build_failed")
		}
		metrics.RecordErrorLatency("rebuilder", "build_failed", float64(time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("rebuild version %d: %w", version, err)
	}

	r.publisher.Publish(ctx, e, version)

	latency := time.Since(start)
	metrics.RecordRebuild(float64(latency.Milliseconds()))
	metrics.RecordPageRankIterations(e.Iterations())

	r.logger.Info(ctx, "ranking published",
		logger.Uint64("version", version),
		logger.Int("teams", e.Len()),
		logger.Int("edges", e.Edges()),
		logger.Int("iterations", e.Iterations()),
		logger.Duration("took", latency),
	)
	return e, nil
}

// Shutdown stops the loop started by Run.
func (r *Rebuilder) Shutdown(ctx context.Context) error {
	r.shutdownOnce.Do(func() { close(r.shutdown) })

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("rebuilder shutdown timed out: %w", ctx.Err())
	}
}
