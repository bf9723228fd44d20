// Package worker drains submitted games into the outcome store and keeps the
// published ranking up to date.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/courtrank/internal/domain/model"
	"github.com/okian/courtrank/internal/domain/outcome"
	"github.com/okian/courtrank/pkg/logger"
	"github.com/okian/courtrank/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Game is what workers read off the queue.
type Game = model.Game

// Appender stores complete outcomes.
type Appender interface {
	Append(ctx context.Context, o outcome.Outcome) bool
	Len() int
}

// Queue defines how workers receive games.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Game
}

// Worker processes games until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker normalizes queued games and appends them to the store.
type InMemoryWorker struct {
	queue Queue
	store Appender
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, store Appender, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		store:    store,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	games := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case g, ok := <-games:
			if !ok {
				return
			}
			if err := w.process(ctx, g); err != nil {
				w.logger.Debug(ctx, "game dropped", logger.String("game_id", g.GameID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, g Game) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	o := g.Outcome()
	if !o.Complete() {
		metrics.RecordGameDiscarded("incomplete")
		metrics.RecordErrorByComponent("worker", "incomplete_game")
		return fmt.Errorf("%w: winner %q loser %q", ErrIncompleteGame, g.Winner, g.Loser)
	}
	if !w.store.Append(ctx, o) {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "append_rejected")
		return fmt.Errorf("%w: %s", ErrAppendRejected, g.GameID)
	}
	metrics.UpdateGamesStored(w.store.Len())
	return nil
}

// Pool manages multiple ingest workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a worker pool. A count below one means one worker per CPU.
func NewPool(workerCount int, q Queue, store Appender) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, store, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still running when ctx (or the pool timeout) expires are stopped without
// draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(context.Background())
			timedOut++
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
