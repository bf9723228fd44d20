// Package queue buffers submitted games between the HTTP layer and the
// ingest workers.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/courtrank/internal/domain/model"
	"github.com/okian/courtrank/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Game is the payload flowing through the queue.
type Game = model.Game

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a game without blocking.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, g Game) bool

	// Dequeue returns a channel of queued games. It is closed once the queue
	// is closed and drained, or when ctx is done.
	Dequeue(ctx context.Context) <-chan Game

	// Len returns the current number of queued games.
	Len(ctx context.Context) int

	// Close stops accepting games. Queued games can still be dequeued.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	games    chan Game
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.games = make(chan Game, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a game to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, g Game) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.games <- g:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives games as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Game {
	out := make(chan Game)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case g, ok := <-q.games:
				if !ok {
					return
				}
				select {
				case out <- g:
					metrics.RecordQueueDequeue()
					q.observe()
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued games.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.observe()
}

// Close stops accepting games.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.games)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Capacity returns the maximum number of queued games.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

func (q *InMemoryQueue) observe() int {
	size := len(q.games)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}
