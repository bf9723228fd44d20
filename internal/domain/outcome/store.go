package outcome

import (
	"context"
	"sync"
	"sync/atomic"
)

// Store is an append-only, concurrency-safe outcome log.
// Readers take snapshots; nothing already appended is ever changed.
type Store struct {
	mu      sync.RWMutex
	log     Log
	version atomic.Uint64
}

// NewStore creates a store, optionally seeded with an existing log.
// Incomplete outcomes in the seed are skipped.
func NewStore(seed Log) *Store {
	s := &Store{log: seed.Complete()}
	if len(s.log) > 0 {
		s.version.Store(1)
	}
	return s
}

// Append adds a complete outcome and reports whether it was stored.
func (s *Store) Append(_ context.Context, o Outcome) bool {
	if !o.Complete() {
		return false
	}
	s.mu.Lock()
	s.log = append(s.log, o)
	s.version.Add(1)
	s.mu.Unlock()
	return true
}

// AppendLog adds every complete outcome in l and returns how many were stored.
func (s *Store) AppendLog(_ context.Context, l Log) int {
	complete := l.Complete()
	if len(complete) == 0 {
		return 0
	}
	s.mu.Lock()
	s.log = append(s.log, complete...)
	s.version.Add(1)
	s.mu.Unlock()
	return len(complete)
}

// Snapshot returns a copy of the log together with the version it reflects.
func (s *Store) Snapshot(_ context.Context) (Log, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Log, len(s.log))
	copy(out, s.log)
	return out, s.version.Load()
}

// Len returns the number of stored outcomes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

// Version increases on every successful append.
func (s *Store) Version() uint64 {
	return s.version.Load()
}
