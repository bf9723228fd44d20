package repository

import "github.com/okian/courtrank/internal/domain/ranking"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithEngine publishes e at version v when the store is created.
func WithEngine(e *ranking.Engine, v uint64) Option {
	return func(s *SnapshotStore) {
		if e != nil {
			s.current.Store(&snapshot{engine: e, version: v})
		}
	}
}
