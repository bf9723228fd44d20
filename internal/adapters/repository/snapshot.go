package repository

import (
	"context"
	"sync/atomic"

	"github.com/okian/courtrank/internal/domain/ranking"
	"github.com/okian/courtrank/internal/domain/types"
	"github.com/okian/courtrank/pkg/metrics"
)

type snapshot struct {
	engine  *ranking.Engine
	version uint64
}

// SnapshotStore keeps the current ranking behind an atomic pointer.
// Until something is published it answers like an empty ranking.
type SnapshotStore struct {
	current atomic.Pointer[snapshot]
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{}
	s.current.Store(&snapshot{engine: ranking.Empty()})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SnapshotStore) load() *snapshot {
	return s.current.Load()
}

// Publish implements Store.Publish.
func (s *SnapshotStore) Publish(_ context.Context, e *ranking.Engine, v uint64) {
	if e == nil {
		return
	}
	s.current.Store(&snapshot{engine: e, version: v})
	metrics.UpdateRankedTeams(e.Len())
	metrics.UpdateGraphEdges(e.Edges())
}

// TopN implements Store.TopN.
func (s *SnapshotStore) TopN(_ context.Context, n int, normalize bool) ([]ranking.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	e := s.load().engine
	if !normalize {
		return e.TopN(n), nil
	}
	// Normalization spans the whole ranking, so truncate afterwards.
	all := e.Ranks(true)
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

// Rank implements Store.Rank.
func (s *SnapshotStore) Rank(_ context.Context, team string) (ranking.Entry, error) {
	entry, ok := s.load().engine.Standing(team)
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return ranking.Entry{}, ErrNotFound
	}
	return entry, nil
}

// Score implements Store.Score.
func (s *SnapshotStore) Score(_ context.Context, team string) float64 {
	return s.load().engine.Rank(team)
}

// Versus implements Store.Versus. Both scores come from the same snapshot.
func (s *SnapshotStore) Versus(_ context.Context, a, b string) types.Matchup {
	e := s.load().engine
	return types.Matchup{
		A:      a,
		B:      b,
		ScoreA: e.Rank(a),
		ScoreB: e.Rank(b),
		Winner: e.Versus(a, b),
	}
}

// Count implements Store.Count.
func (s *SnapshotStore) Count(_ context.Context) int {
	return s.load().engine.Len()
}

// Version implements Store.Version.
func (s *SnapshotStore) Version() uint64 {
	return s.load().version
}

// Summary implements Store.Summary.
func (s *SnapshotStore) Summary(_ context.Context) types.Summary {
	snap := s.load()
	e := snap.engine
	sum := types.Summary{
		Teams:      e.Len(),
		Edges:      e.Edges(),
		Games:      e.Games(),
		Discarded:  e.Discarded(),
		Iterations: e.Iterations(),
		Policy:     e.Policy().String(),
		Version:    snap.version,
	}
	if t := e.BuiltAt(); !t.IsZero() {
		sum.BuiltAtMS = t.UnixMilli()
	}
	return sum
}
