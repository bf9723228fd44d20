// Package ranking is the ranking engine: it turns an outcome log into an
// immutable PageRank score table and answers ranking queries over it.
//
// An Engine is built once by New and never mutated afterwards, so any number
// of goroutines may query it without locking. Re-ranking means building a new
// Engine from an updated log.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/courtrank/internal/domain/graph"
	"github.com/okian/courtrank/internal/domain/outcome"
	"github.com/okian/courtrank/internal/domain/pagerank"
	"github.com/okian/courtrank/pkg/logger"
)

// Entry is one row of a ranking. Position is 1-based.
type Entry struct {
	Position int     `json:"position" yaml:"position"`
	Team     string  `json:"team" yaml:"team"`
	Score    float64 `json:"score" yaml:"score"`
}

// Engine holds the graph and score table computed from one outcome log.
type Engine struct {
	graph      *graph.Graph
	table      Table
	ranked     []Entry // score desc, team asc
	position   map[string]int
	iterations int
	delta      float64
	builtAt    time.Time
}

// New builds the graph for log and computes scores once.
// It fails only when PageRank fails: invalid options, a cancelled context,
// or no convergence within the iteration cap (pagerank.ErrNotConverged).
func New(ctx context.Context, log outcome.Log, opts ...Option) (*Engine, error) {
	cfg := newOptions(opts)

	start := time.Now()
	g := graph.Build(log, graph.WithEdgePolicy(cfg.policy))
	res, err := pagerank.Compute(ctx, g,
		pagerank.WithDamping(cfg.damping),
		pagerank.WithTolerance(cfg.tolerance),
		pagerank.WithMaxIterations(cfg.maxIterations),
	)
	if err != nil {
		if cfg.logger != nil {
			cfg.logger.Warn(ctx, "ranking failed",
				logger.Int("teams", g.Len()),
				logger.Int("iterations", res.Iterations),
				logger.Error(err),
			)
		}
		return nil, fmt.Errorf("ranking: %w", err)
	}

	e := &Engine{
		graph:      g,
		table:      Table(res.Scores),
		iterations: res.Iterations,
		delta:      res.Delta,
		builtAt:    time.Now(),
	}
	e.ranked = make([]Entry, 0, len(e.table))
	for team, score := range e.table {
		e.ranked = append(e.ranked, Entry{Team: team, Score: score})
	}
	sort.Slice(e.ranked, func(i, j int) bool {
		if e.ranked[i].Score != e.ranked[j].Score {
			return e.ranked[i].Score > e.ranked[j].Score
		}
		return e.ranked[i].Team < e.ranked[j].Team
	})
	e.position = make(map[string]int, len(e.ranked))
	for i := range e.ranked {
		e.ranked[i].Position = i + 1
		e.position[e.ranked[i].Team] = i + 1
	}

	if cfg.logger != nil {
		cfg.logger.Debug(ctx, "ranking built",
			logger.Int("teams", g.Len()),
			logger.Int("edges", g.EdgeCount()),
			logger.Int("games", g.Games()),
			logger.Int("discarded", g.Discarded()),
			logger.Int("iterations", res.Iterations),
			logger.String("policy", cfg.policy.String()),
			logger.Duration("took", time.Since(start)),
		)
	}
	return e, nil
}

// Empty returns an engine with no teams.
func Empty() *Engine {
	return &Engine{
		graph:    graph.Build(nil),
		table:    Table{},
		position: map[string]int{},
	}
}

// Ranks returns every team sorted by score descending, ties broken by team
// identifier ascending.
//
// With normalize set, scores are rescaled to (s-min)/(max-min) so the top
// team has 1 and the bottom team 0. When every score is equal (including a
// single team) the range is zero and every normalized score is 0.
func (e *Engine) Ranks(normalize bool) []Entry {
	out := make([]Entry, len(e.ranked))
	copy(out, e.ranked)
	if !normalize || len(out) == 0 {
		return out
	}

	top, bottom := out[0].Score, out[len(out)-1].Score
	spread := top - bottom
	for i := range out {
		if spread > 0 {
			out[i].Score = (out[i].Score - bottom) / spread
		} else {
			out[i].Score = 0
		}
	}
	// Guard the endpoints against rounding.
	if spread > 0 {
		out[0].Score = 1
		for i := range out {
			if e.ranked[i].Score == bottom {
				out[i].Score = 0
			}
		}
	}
	return out
}

// TopN returns the first n entries of the unnormalized ranking.
func (e *Engine) TopN(n int) []Entry {
	if n < 1 {
		return []Entry{}
	}
	if n > len(e.ranked) {
		n = len(e.ranked)
	}
	out := make([]Entry, n)
	copy(out, e.ranked[:n])
	return out
}

// Rank returns the raw score of team, or 0 if it never appeared in a
// complete outcome.
func (e *Engine) Rank(team string) float64 {
	return e.table.Get(team)
}

// Standing returns the ranking entry of team.
func (e *Engine) Standing(team string) (Entry, bool) {
	pos, ok := e.position[team]
	if !ok {
		return Entry{Team: team}, false
	}
	return e.ranked[pos-1], true
}

// Versus returns the team with the strictly greater score. Equal scores,
// including two unknown teams, resolve to b.
func (e *Engine) Versus(a, b string) string {
	if e.Rank(a) > e.Rank(b) {
		return a
	}
	return b
}

// Table returns a copy of the score table.
func (e *Engine) Table() Table {
	out := make(Table, len(e.table))
	for k, v := range e.table {
		out[k] = v
	}
	return out
}

// Len returns the number of ranked teams.
func (e *Engine) Len() int { return len(e.ranked) }

// Edges returns the number of distinct loser→winner edges.
func (e *Engine) Edges() int { return e.graph.EdgeCount() }

// Games returns the number of complete outcomes the engine was built from.
func (e *Engine) Games() int { return e.graph.Games() }

// Discarded returns the number of incomplete outcomes that were skipped.
func (e *Engine) Discarded() int { return e.graph.Discarded() }

// Iterations returns the PageRank iterations used.
func (e *Engine) Iterations() int { return e.iterations }

// Delta is the L1 change of the final power iteration.
func (e *Engine) Delta() float64 { return e.delta }

// Policy returns the edge policy used to build the graph.
func (e *Engine) Policy() graph.EdgePolicy { return e.graph.Policy() }

// BuiltAt returns when the scores were computed. Zero for Empty.
func (e *Engine) BuiltAt() time.Time { return e.builtAt }
