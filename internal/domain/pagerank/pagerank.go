// Package pagerank computes stationary random-surfer scores over a graph.
package pagerank

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/courtrank/internal/domain/graph"
)

// Defaults match networkx.pagerank.
const (
	DefaultDamping       = 0.85
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
)

// Result is the outcome of one PageRank run.
type Result struct {
	// Scores maps each node to its stationary probability; values sum to 1.
	Scores map[string]float64
	// Iterations is the number of power iterations performed.
	Iterations int
	// Converged is false when the iteration cap was reached first.
	Converged bool
	// Delta is the L1 change of the last iteration.
	Delta float64
}

// Compute runs power iteration over g.
//
// At every step the surfer follows an outgoing edge with probability d,
// choosing among edges in proportion to their weight, or teleports to a
// uniformly random node. Mass sitting on dangling nodes (teams that never
// lost) is spread uniformly over all nodes so the total stays 1.
//
// Iteration stops once the L1 change drops below N·tolerance. If the cap is
// reached first the partial Result is returned with an error wrapping
// ErrNotConverged.
func Compute(ctx context.Context, g *graph.Graph, opts ...Option) (Result, error) {
	cfg := config{
		damping:       DefaultDamping,
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	n := g.Len()
	if n == 0 {
		return Result{Scores: map[string]float64{}, Converged: true}, nil
	}

	var dangling []int
	for i := 0; i < n; i++ {
		if g.OutWeightAt(i) == 0 {
			dangling = append(dangling, i)
		}
	}

	fn := float64(n)
	x := make([]float64, n)
	next := make([]float64, n)
	for i := range x {
		x[i] = 1 / fn
	}

	res := Result{}
	for iter := 1; iter <= cfg.maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("pagerank: %w", err)
		}

		danglingMass := 0.0
		for _, i := range dangling {
			danglingMass += x[i]
		}
		base := cfg.damping*danglingMass/fn + (1-cfg.damping)/fn
		for i := range next {
			next[i] = base
		}
		for from := 0; from < n; from++ {
			out := g.OutWeightAt(from)
			if out == 0 {
				continue
			}
			share := cfg.damping * x[from] / out
			for _, e := range g.EdgesFrom(from) {
				next[e.To] += share * e.Weight
			}
		}

		delta := 0.0
		for i := range next {
			delta += math.Abs(next[i] - x[i])
		}
		x, next = next, x

		res.Iterations = iter
		res.Delta = delta
		if delta < fn*cfg.tolerance {
			res.Converged = true
			break
		}
	}

	res.Scores = make(map[string]float64, n)
	for i, v := range x {
		res.Scores[g.Name(i)] = v
	}
	if !res.Converged {
		return res, fmt.Errorf("%w after %d iterations (delta %.3g)", ErrNotConverged, res.Iterations, res.Delta)
	}
	return res, nil
}
