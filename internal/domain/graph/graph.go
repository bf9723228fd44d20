// Package graph builds the directed loser→winner graph from an outcome log.
//
// Nodes are team identifiers, inserted on first appearance. Every complete
// outcome contributes one edge from the loser to the winner. How repeated games
// between the same ordered pair are counted is decided by the EdgePolicy.
// A Graph is immutable once Build returns.
package graph

import (
	"github.com/okian/courtrank/internal/domain/outcome"
)

// Edge is an outgoing edge in adjacency order.
type Edge struct {
	To     int
	Weight float64
}

// Graph is a weighted directed graph over team identifiers.
type Graph struct {
	policy    EdgePolicy
	index     map[string]int
	names     []string
	adj       [][]Edge
	slot      []map[int]int // from -> to -> position in adj[from]
	outWeight []float64
	games     int
	discarded int
}

// Build constructs the graph for log. Outcomes with a missing side are skipped
// and counted in Discarded; they never create nodes.
func Build(log outcome.Log, opts ...Option) *Graph {
	cfg := buildConfig{policy: Collapse}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := &Graph{
		policy: cfg.policy,
		index:  make(map[string]int),
	}
	for _, o := range log {
		if !o.Complete() {
			g.discarded++
			continue
		}
		g.addEdge(g.node(o.Loser), g.node(o.Winner))
		g.games++
	}
	return g
}

func (g *Graph) node(name string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	i := len(g.names)
	g.index[name] = i
	g.names = append(g.names, name)
	g.adj = append(g.adj, nil)
	g.slot = append(g.slot, make(map[int]int))
	g.outWeight = append(g.outWeight, 0)
	return i
}

func (g *Graph) addEdge(from, to int) {
	if pos, ok := g.slot[from][to]; ok {
		if g.policy == Accumulate {
			g.adj[from][pos].Weight++
			g.outWeight[from]++
		}
		return
	}
	g.slot[from][to] = len(g.adj[from])
	g.adj[from] = append(g.adj[from], Edge{To: to, Weight: 1})
	g.outWeight[from]++
}

// Policy returns the edge policy the graph was built with.
func (g *Graph) Policy() EdgePolicy { return g.policy }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.names) }

// EdgeCount returns the number of distinct ordered loser→winner pairs.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.adj {
		n += len(edges)
	}
	return n
}

// Games returns the number of complete outcomes the graph was built from.
func (g *Graph) Games() int { return g.games }

// Discarded returns the number of incomplete outcomes that were skipped.
func (g *Graph) Discarded() int { return g.discarded }

// Nodes returns team identifiers in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Name returns the identifier of node i.
func (g *Graph) Name(i int) string { return g.names[i] }

// Index returns the node index of team.
func (g *Graph) Index(team string) (int, bool) {
	i, ok := g.index[team]
	return i, ok
}

// Has reports whether team appears in any complete outcome.
func (g *Graph) Has(team string) bool {
	_, ok := g.index[team]
	return ok
}

// EdgesFrom returns the outgoing edges of node i in insertion order.
// The slice must not be modified.
func (g *Graph) EdgesFrom(i int) []Edge { return g.adj[i] }

// OutWeightAt returns the total outgoing weight of node i.
// Zero means the team never lost: a dangling node.
func (g *Graph) OutWeightAt(i int) float64 { return g.outWeight[i] }

// Weight returns the weight of the edge from→to, or 0 when absent.
func (g *Graph) Weight(from, to string) float64 {
	fi, ok := g.index[from]
	if !ok {
		return 0
	}
	ti, ok := g.index[to]
	if !ok {
		return 0
	}
	pos, ok := g.slot[fi][ti]
	if !ok {
		return 0
	}
	return g.adj[fi][pos].Weight
}

// OutWeight returns the total outgoing weight of team, or 0 when absent.
func (g *Graph) OutWeight(team string) float64 {
	i, ok := g.index[team]
	if !ok {
		return 0
	}
	return g.outWeight[i]
}

// Successors returns the teams that beat team, in first-game order.
func (g *Graph) Successors(team string) []string {
	i, ok := g.index[team]
	if !ok {
		return nil
	}
	out := make([]string, len(g.adj[i]))
	for k, e := range g.adj[i] {
		out[k] = g.names[e.To]
	}
	return out
}
