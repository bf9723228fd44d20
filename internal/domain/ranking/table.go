package ranking

// Table maps team identifiers to PageRank scores.
// Lookups of unknown teams return 0 rather than failing.
type Table map[string]float64

// Get returns the score of team, or 0 if it never played a complete game.
func (t Table) Get(team string) float64 {
	return t[team]
}

// Has reports whether team has a score.
func (t Table) Has(team string) bool {
	_, ok := t[team]
	return ok
}

// Sum returns the total of all scores; 1 for any non-empty table.
func (t Table) Sum() float64 {
	total := 0.0
	for _, v := range t {
		total += v
	}
	return total
}
