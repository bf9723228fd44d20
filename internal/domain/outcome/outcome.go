// Package outcome holds game outcomes and the append-only store they live in.
package outcome

// Outcome is one game: Winner beat Loser. Both are normalized team identifiers.
type Outcome struct {
	Winner string `json:"winner" yaml:"winner"`
	Loser  string `json:"loser" yaml:"loser"`
}

// Complete reports whether both sides of the game are known.
// Incomplete outcomes never become graph nodes or edges.
func (o Outcome) Complete() bool {
	return o.Winner != "" && o.Loser != ""
}

// Log is an ordered sequence of outcomes, oldest first.
type Log []Outcome

// Complete returns the outcomes with both sides known, preserving order.
func (l Log) Complete() Log {
	out := make(Log, 0, len(l))
	for _, o := range l {
		if o.Complete() {
			out = append(out, o)
		}
	}
	return out
}

// Teams returns every team in complete outcomes in order of first appearance.
// Within a game the loser is seen before the winner, matching edge direction.
func (l Log) Teams() []string {
	seen := make(map[string]struct{}, len(l))
	var teams []string
	for _, o := range l {
		if !o.Complete() {
			continue
		}
		for _, t := range [2]string{o.Loser, o.Winner} {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				teams = append(teams, t)
			}
		}
	}
	return teams
}
