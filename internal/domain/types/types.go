// Package types contains response shapes shared by the repository and the API.
package types

// Matchup is the answer to a head-to-head query.
type Matchup struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	ScoreA float64 `json:"score_a"`
	ScoreB float64 `json:"score_b"`
	Winner string  `json:"winner"`
}

// Summary describes the published ranking.
type Summary struct {
	Teams      int    `json:"teams"`
	Edges      int    `json:"edges"`
	Games      int    `json:"games"`
	Discarded  int    `json:"discarded"`
	Iterations int    `json:"iterations"`
	Policy     string `json:"policy"`
	Version    uint64 `json:"version"`
	BuiltAtMS  int64  `json:"built_at_ms"`
}
