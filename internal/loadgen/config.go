package loadgen

import (
	"errors"
	"time"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Teams      int           // Number of teams in the synthetic season
	Games      int           // Number of games to generate
	TopN       int           // Number of ranking entries to fetch and verify
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for queued games to be stored
	Seed       uint64        // Seed for the season generator
	OutputFile string        // Optional CSV file for the generated games
	Verbose    bool          // Enable verbose logging
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("base url must not be empty")
	case c.Teams < 2:
		return errors.New("at least two teams are required")
	case c.Games < 1:
		return errors.New("games must be positive")
	case c.TopN < 1:
		return errors.New("top must be positive")
	case c.Workers < 1:
		return errors.New("workers must be positive")
	case c.Timeout <= 0:
		return errors.New("timeout must be positive")
	}
	return nil
}

// Game is the body posted to /games.
type Game struct {
	GameID string `json:"game_id"`
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	TS     string `json:"ts"`
}

// Entry is one ranking row as served by /rankings and /rank/{team}.
type Entry struct {
	Position int     `json:"position"`
	Team     string  `json:"team"`
	Score    float64 `json:"score"`
}

// Matchup is the /versus response.
type Matchup struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	ScoreA float64 `json:"score_a"`
	ScoreB float64 `json:"score_b"`
	Winner string  `json:"winner"`
}

// AckResponse is the /games response.
type AckResponse struct {
	Status    string `json:"status"`
	GameID    string `json:"game_id"`
	Duplicate bool   `json:"duplicate"`
}

// Summary is the /rebuild response.
type Summary struct {
	Teams      int    `json:"teams"`
	Edges      int    `json:"edges"`
	Games      int    `json:"games"`
	Iterations int    `json:"iterations"`
	Policy     string `json:"policy"`
	Version    uint64 `json:"version"`
}

// serviceStats is the subset of /stats the runner reads.
type serviceStats struct {
	StoredGames int `json:"storedGames"`
	QueueLength int `json:"queueLength"`
}

// Stats holds run statistics.
type Stats struct {
	GamesGenerated     int
	GamesSubmitted     int
	GamesAccepted      int
	GamesDuplicate     int
	GamesRejected      int
	GamesFailed        int
	GamesStored        int
	RankedTeams        int
	Iterations         int
	LeaderboardEntries int
	RanksVerified      int
	StrongestInTop     int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
