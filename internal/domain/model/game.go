// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/courtrank/internal/domain/outcome"
	"github.com/okian/courtrank/internal/domain/team"
)

// Game is a result submitted by clients.
// Fields mirror the OpenAPI schema for /games.
type Game struct {
	GameID string    // unique id for idempotency
	Winner string    // displayed winner name, e.g. "Duke (3)"
	Loser  string    // displayed loser name
	TS     time.Time // when the game was played or received
}

// Outcome normalizes both team names into an outcome.
// The result is incomplete when either name normalizes to empty.
func (g Game) Outcome() outcome.Outcome {
	return outcome.Outcome{
		Winner: team.Normalize(g.Winner),
		Loser:  team.Normalize(g.Loser),
	}
}
