// Package repository holds the published ranking that queries read from.
package repository

import (
	"context"

	"github.com/okian/courtrank/internal/domain/ranking"
	"github.com/okian/courtrank/internal/domain/types"
)

// Store provides read access to the current ranking and a way to replace it.
type Store interface {
	// Publish swaps in e as the current ranking, built from outcome store
	// version v. Readers see either the old or the new ranking, never a mix.
	Publish(ctx context.Context, e *ranking.Engine, v uint64)

	// TopN returns the first n entries, optionally normalized to [0, 1].
	// Returns ErrInvalidLimit if n < 1.
	TopN(ctx context.Context, n int, normalize bool) ([]ranking.Entry, error)

	// Rank returns the position and raw score of team.
	// Returns ErrNotFound if the team has no complete games.
	Rank(ctx context.Context, team string) (ranking.Entry, error)

	// Score returns the raw score of team, 0 when unknown.
	Score(ctx context.Context, team string) float64

	// Versus compares two teams; ties go to b.
	Versus(ctx context.Context, a, b string) types.Matchup

	// Count returns the number of ranked teams.
	Count(ctx context.Context) int

	// Version returns the outcome store version of the published ranking.
	Version() uint64

	// Summary describes the published ranking.
	Summary(ctx context.Context) types.Summary
}
