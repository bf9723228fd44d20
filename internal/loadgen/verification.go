package loadgen

import (
	"context"
	"fmt"

	"github.com/okian/courtrank/pkg/logger"
)

// verifyLeaderboard checks that entries are sorted by score descending with
// contiguous 1-based positions.
func verifyLeaderboard(leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}
	for i, e := range leaderboard {
		if e.Position != i+1 {
			return fmt.Errorf("entry %d (%s) has position %d", i, e.Team, e.Position)
		}
		if i > 0 && e.Score > leaderboard[i-1].Score {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher score than entry %d", i, i-1)
		}
	}
	return nil
}

// verifyRanks checks that every per-team lookup agrees with the leaderboard.
func verifyRanks(leaderboard []Entry, ranks map[string]Entry) error {
	for _, want := range leaderboard {
		got, ok := ranks[want.Team]
		if !ok {
			return fmt.Errorf("no rank for %s", want.Team)
		}
		if got.Position != want.Position || got.Score != want.Score {
			return fmt.Errorf("rank for %s is #%d %.6f, leaderboard has #%d %.6f",
				want.Team, got.Position, got.Score, want.Position, want.Score)
		}
	}
	return nil
}

// verifyVersus checks that the leader beats the runner-up head to head.
func verifyVersus(leaderboard []Entry, m Matchup) error {
	if len(leaderboard) < 2 {
		return nil
	}
	leader := leaderboard[0]
	if leader.Score > leaderboard[1].Score && m.Winner != leader.Team {
		return fmt.Errorf("versus picked %s over leader %s", m.Winner, leader.Team)
	}
	return nil
}

// strongestInTop counts how many of the strongest teams made the leaderboard.
func strongestInTop(season *Season, leaderboard []Entry) int {
	top := make(map[string]struct{}, len(leaderboard))
	for _, e := range leaderboard {
		top[e.Team] = struct{}{}
	}
	n := 0
	for _, id := range season.Strongest(len(leaderboard)) {
		if _, ok := top[id]; ok {
			n++
		}
	}
	return n
}

// displayTopTeams logs the head of the leaderboard next to hidden strength.
func displayTopTeams(ctx context.Context, season *Season, leaderboard []Entry, verbose bool) {
	n := 10
	if len(leaderboard) < n || verbose {
		n = len(leaderboard)
	}
	for _, e := range leaderboard[:n] {
		logger.Get().Info(ctx, "ranked team",
			logger.Int("position", e.Position),
			logger.String("team", e.Team),
			logger.Float64("score", e.Score),
			logger.Float64("strength", season.Strength[e.Team]),
		)
	}
}
