package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/courtrank/internal/domain/team"
	"github.com/okian/courtrank/pkg/logger"
)

// Generator constants.
const (
	minStrength    = 0.2
	pollEvery      = 4 // every fourth team carries a poll ranking in its name
	seedStreamMask = 0x9e3779b97f4a7c15
)

// Season is a synthetic schedule of games between teams of known strength.
type Season struct {
	Teams    []string           // display names, possibly with a poll ranking
	Strength map[string]float64 // keyed by normalized team identifier
	Games    []Game
}

// Strongest returns the n normalized team identifiers with the highest
// hidden strength.
func (s *Season) Strongest(n int) []string {
	ids := make([]string, 0, len(s.Strength))
	for id := range s.Strength {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if s.Strength[ids[i]] != s.Strength[ids[j]] {
			return s.Strength[ids[i]] > s.Strength[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if n < len(ids) {
		ids = ids[:n]
	}
	return ids
}

// Generate builds a season from cfg. Each game pairs two distinct teams and
// the stronger team wins with probability proportional to its strength.
// The same seed always yields the same teams and results.
func Generate(ctx context.Context, cfg *Config) (*Season, error) {
	logger.Get().Info(ctx, "generating season",
		logger.Int("teams", cfg.Teams),
		logger.Int("games", cfg.Games),
		logger.Uint64("seed", cfg.Seed),
	)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^seedStreamMask))
	s := &Season{
		Teams:    make([]string, cfg.Teams),
		Strength: make(map[string]float64, cfg.Teams),
		Games:    make([]Game, cfg.Games),
	}
	for i := range s.Teams {
		name := fmt.Sprintf("Team %03d", i+1)
		if i%pollEvery == 0 {
			name = fmt.Sprintf("%s (%d)", name, i/pollEvery+1)
		}
		s.Teams[i] = name
		s.Strength[team.Normalize(name)] = minStrength + rng.Float64()
	}

	ts := time.Now().UTC()
	for i := range s.Games {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("context cancelled during generation: %w", err)
			}
		}
		a := rng.IntN(cfg.Teams)
		b := rng.IntN(cfg.Teams - 1)
		if b >= a {
			b++
		}
		winner, loser := s.Teams[a], s.Teams[b]
		sa, sb := s.Strength[team.Normalize(winner)], s.Strength[team.Normalize(loser)]
		if rng.Float64() >= sa/(sa+sb) {
			winner, loser = loser, winner
		}
		s.Games[i] = Game{
			GameID: uuid.NewString(),
			Winner: winner,
			Loser:  loser,
			TS:     ts.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		}
	}

	logger.Get().Info(ctx, "generated season", logger.Int("games", len(s.Games)))
	return s, nil
}
