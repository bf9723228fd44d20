package loadgen

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/courtrank/pkg/logger"
)

// Run generates a season, posts it to the service, forces a rebuild and
// verifies the published ranking.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting courtrank load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("teams", cfg.Teams),
		logger.Int("games", cfg.Games),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Int("topN", cfg.TopN),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	var before serviceStats
	if err := client.get(ctx, "/stats", &before); err != nil {
		return stats, fmt.Errorf("stats retrieval failed: %w", err)
	}

	// Step 2: Generate the season
	season, err := Generate(ctx, cfg)
	if err != nil {
		return stats, fmt.Errorf("season generation failed: %w", err)
	}
	stats.GamesGenerated = len(season.Games)

	// Step 3: Submit games concurrently
	if err := submitGames(ctx, cfg, client, season.Games, stats); err != nil {
		return stats, fmt.Errorf("game submission failed: %w", err)
	}

	// Step 4: Wait for the workers to store what was accepted
	stored, err := waitForIngest(ctx, cfg, client, before.StoredGames+stats.GamesAccepted)
	if err != nil {
		return stats, fmt.Errorf("waiting for ingestion failed: %w", err)
	}
	stats.GamesStored = stored - before.StoredGames

	// Step 5: Rank everything stored so far
	var summary Summary
	status, err := client.do(ctx, http.MethodPost, "/rebuild", nil, &summary)
	if err != nil {
		return stats, fmt.Errorf("rebuild failed: %w", err)
	}
	if status != StatusOK {
		return stats, fmt.Errorf("rebuild failed with status: %d", status)
	}
	stats.RankedTeams = summary.Teams
	stats.Iterations = summary.Iterations

	// Step 6: Read the leaderboard and cross-check it
	leaderboard, err := fetchRankings(ctx, client, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("rankings retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(leaderboard)
	if err := verifyLeaderboard(leaderboard); err != nil {
		return stats, fmt.Errorf("leaderboard verification failed: %w", err)
	}

	teams := make([]string, len(leaderboard))
	for i, e := range leaderboard {
		teams[i] = e.Team
	}
	ranks, err := fetchRanks(ctx, cfg, client, teams)
	if err != nil {
		return stats, fmt.Errorf("rank retrieval failed: %w", err)
	}
	if err := verifyRanks(leaderboard, ranks); err != nil {
		return stats, fmt.Errorf("rank verification failed: %w", err)
	}
	stats.RanksVerified = len(ranks)

	if len(leaderboard) > 1 {
		m, err := fetchVersus(ctx, client, leaderboard[1].Team, leaderboard[0].Team)
		if err != nil {
			return stats, fmt.Errorf("versus retrieval failed: %w", err)
		}
		if err := verifyVersus(leaderboard, m); err != nil {
			return stats, fmt.Errorf("versus verification failed: %w", err)
		}
	}
	stats.StrongestInTop = strongestInTop(season, leaderboard)
	displayTopTeams(ctx, season, leaderboard, cfg.Verbose)

	// Step 7: Save games for offline ranking
	if cfg.OutputFile != "" {
		if err := saveGames(ctx, cfg.OutputFile, season.Games); err != nil {
			logger.Get().Warn(ctx, "failed to save games to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "load run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running. /healthz serves the
// Prometheus exposition, so any 200 is healthy.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")
	status, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != StatusOK {
		return fmt.Errorf("health check returned status: %d", status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// waitForIngest polls /stats until the service has stored want games or the
// settle period ends. It returns the last stored count seen.
func waitForIngest(ctx context.Context, cfg *Config, client *HTTPClient, want int) (int, error) {
	deadline := time.Now().Add(cfg.Settle)
	ticker := time.NewTicker(settlePollInterval)
	defer ticker.Stop()

	for {
		var s serviceStats
		if err := client.get(ctx, "/stats", &s); err != nil {
			return 0, err
		}
		if s.StoredGames >= want {
			return s.StoredGames, nil
		}
		if !time.Now().Before(deadline) {
			logger.Get().Warn(ctx, "settle period ended before every game was stored",
				logger.Int("stored", s.StoredGames),
				logger.Int("expected", want),
				logger.Int("queueLength", s.QueueLength),
			)
			return s.StoredGames, nil
		}
		select {
		case <-ctx.Done():
			return s.StoredGames, ctx.Err()
		case <-ticker.C:
		}
	}
}

// saveGames writes games as a winner,loser CSV that the seed loader and the
// offline ranker both read.
func saveGames(ctx context.Context, filename string, games []Game) error {
	if len(games) == 0 {
		return fmt.Errorf("no games to save")
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close file", logger.Error(err))
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"game_id", "ts", "winner", "loser"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, g := range games {
		if err := w.Write([]string{g.GameID, g.TS, g.Winner, g.Loser}); err != nil {
			return fmt.Errorf("failed to write game %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush games: %w", err)
	}

	logger.Get().Info(ctx, "games saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, gamesPerSecond float64
	if stats.GamesSubmitted > 0 {
		acceptRate = float64(stats.GamesAccepted) / float64(stats.GamesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.GamesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("gamesSubmitted", stats.GamesSubmitted),
		logger.Int("gamesAccepted", stats.GamesAccepted),
		logger.Int("gamesDuplicate", stats.GamesDuplicate),
		logger.Int("gamesRejected", stats.GamesRejected),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("gamesStored", stats.GamesStored),
		logger.Int("rankedTeams", stats.RankedTeams),
		logger.Int("iterations", stats.Iterations),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("strongestInTop", stats.StrongestInTop),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("gamesPerSecond", gamesPerSecond),
	)
}
