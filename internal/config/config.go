// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file and COURTRANK_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Edge policies accepted by EdgePolicy.
const (
	EdgePolicyCollapse   = "collapse"
	EdgePolicyAccumulate = "accumulate"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SeedFile is an optional winner,loser CSV loaded into the outcome store at startup.
	SeedFile string `koanf:"seed_file"`

	// GameQueueSize bounds the in-memory ingestion queue.
	GameQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many game ids are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingsLimit caps GET /rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// RebuildIntervalMS is how often the rebuilder checks for new outcomes.
	RebuildIntervalMS int `koanf:"rebuild_interval_ms"`

	// EdgePolicy decides how rematches weigh in the graph: collapse or accumulate.
	EdgePolicy string `koanf:"edge_policy"`

	// Damping is the PageRank follow-an-edge probability.
	Damping float64 `koanf:"damping"`

	// Tolerance is the per-node PageRank convergence threshold.
	Tolerance float64 `koanf:"tolerance"`

	// MaxIterations caps PageRank power iterations.
	MaxIterations int `koanf:"max_iterations"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		GameQueueSize:     10_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        100_000,
		MaxRankingsLimit:  500,
		RebuildIntervalMS: 1000,
		EdgePolicy:        EdgePolicyCollapse,
		Damping:           0.85,
		Tolerance:         1e-6,
		MaxIterations:     100,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.GameQueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxRankingsLimit < 1:
		return fmt.Errorf("%w: max_rankings_limit must be positive", ErrInvalidConfig)
	case c.RebuildIntervalMS < 1:
		return fmt.Errorf("%w: rebuild_interval_ms must be positive", ErrInvalidConfig)
	case c.Damping <= 0 || c.Damping >= 1:
		return fmt.Errorf("%w: damping must be in (0, 1)", ErrInvalidConfig)
	case c.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance must be positive", ErrInvalidConfig)
	case c.MaxIterations < 1:
		return fmt.Errorf("%w: max_iterations must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.EdgePolicy) {
	case EdgePolicyCollapse, EdgePolicyAccumulate:
	default:
		return fmt.Errorf("%w: unknown edge_policy %q", ErrInvalidConfig, c.EdgePolicy)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
