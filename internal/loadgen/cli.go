package loadgen

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/courtrank/pkg/logger"
)

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWith(w, logger.FormatText); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `courtrank load generator
========================

Generates a synthetic season, posts every game to a running courtrank
service, forces a rebuild and verifies the published ranking.

Usage:
  go run ./cmd/load-games [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -teams int
        Number of teams (default 64)
  -games int
        Number of games to generate and submit (default 2000)
  -top int
        Number of ranking entries to verify (default 25)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        How long to wait for queued games to be stored (default 10s)
  -seed uint
        Season generator seed (default 1)
  -output string
        Write the generated games to this CSV file
  -log string
        Also write log output to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Post a default season and verify it
  go run ./cmd/load-games

  # A larger season, then rank the saved file offline
  go run ./cmd/load-games -teams 350 -games 6000 -output season.csv
  go run ./cmd/rank -games season.csv -top 25
`)
}
