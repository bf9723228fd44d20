package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/courtrank/internal/loadgen"
)

// Default configuration constants.
const (
	defaultTeams   = 64
	defaultGames   = 2000
	defaultTopN    = 25
	defaultWorkers = 2 // multiplier for runtime.NumCPU()
	defaultTimeout = 30 * time.Second
	defaultSettle  = 10 * time.Second
	defaultRunTime = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		teams      = flag.Int("teams", defaultTeams, "Number of teams")
		games      = flag.Int("games", defaultGames, "Number of games to generate and submit")
		topN       = flag.Int("top", defaultTopN, "Number of ranking entries to verify")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", defaultSettle, "How long to wait for queued games to be stored")
		seed       = flag.Uint64("seed", 1, "Season generator seed")
		outputFile = flag.String("output", "", "Write the generated games to this CSV file")
		logFile    = flag.String("log", "", "Also write log output to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp(os.Stdout)
		return
	}

	if err := loadgen.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTime)
	defer cancel()

	config := &loadgen.Config{
		BaseURL:    *baseURL,
		Teams:      *teams,
		Games:      *games,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		Settle:     *settle,
		Seed:       *seed,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
