// Command rank ranks teams offline from one or more winner/loser CSV files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/okian/courtrank/internal/adapters/outcomelog"
	"github.com/okian/courtrank/internal/domain/graph"
	"github.com/okian/courtrank/internal/domain/pagerank"
	"github.com/okian/courtrank/internal/domain/ranking"
	"github.com/okian/courtrank/internal/domain/team"
	"github.com/okian/courtrank/pkg/logger"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type options struct {
	games     []string
	teams     string
	normalize bool
	top       int
	versus    []string
	policy    graph.EdgePolicy
	damping   float64
	tolerance float64
	maxIter   int
	format    string
	verbose   bool
}

// report is the json and yaml output document.
type report struct {
	Teams      int             `json:"teams" yaml:"teams"`
	Games      int             `json:"games" yaml:"games"`
	Discarded  int             `json:"discarded" yaml:"discarded"`
	Iterations int             `json:"iterations" yaml:"iterations"`
	Policy     string          `json:"policy" yaml:"policy"`
	Normalized bool            `json:"normalized" yaml:"normalized"`
	Rankings   []ranking.Entry `json:"rankings" yaml:"rankings"`
	Missing    []string        `json:"missing,omitempty" yaml:"missing,omitempty"`
	Versus     *matchup        `json:"versus,omitempty" yaml:"versus,omitempty"`
}

type matchup struct {
	A      string  `json:"a" yaml:"a"`
	B      string  `json:"b" yaml:"b"`
	ScoreA float64 `json:"score_a" yaml:"score_a"`
	ScoreB float64 `json:"score_b" yaml:"score_b"`
	Winner string  `json:"winner" yaml:"winner"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, "rank:", err)
		return exitUsage
	}

	if err := logger.InitWith(stderr, logger.FormatText); err != nil {
		fmt.Fprintln(stderr, "rank:", err)
		return exitError
	}
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	rep, err := rank(ctx, opts)
	if err != nil {
		fmt.Fprintln(stderr, "rank:", err)
		return exitError
	}
	if err := write(stdout, opts.format, rep); err != nil {
		fmt.Fprintln(stderr, "rank:", err)
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		games     = fs.String("games", "", "Comma separated winner/loser CSV files, combined in order")
		teams     = fs.String("teams", "", "Only print teams listed in this file, one per line")
		normalize = fs.Bool("normalize", true, "Rescale scores so the top team is 1 and the bottom team 0")
		top       = fs.Int("top", 0, "Print only the first N teams (0 prints all)")
		versus    = fs.String("versus", "", "Compare two teams, given as a,b")
		policy    = fs.String("policy", graph.Collapse.String(), "Edge policy for repeated matchups: collapse or accumulate")
		damping   = fs.Float64("damping", pagerank.DefaultDamping, "PageRank damping factor")
		tolerance = fs.Float64("tolerance", pagerank.DefaultTolerance, "PageRank per-team tolerance")
		maxIter   = fs.Int("max-iter", pagerank.DefaultMaxIterations, "PageRank iteration cap")
		format    = fs.String("format", formatText, "Output format: text, json or yaml")
		verbose   = fs.Bool("verbose", false, "Log ranking details to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &options{
		teams:     *teams,
		normalize: *normalize,
		top:       *top,
		damping:   *damping,
		tolerance: *tolerance,
		maxIter:   *maxIter,
		format:    strings.ToLower(*format),
		verbose:   *verbose,
	}
	for _, p := range strings.Split(*games, ",") {
		if p = strings.TrimSpace(p); p != "" {
			opts.games = append(opts.games, p)
		}
	}
	if len(opts.games) == 0 {
		return nil, errors.New("-games is required")
	}
	if opts.top < 0 {
		return nil, errors.New("-top must not be negative")
	}
	if *versus != "" {
		pair := strings.Split(*versus, ",")
		if len(pair) != 2 || team.Normalize(pair[0]) == "" || team.Normalize(pair[1]) == "" {
			return nil, fmt.Errorf("-versus wants two teams as a,b, got %q", *versus)
		}
		opts.versus = []string{team.Normalize(pair[0]), team.Normalize(pair[1])}
	}
	p, err := graph.ParseEdgePolicy(*policy)
	if err != nil {
		return nil, err
	}
	opts.policy = p
	switch opts.format {
	case formatText, formatJSON, formatYAML:
	default:
		return nil, fmt.Errorf("unknown format %q", *format)
	}
	return opts, nil
}

// rank reads the outcome logs and builds the report.
func rank(ctx context.Context, opts *options) (*report, error) {
	log, stats, err := outcomelog.Combine(ctx, opts.games...)
	if err != nil {
		return nil, err
	}

	e, err := ranking.New(ctx, log,
		ranking.WithEdgePolicy(opts.policy),
		ranking.WithDamping(opts.damping),
		ranking.WithTolerance(opts.tolerance),
		ranking.WithMaxIterations(opts.maxIter),
		ranking.WithLogger(logger.Named("ranking")),
	)
	if err != nil {
		return nil, err
	}

	rep := &report{
		Teams:      e.Len(),
		Games:      e.Games(),
		Discarded:  stats.Discarded(),
		Iterations: e.Iterations(),
		Policy:     e.Policy().String(),
		Normalized: opts.normalize,
		Rankings:   e.Ranks(opts.normalize),
	}

	if opts.teams != "" {
		listed, err := outcomelog.ReadTeams(ctx, opts.teams)
		if err != nil {
			return nil, err
		}
		rep.Rankings, rep.Missing = filter(rep.Rankings, listed)
	}
	if opts.top > 0 && opts.top < len(rep.Rankings) {
		rep.Rankings = rep.Rankings[:opts.top]
	}

	if len(opts.versus) == 2 {
		a, b := opts.versus[0], opts.versus[1]
		rep.Versus = &matchup{A: a, B: b, ScoreA: e.Rank(a), ScoreB: e.Rank(b), Winner: e.Versus(a, b)}
	}
	return rep, nil
}

// filter keeps the entries for listed teams, in ranking order, and returns
// the listed teams that have no ranking.
func filter(entries []ranking.Entry, listed []string) ([]ranking.Entry, []string) {
	want := make(map[string]bool, len(listed))
	for _, t := range listed {
		want[t] = false
	}
	kept := make([]ranking.Entry, 0, len(listed))
	for _, e := range entries {
		if _, ok := want[e.Team]; ok {
			want[e.Team] = true
			kept = append(kept, e)
		}
	}
	var missing []string
	for _, t := range listed {
		if !want[t] {
			missing = append(missing, t)
			want[t] = true
		}
	}
	return kept, missing
}

func write(w io.Writer, format string, rep *report) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	}

	if rep.Versus != nil {
		_, err := fmt.Fprintf(w, "%s vs %s: %s\n", rep.Versus.A, rep.Versus.B, rep.Versus.Winner)
		return err
	}
	for _, e := range rep.Rankings {
		if _, err := fmt.Fprintf(w, "%s: %.6f\n", e.Team, e.Score); err != nil {
			return err
		}
	}
	return nil
}
