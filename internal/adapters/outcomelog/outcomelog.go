// Package outcomelog reads game results from CSV files into an outcome.Log.
//
// A results file has a header row naming at least a winner and a loser
// column. Column order does not matter and other columns are ignored.
package outcomelog

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/courtrank/internal/domain/outcome"
	"github.com/okian/courtrank/internal/domain/team"
)

const (
	winnerColumn = "winner"
	loserColumn  = "loser"

	// Per-team schedule exports repeat their header mid-file; those rows name
	// an "opponent" column instead of a team.
	headerMarker = "opponent"
)

// Stats describes what Read did with each data row.
type Stats struct {
	Rows       int `json:"rows"`
	Games      int `json:"games"`
	Incomplete int `json:"incomplete"`
	Headers    int `json:"headers"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Rows += other.Rows
	s.Games += other.Games
	s.Incomplete += other.Incomplete
	s.Headers += other.Headers
}

// Discarded returns the number of rows that did not become games.
func (s Stats) Discarded() int {
	return s.Incomplete + s.Headers
}

// Read parses a results CSV from r. Team names are normalized. Rows missing a
// winner or loser are dropped and counted, as are repeated header rows.
// Only a missing header or column, or a malformed CSV stream, is an error.
func Read(ctx context.Context, r io.Reader) (outcome.Log, Stats, error) {
	var stats Stats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	wi, li := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case winnerColumn:
			wi = i
		case loserColumn:
			li = i
		}
	}
	if wi < 0 {
		return nil, stats, fmt.Errorf("%w: %q", ErrMissingColumn, winnerColumn)
	}
	if li < 0 {
		return nil, stats, fmt.Errorf("%w: %q", ErrMissingColumn, loserColumn)
	}

	var log outcome.Log
	for {
		if stats.Rows%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		stats.Rows++

		o := outcome.Outcome{
			Winner: team.Normalize(field(row, wi)),
			Loser:  team.Normalize(field(row, li)),
		}
		switch {
		case o.Winner == winnerColumn && o.Loser == loserColumn,
			strings.Contains(o.Winner, headerMarker) || strings.Contains(o.Loser, headerMarker):
			stats.Headers++
		case !o.Complete():
			stats.Incomplete++
		default:
			stats.Games++
			log = append(log, o)
		}
	}
	return log, stats, nil
}

// ReadFile reads a single results file.
func ReadFile(ctx context.Context, path string) (outcome.Log, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open results %s: %w", path, err)
	}
	defer f.Close()

	log, stats, err := Read(ctx, f)
	if err != nil {
		return nil, stats, fmt.Errorf("read results %s: %w", path, err)
	}
	return log, stats, nil
}

// Combine reads every path concurrently and concatenates the logs in the
// order the paths were given. The first failure cancels the rest.
func Combine(ctx context.Context, paths ...string) (outcome.Log, Stats, error) {
	logs := make([]outcome.Log, len(paths))
	stats := make([]Stats, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			l, s, err := ReadFile(gctx, p)
			if err != nil {
				return err
			}
			logs[i], stats[i] = l, s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	var (
		combined outcome.Log
		total    Stats
	)
	for i := range paths {
		combined = append(combined, logs[i]...)
		total.Add(stats[i])
	}
	return combined, total, nil
}

// ReadTeams reads a team list with one name per line. Blank lines are
// skipped and names are normalized.
func ReadTeams(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open teams %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line := strings.TrimSpace(sc.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read teams %s: %w", path, err)
	}
	return team.NormalizeAll(names), nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
