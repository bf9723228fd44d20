package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/courtrank/pkg/logger"
)

// HTTPClient wraps http.Client for the service API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// do sends a request and decodes a JSON response into out when out is not
// nil. It returns the status code.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// get fetches path and requires a 200.
func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	status, err := c.do(ctx, http.MethodGet, path, nil, out)
	if err != nil {
		return err
	}
	if status != StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", path, status)
	}
	return nil
}

type submitResult int

const (
	resultAccepted submitResult = iota
	resultDuplicate
	resultRejected
	resultFailed
)

// submitGames posts every game with at most cfg.Workers requests in flight.
func submitGames(ctx context.Context, cfg *Config, client *HTTPClient, games []Game, stats *Stats) error {
	logger.Get().Info(ctx, "submitting games", logger.Int("games", len(games)), logger.Int("workers", cfg.Workers))

	var accepted, duplicate, rejected, failed, submitted atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, game := range games {
		g.Go(func() error {
			switch submitSingleGame(gctx, client, game) {
			case resultAccepted:
				accepted.Add(1)
			case resultDuplicate:
				duplicate.Add(1)
			case resultRejected:
				rejected.Add(1)
			default:
				failed.Add(1)
			}
			if n := submitted.Add(1); cfg.Verbose && n%1000 == 0 {
				logger.Get().Debug(gctx, "submission progress", logger.Int64("submitted", n))
			}
			return gctx.Err()
		})
	}
	err := g.Wait()

	stats.GamesSubmitted = int(submitted.Load())
	stats.GamesAccepted = int(accepted.Load())
	stats.GamesDuplicate = int(duplicate.Load())
	stats.GamesRejected = int(rejected.Load())
	stats.GamesFailed = int(failed.Load())

	logger.Get().Info(ctx, "game submission completed",
		logger.Int("accepted", stats.GamesAccepted),
		logger.Int("duplicate", stats.GamesDuplicate),
		logger.Int("rejected", stats.GamesRejected),
		logger.Int("failed", stats.GamesFailed),
	)
	if err != nil {
		return fmt.Errorf("submission interrupted: %w", err)
	}
	return nil
}

// submitSingleGame posts one game, retrying while the service applies
// backpressure.
func submitSingleGame(ctx context.Context, client *HTTPClient, game Game) submitResult {
	for attempt := 0; attempt < maxSubmitAttempts; attempt++ {
		var ack AckResponse
		status, err := client.do(ctx, http.MethodPost, "/games", game, &ack)
		if err != nil {
			return resultFailed
		}
		switch status {
		case StatusAccepted:
			return resultAccepted
		case StatusOK:
			return resultDuplicate
		case StatusTooManyRequests:
			select {
			case <-ctx.Done():
				return resultFailed
			case <-time.After(backpressureDelay * time.Duration(attempt+1)):
			}
		default:
			return resultFailed
		}
	}
	return resultRejected
}

// fetchRankings reads the top n entries.
func fetchRankings(ctx context.Context, client *HTTPClient, n int) ([]Entry, error) {
	var entries []Entry
	if err := client.get(ctx, fmt.Sprintf("/rankings?limit=%d", n), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// fetchRanks reads /rank/{team} for every team concurrently.
func fetchRanks(ctx context.Context, cfg *Config, client *HTTPClient, teams []string) (map[string]Entry, error) {
	out := make([]Entry, len(teams))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, t := range teams {
		g.Go(func() error {
			return client.get(gctx, "/rank/"+url.PathEscape(t), &out[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ranks := make(map[string]Entry, len(out))
	for _, e := range out {
		ranks[e.Team] = e
	}
	return ranks, nil
}

// fetchVersus compares two teams.
func fetchVersus(ctx context.Context, client *HTTPClient, a, b string) (Matchup, error) {
	var m Matchup
	q := url.Values{"a": {a}, "b": {b}}
	err := client.get(ctx, "/versus?"+q.Encode(), &m)
	return m, err
}
