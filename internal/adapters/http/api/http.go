// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/courtrank/internal/domain/dedupe"
	"github.com/okian/courtrank/internal/domain/ranking"
	"github.com/okian/courtrank/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	GameDependencies
	RankingsDependencies
	RankDependencies
	VersusDependencies
	RebuildDependencies
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = ranking.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	gamesHandler    *GamesHandler
	rankingsHandler *RankingsHandler
	rankHandler     *RankHandler
	versusHandler   *VersusHandler
	rebuildHandler  *RebuildHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// rankings page size.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		gamesHandler:    NewGamesHandler(deps),
		rankingsHandler: NewRankingsHandler(deps, maxLimit),
		rankHandler:     NewRankHandler(deps),
		versusHandler:   NewVersusHandler(deps),
		rebuildHandler:  NewRebuildHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/games", MetricsMiddleware(s.gamesHandler.HandlePostGame, "games"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/versus", MetricsMiddleware(s.versusHandler.HandleGetVersus, "versus"))
	mux.HandleFunc("/rebuild", MetricsMiddleware(s.rebuildHandler.HandlePostRebuild, "rebuild"))
}

// gameRequest mirrors the OpenAPI schema for POST /games.
type gameRequest struct {
	GameID string `json:"game_id"`
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	TS     string `json:"ts"`
}

func (g gameRequest) validate() error {
	switch {
	case strings.TrimSpace(g.Winner) == "":
		return errors.New("missing winner")
	case strings.TrimSpace(g.Loser) == "":
		return errors.New("missing loser")
	}
	if g.TS != "" {
		if _, err := time.Parse(time.RFC3339, g.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	GameID    string `json:"game_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Deduper is the idempotency contract of POST /games.
type Deduper = dedupe.Deduper

// Matchup is the GET /versus response.
type Matchup = types.Matchup

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorCoder is implemented by writers that track the API error code, such as
// the metrics middleware's recorder.
type errorCoder interface {
	setErrorCode(code string)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	if ec, ok := w.(errorCoder); ok {
		ec.setErrorCode(code)
	}
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
