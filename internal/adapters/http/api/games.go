package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/courtrank/internal/domain/model"
)

// GameDependencies defines what game submission needs.
type GameDependencies interface {
	Deduper
	Enqueue(ctx context.Context, g model.Game) bool
}

// GamesHandler handles game submissions.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandlePostGame handles POST /games requests.
func (h *GamesHandler) HandlePostGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_game"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.GameID == "" {
		req.GameID = uuid.NewString()
	}
	ts := time.Now().UTC()
	if req.TS != "" {
		ts, _ = time.Parse(time.RFC3339, req.TS)
	}

	if h.deps.SeenAndRecord(r.Context(), req.GameID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", GameID: req.GameID, Duplicate: true})
		return
	}

	game := model.Game{GameID: req.GameID, Winner: req.Winner, Loser: req.Loser, TS: ts}
	if ok := h.deps.Enqueue(r.Context(), game); !ok {
		h.deps.Unrecord(r.Context(), req.GameID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", GameID: req.GameID})
}
