package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// RankingsDependencies defines the interface for ranking listings.
type RankingsDependencies interface {
	Rankings(ctx context.Context, n int, normalize bool) ([]Entry, error)
}

// RankingsHandler handles ranking listings.
type RankingsHandler struct {
	deps     RankingsDependencies
	maxLimit int
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies, maxLimit int) *RankingsHandler {
	return &RankingsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRankings handles GET /rankings?limit=N&normalize=B requests.
// Without a limit the first maxLimit teams are returned.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	n := h.maxLimit
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid limit %q", s)))
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded",
				WrapKind(op, ErrBadRequest, fmt.Errorf("limit %d exceeds %d", v, h.maxLimit)))
			return
		}
		n = v
	}

	normalize := false
	if s := q.Get("normalize"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("normalize must be a boolean")))
			return
		}
		normalize = v
	}

	entries, err := h.deps.Rankings(r.Context(), n, normalize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
