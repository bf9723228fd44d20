package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/courtrank/internal/domain/team"
)

// VersusDependencies defines the interface for head-to-head comparisons.
type VersusDependencies interface {
	Versus(ctx context.Context, a, b string) Matchup
}

// VersusHandler handles head-to-head requests.
type VersusHandler struct {
	deps VersusDependencies
}

// NewVersusHandler creates a new versus handler.
func NewVersusHandler(deps VersusDependencies) *VersusHandler {
	return &VersusHandler{deps: deps}
}

// HandleGetVersus handles GET /versus?a=..&b=.. requests.
// Unknown teams score 0; equal scores favor b.
func (h *VersusHandler) HandleGetVersus(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_versus"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	a, b := team.Normalize(q.Get("a")), team.Normalize(q.Get("b"))
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("both a and b are required")))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Versus(r.Context(), a, b))
}
