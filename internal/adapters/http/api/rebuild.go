package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/courtrank/internal/domain/pagerank"
	"github.com/okian/courtrank/internal/domain/types"
)

// RebuildDependencies defines the interface for forced rebuilds.
type RebuildDependencies interface {
	Rebuild(ctx context.Context) (types.Summary, error)
}

// RebuildHandler handles forced rebuild requests.
type RebuildHandler struct {
	deps RebuildDependencies
}

// NewRebuildHandler creates a new rebuild handler.
func NewRebuildHandler(deps RebuildDependencies) *RebuildHandler {
	return &RebuildHandler{deps: deps}
}

// HandlePostRebuild handles POST /rebuild requests. It ranks every stored
// game synchronously and returns the published summary.
func (h *RebuildHandler) HandlePostRebuild(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_rebuild"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.Rebuild(r.Context())
	if err != nil {
		code := "internal_error"
		if errors.Is(err, pagerank.ErrNotConverged) {
			code = "not_converged"
		}
		writeError(w, http.StatusInternalServerError, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
