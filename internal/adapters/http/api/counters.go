// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/vouch/internal/domain/model"
)

// CounterDependencies defines the interface for global counter reads.
type CounterDependencies interface {
	Counters(ctx context.Context) model.GlobalCounters
}

// CountersHandler handles global counter requests.
type CountersHandler struct {
	deps CounterDependencies
}

// NewCountersHandler creates a new counters handler.
func NewCountersHandler(deps CounterDependencies) *CountersHandler {
	return &CountersHandler{deps: deps}
}

// HandleGetCounters handles GET /counters requests.
func (h *CountersHandler) HandleGetCounters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Counters(r.Context()))
}
