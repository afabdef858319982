// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/vouch/internal/domain/analytics"
)

// AnalyticsDependencies defines the interface for analytics operations.
type AnalyticsDependencies interface {
	GenerateAnalytics(ctx context.Context, talentID string, skillIDs []uint64) (analytics.Report, error)
}

// AnalyticsHandler handles analytics report requests.
type AnalyticsHandler struct {
	deps AnalyticsDependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleGetAnalytics handles GET /analytics/{talent}?skills=1,2,3 requests.
func (h *AnalyticsHandler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analytics"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/analytics/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	skillIDs, err := parseSkillFilter(r.URL.Query().Get("skills"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	report, err := h.deps.GenerateAnalytics(r.Context(), id, skillIDs)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parseSkillFilter parses the optional comma-separated skills parameter.
// Size limits are enforced by the service, not here.
func parseSkillFilter(raw string) ([]uint64, error) {
	if raw == "" {
		return nil, nil
	}
	fields := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseUint(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
