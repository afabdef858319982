// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/vouch/internal/domain/model"
	"golang.org/x/time/rate"
)

// defaultMaxLeaderboardLimit caps the leaderboard limit parameter when no
// option overrides it.
const defaultMaxLeaderboardLimit = 100

// callerHeader carries the authenticated caller identity, injected by the
// fronting auth proxy. Request bodies never override it.
const callerHeader = "X-Caller-ID"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service behind it.
type Dependencies interface {
	TalentDependencies
	SkillDependencies
	EndorsementDependencies
	ProjectDependencies
	AnalyticsDependencies
	LeaderboardDependencies
	RankDependencies
	CounterDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = model.RankEntry

// Server wires HTTP routes for the business API.
type Server struct {
	maxLeaderboardLimit int
	limiter             *rate.Limiter

	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	talentsHandler      *TalentsHandler
	skillsHandler       *SkillsHandler
	endorsementsHandler *EndorsementsHandler
	projectsHandler     *ProjectsHandler
	analyticsHandler    *AnalyticsHandler
	leaderboardHandler  *LeaderboardHandler
	rankHandler         *RankHandler
	countersHandler     *CountersHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxLeaderboardLimit: defaultMaxLeaderboardLimit}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.talentsHandler = NewTalentsHandler(deps)
	s.skillsHandler = NewSkillsHandler(deps)
	s.endorsementsHandler = NewEndorsementsHandler(deps)
	s.projectsHandler = NewProjectsHandler(deps)
	s.analyticsHandler = NewAnalyticsHandler(deps)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLeaderboardLimit)
	s.rankHandler = NewRankHandler(deps)
	s.countersHandler = NewCountersHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux. Mutating routes go through the
// rate limiter when one is configured.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/counters", MetricsMiddleware(s.countersHandler.HandleGetCounters, "counters"))
	mux.HandleFunc("/talents", MetricsMiddleware(s.limited(s.talentsHandler.HandleCreateTalent), "talents"))
	mux.HandleFunc("/talents/", MetricsMiddleware(s.talentsHandler.HandleGetTalent, "talents"))
	mux.HandleFunc("/skills", MetricsMiddleware(s.limited(s.skillsHandler.HandleAddSkill), "skills"))
	mux.HandleFunc("/skills/", MetricsMiddleware(s.skillsHandler.HandleGetSkill, "skills"))
	mux.HandleFunc("/endorsements", MetricsMiddleware(s.limited(s.endorsementsHandler.HandleEndorseSkill), "endorsements"))
	mux.HandleFunc("/endorsements/", MetricsMiddleware(s.endorsementsHandler.HandleGetEndorsement, "endorsements"))
	mux.HandleFunc("/projects", MetricsMiddleware(s.limited(s.projectsHandler.HandleAddProject), "projects"))
	mux.HandleFunc("/projects/", MetricsMiddleware(s.projectsHandler.HandleGetProject, "projects"))
	mux.HandleFunc("/verifications", MetricsMiddleware(s.limited(s.projectsHandler.HandleVerifyProject), "verifications"))
	mux.HandleFunc("/analytics/", MetricsMiddleware(s.analyticsHandler.HandleGetAnalytics, "analytics"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

// limited applies the mutation rate limiter when one is configured.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return RateLimitMiddleware(s.limiter, next)
}

// callerID extracts the authenticated caller identity from the request.
func callerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(callerHeader))
}

// pathParts splits the path remainder after prefix into its segments.
func pathParts(r *http.Request, prefix string) []string {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates err into its HTTP status and writes the
// error payload.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, Wrap(op, err))
}
