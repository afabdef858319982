package api

import "golang.org/x/time/rate"

// Option configures the API server.
type Option func(*Server)

// WithMaxLeaderboardLimit caps the limit parameter accepted by the
// leaderboard route.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLeaderboardLimit = n
		}
	}
}

// WithRateLimit enables the token-bucket limiter on mutating routes.
// An rps at or below zero leaves the limiter disabled.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}
