// Package config defines service configuration and loading.
//
// Configuration layers, lowest precedence first: built-in defaults, an
// optional YAML file named by VOUCH_CONFIG, then VOUCH_-prefixed
// environment variables.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// TxQueueSize bounds the in-memory transaction queue. A full queue
	// turns submissions away instead of blocking them.
	TxQueueSize int `koanf:"tx_queue_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// JournalPath is the SQLite file accepted mutations are recorded
	// in. Empty disables journaling; the ledger is then memory-only.
	JournalPath string `koanf:"journal_path"`

	// RateLimitRPS and RateLimitBurst shape per-process request
	// admission. RPS at or below zero disables the limiter.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		TxQueueSize:         4096,
		MaxLeaderboardLimit: 100,
		JournalPath:         "",
		RateLimitRPS:        50,
		RateLimitBurst:      100,
	}
}
