package scenario

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/vouch/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "scenario_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the scenario tool.
func ShowHelp() {
	os.Stdout.WriteString(`Vouch Scenario Driver
=====================

Drives a planned population of talents through a running vouch service,
then checks every profile, the leaderboard, the global counters, and a
sample of analytics reports against locally derived expectations.

Usage:
  go run cmd/scenario/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -talents int
        Number of talents to register (default 200)
  -endorsers int
        Endorsements each talent receives on its first skill (default 3)
  -projects int
        Projects per talent cycle through 1..N (default 3)
  -top int
        Number of top entries to verify on the leaderboard (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -sample int
        Number of talents to spot-check analytics for (default 10)
  -log string
        Log file for scenario output (default: scenario_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run cmd/scenario/main.go

  # Drive a bigger population with more workers
  go run cmd/scenario/main.go -talents 5000 -workers 16

  # Point at a different instance
  go run cmd/scenario/main.go -url http://localhost:8080 -talents 100
`)
}
