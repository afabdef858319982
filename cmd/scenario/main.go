package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/vouch/internal/scenario"
)

// Default configuration constants.
const (
	defaultTalents     = 200
	defaultEndorsers   = 3
	defaultProjects    = 3
	defaultTopN        = 50
	defaultSample      = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunDeadline = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		talents   = flag.Int("talents", defaultTalents, "Number of talents to register")
		endorsers = flag.Int("endorsers", defaultEndorsers, "Endorsements each talent receives on its first skill")
		projects  = flag.Int("projects", defaultProjects, "Projects per talent cycle through 1..N")
		topN      = flag.Int("top", defaultTopN, "Number of top entries to verify on the leaderboard")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		sample    = flag.Int("sample", defaultSample, "Number of talents to spot-check analytics for")
		logFile   = flag.String("log", "", "Log file for scenario output (default: scenario_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		scenario.ShowHelp()
		return
	}

	// Setup logging
	if err := scenario.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Create context with deadline for the whole run
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunDeadline)
	defer cancel()

	// Create scenario configuration
	cfg := &scenario.Config{
		BaseURL:         *baseURL,
		Talents:         *talents,
		Endorsers:       *endorsers,
		MaxProjects:     *projects,
		TopN:            *topN,
		Workers:         *workers,
		Timeout:         *timeout,
		AnalyticsSample: *sample,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	// Run the scenario
	if err := scenario.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Scenario failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
