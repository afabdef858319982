package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/vouch/pkg/logger"
)

// Run executes the complete scenario: it drives a planned population
// through the service and then checks every profile, the leaderboard,
// and the global counters against the locally derived expectations.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid scenario config: %w", err)
	}

	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting vouch scenario",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("talents", cfg.Talents),
		logger.Int("endorsers", cfg.Endorsers),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Int("topN", cfg.TopN))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, cfg); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Build the population plan
	population := buildPopulation(ctx, cfg)

	// Step 3: Register every participant
	if err := registerAll(ctx, cfg, population, stats); err != nil {
		return fmt.Errorf("registration phase failed: %w", err)
	}

	// Step 4: Record projects; completed projects put every participant
	// above the endorsement reputation floor before the ring starts.
	if err := recordProjects(ctx, cfg, population, stats); err != nil {
		return fmt.Errorf("project phase failed: %w", err)
	}

	// Step 5: Claim skills
	if err := claimSkills(ctx, cfg, population, stats); err != nil {
		return fmt.Errorf("skill phase failed: %w", err)
	}

	// Step 6: Endorse around the ring
	if err := endorseRing(ctx, cfg, population, stats); err != nil {
		return fmt.Errorf("endorsement phase failed: %w", err)
	}

	// Step 7: Verify each participant's first project
	if err := verifyRing(ctx, cfg, population, stats); err != nil {
		return fmt.Errorf("verification phase failed: %w", err)
	}

	// Step 8: Check reported state against the local model
	if err := verifyProfiles(ctx, cfg, population, stats); err != nil {
		return fmt.Errorf("profile verification failed: %w", err)
	}
	if err := verifyLeaderboard(ctx, cfg, population, stats); err != nil {
		return fmt.Errorf("leaderboard verification failed: %w", err)
	}
	if err := verifyCounters(ctx, cfg, population); err != nil {
		return fmt.Errorf("counter verification failed: %w", err)
	}
	if err := verifyAnalyticsSample(ctx, cfg, population); err != nil {
		return fmt.Errorf("analytics verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.Divergences > 0 {
		return fmt.Errorf("scenario diverged in %d places", stats.Divergences)
	}

	logger.Get().Info(ctx, "scenario completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(cfg.Timeout)

	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}

	// Any 200 counts as healthy; the body is a Prometheus exposition.
	if resp.StatusCode != 200 {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// registerAll submits one registration per participant.
func registerAll(ctx context.Context, cfg *Config, population []participant, stats *Stats) error {
	mutations := make([]mutation, len(population))
	for i, p := range population {
		mutations[i] = mutation{
			Caller: p.ID,
			Path:   "/talents",
			Payload: map[string]string{
				"username": p.Username,
				"bio":      p.Bio,
			},
		}
	}

	ok, rejected, failed := executeMutations(ctx, cfg, "registration", mutations)
	stats.TalentsRegistered = ok
	stats.Rejected += rejected
	stats.Failed += failed

	if ok != len(mutations) {
		return fmt.Errorf("registered %d of %d talents", ok, len(mutations))
	}
	return nil
}

// recordProjects submits every planned project.
func recordProjects(ctx context.Context, cfg *Config, population []participant, stats *Stats) error {
	var mutations []mutation
	for _, p := range population {
		for _, project := range p.Projects {
			mutations = append(mutations, mutation{
				Caller:  p.ID,
				Path:    "/projects",
				Payload: project,
			})
		}
	}

	ok, rejected, failed := executeMutations(ctx, cfg, "projects", mutations)
	stats.ProjectsRecorded = ok
	stats.Rejected += rejected
	stats.Failed += failed

	if ok != len(mutations) {
		return fmt.Errorf("recorded %d of %d projects", ok, len(mutations))
	}
	return nil
}

// claimSkills submits every planned skill claim.
func claimSkills(ctx context.Context, cfg *Config, population []participant, stats *Stats) error {
	var mutations []mutation
	for _, p := range population {
		for _, skill := range p.Skills {
			mutations = append(mutations, mutation{
				Caller:  p.ID,
				Path:    "/skills",
				Payload: skill,
			})
		}
	}

	ok, rejected, failed := executeMutations(ctx, cfg, "skills", mutations)
	stats.SkillsClaimed = ok
	stats.Rejected += rejected
	stats.Failed += failed

	if ok != len(mutations) {
		return fmt.Errorf("claimed %d of %d skills", ok, len(mutations))
	}
	return nil
}

// endorseRing has the cfg.Endorsers successors of each participant endorse
// that participant's first skill. Every directed pair is unique, nobody
// endorses themselves, and each participant ends up with exactly
// cfg.Endorsers endorsements.
func endorseRing(ctx context.Context, cfg *Config, population []participant, stats *Stats) error {
	n := len(population)
	var mutations []mutation
	for i, target := range population {
		for j := 1; j <= cfg.Endorsers; j++ {
			endorser := population[(i+j)%n]
			mutations = append(mutations, mutation{
				Caller: endorser.ID,
				Path:   "/endorsements",
				Payload: map[string]interface{}{
					"talent_id": target.ID,
					"skill_id":  1,
					"strength":  1 + (i+j)%5,
					"comment":   fmt.Sprintf("worked with %s", target.Username),
				},
			})
		}
	}

	ok, rejected, failed := executeMutations(ctx, cfg, "endorsements", mutations)
	stats.Endorsements = ok
	stats.Rejected += rejected
	stats.Failed += failed

	if ok != len(mutations) {
		return fmt.Errorf("applied %d of %d endorsements", ok, len(mutations))
	}
	return nil
}

// verifyRing has each participant's successor verify their first project.
func verifyRing(ctx context.Context, cfg *Config, population []participant, stats *Stats) error {
	n := len(population)
	mutations := make([]mutation, n)
	for i, target := range population {
		verifier := population[(i+1)%n]
		mutations[i] = mutation{
			Caller: verifier.ID,
			Path:   "/verifications",
			Payload: map[string]interface{}{
				"talent_id":  target.ID,
				"project_id": 1,
			},
		}
	}

	ok, rejected, failed := executeMutations(ctx, cfg, "verifications", mutations)
	stats.Verifications = ok
	stats.Rejected += rejected
	stats.Failed += failed

	if ok != len(mutations) {
		return fmt.Errorf("verified %d of %d projects", ok, len(mutations))
	}
	return nil
}
