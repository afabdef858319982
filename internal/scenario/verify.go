package scenario

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// verifyProfiles fetches every profile concurrently and compares it field
// by field with the locally derived expectation. Mismatches are logged and
// counted; only transport failures abort the phase.
func verifyProfiles(ctx context.Context, cfg *Config, population []participant, stats *Stats) error {
	log.Printf("🔍 Verifying %d profiles with %d workers...", len(population), cfg.Workers)

	client := newHTTPClient(cfg.Timeout)

	var (
		checked    int64
		divergence int64
		failed     int64
	)

	workers := cfg.Workers
	if workers > len(population) {
		workers = len(population)
	}

	indexChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					p := population[index]
					var got profileResponse
					if err := getJSON(ctx, client, cfg.BaseURL+"/talents/"+p.ID, &got); err != nil {
						log.Printf("⚠️  failed to fetch profile %s: %v", p.ID, err)
						atomic.AddInt64(&failed, 1)
						continue
					}

					want := expectedProfile(cfg, p)
					if diffs := diffProfiles(want, got); len(diffs) > 0 {
						atomic.AddInt64(&divergence, int64(len(diffs)))
						for _, d := range diffs {
							log.Printf("❌ %s: %s", p.Username, d)
						}
					}
					atomic.AddInt64(&checked, 1)
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range population {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.ProfilesChecked = int(atomic.LoadInt64(&checked))
	stats.Divergences += int(atomic.LoadInt64(&divergence))

	if f := atomic.LoadInt64(&failed); f > 0 {
		return fmt.Errorf("failed to fetch %d profiles", f)
	}

	log.Printf("✅ Profile verification completed: %d checked, %d divergences",
		stats.ProfilesChecked, int(atomic.LoadInt64(&divergence)))
	return nil
}

// diffProfiles reports every field where got deviates from want.
func diffProfiles(want, got profileResponse) []string {
	var diffs []string
	if got.Username != want.Username {
		diffs = append(diffs, fmt.Sprintf("username: want %q, got %q", want.Username, got.Username))
	}
	if got.ReputationScore != want.ReputationScore {
		diffs = append(diffs, fmt.Sprintf("reputation_score: want %d, got %d", want.ReputationScore, got.ReputationScore))
	}
	if got.TotalEndorsements != want.TotalEndorsements {
		diffs = append(diffs, fmt.Sprintf("total_endorsements: want %d, got %d", want.TotalEndorsements, got.TotalEndorsements))
	}
	if got.VerifiedSkillsCount != want.VerifiedSkillsCount {
		diffs = append(diffs, fmt.Sprintf("verified_skills_count: want %d, got %d", want.VerifiedSkillsCount, got.VerifiedSkillsCount))
	}
	if got.ProjectsCompleted != want.ProjectsCompleted {
		diffs = append(diffs, fmt.Sprintf("projects_completed: want %d, got %d", want.ProjectsCompleted, got.ProjectsCompleted))
	}
	if !got.Active {
		diffs = append(diffs, "active: want true, got false")
	}
	return diffs
}

// verifyLeaderboard checks ordering, rank assignment, and that every
// reported score matches the local model.
func verifyLeaderboard(ctx context.Context, cfg *Config, population []participant, stats *Stats) error {
	limit := cfg.TopN
	if limit > len(population) {
		limit = len(population)
	}
	log.Printf("🥇 Verifying top %d leaderboard entries...", limit)

	client := newHTTPClient(cfg.Timeout)

	var entries []rankEntry
	url := fmt.Sprintf("%s/leaderboard?limit=%d", cfg.BaseURL, limit)
	if err := getJSON(ctx, client, url, &entries); err != nil {
		return err
	}

	stats.LeaderboardEntries = len(entries)

	if len(entries) != limit {
		stats.Divergences++
		log.Printf("❌ leaderboard: want %d entries, got %d", limit, len(entries))
	}

	expectedScores := make(map[string]int, len(population))
	for _, p := range population {
		expectedScores[p.ID] = expectedProfile(cfg, p).ReputationScore
	}

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		if entry.Rank != i+1 {
			stats.Divergences++
			log.Printf("❌ leaderboard[%d]: want rank %d, got %d", i, i+1, entry.Rank)
		}
		if i > 0 && entry.Score > entries[i-1].Score {
			stats.Divergences++
			log.Printf("❌ leaderboard[%d]: score %d above predecessor %d", i, entry.Score, entries[i-1].Score)
		}
		if seen[entry.TalentID] {
			stats.Divergences++
			log.Printf("❌ leaderboard[%d]: duplicate talent %s", i, entry.TalentID)
		}
		seen[entry.TalentID] = true

		want, known := expectedScores[entry.TalentID]
		if !known {
			stats.Divergences++
			log.Printf("❌ leaderboard[%d]: unknown talent %s", i, entry.TalentID)
			continue
		}
		if entry.Score != want {
			stats.Divergences++
			log.Printf("❌ leaderboard[%d]: talent %s score want %d, got %d", i, entry.TalentID, want, entry.Score)
		}
	}

	log.Printf("✅ Leaderboard verification completed: %d entries", len(entries))
	return nil
}

// verifyCounters compares the global counter triple with the plan.
func verifyCounters(ctx context.Context, cfg *Config, population []participant) error {
	log.Println("🔢 Verifying global counters...")

	client := newHTTPClient(cfg.Timeout)

	var got countersResponse
	if err := getJSON(ctx, client, cfg.BaseURL+"/counters", &got); err != nil {
		return err
	}

	want := expectedCounters(cfg, population)
	if got != want {
		return fmt.Errorf("counters diverged: want %+v, got %+v", want, got)
	}

	log.Printf("✅ Counters verified: talents=%d skills=%d endorsements=%d",
		got.TotalTalents, got.TotalSkills, got.TotalEndorsements)
	return nil
}

// verifyAnalyticsSample spot-checks analytics reports for internal
// consistency: the overall score has to recompute from its components and
// the locally known reputation, and the tier has to match the overall.
func verifyAnalyticsSample(ctx context.Context, cfg *Config, population []participant) error {
	sample := cfg.AnalyticsSample
	if sample < 1 {
		return nil
	}
	if sample > len(population) {
		sample = len(population)
	}
	log.Printf("📈 Verifying analytics for %d talents...", sample)

	client := newHTTPClient(cfg.Timeout)

	for s := 0; s < sample; s++ {
		p := population[s*len(population)/sample]

		var report analyticsResponse
		if err := getJSON(ctx, client, cfg.BaseURL+"/analytics/"+p.ID, &report); err != nil {
			return fmt.Errorf("analytics for %s: %w", p.Username, err)
		}

		reputation := expectedProfile(cfg, p).ReputationScore

		ratio := report.EndorsementRatio
		if ratio > 100 {
			ratio = 100
		}
		overall := (reputation*30 +
			report.SkillDiversity*20 +
			ratio*25 +
			report.ProjectSuccessRate*15 +
			report.ActivityScore*10) / 100

		if report.OverallScore != overall {
			return fmt.Errorf("analytics for %s: overall_score want %d, got %d", p.Username, overall, report.OverallScore)
		}
		if report.ProjectSuccessRate != 100 {
			return fmt.Errorf("analytics for %s: project_success_rate want 100, got %d", p.Username, report.ProjectSuccessRate)
		}
		if tier := expectedTier(report.OverallScore); report.Tier != tier {
			return fmt.Errorf("analytics for %s: tier want %s, got %s", p.Username, tier, report.Tier)
		}
	}

	log.Printf("✅ Analytics verification completed: %d reports", sample)
	return nil
}

// expectedTier mirrors the service's tier thresholds.
func expectedTier(overall int) string {
	switch {
	case overall >= 800:
		return "Elite"
	case overall >= 600:
		return "Expert"
	case overall >= 400:
		return "Professional"
	case overall >= 200:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// displayFinalStats prints the final scenario statistics.
func displayFinalStats(stats *Stats) {
	var mutationsPerSecond float64
	mutations := stats.TalentsRegistered + stats.SkillsClaimed + stats.ProjectsRecorded +
		stats.Endorsements + stats.Verifications

	if stats.Duration > 0 {
		mutationsPerSecond = float64(mutations) / stats.Duration.Seconds()
	}

	log.Printf(`🏁 Scenario statistics:
   Talents registered: %d
   Skills claimed: %d
   Projects recorded: %d
   Endorsements: %d
   Verifications: %d
   Rejected: %d
   Failed: %d
   Profiles checked: %d
   Leaderboard entries: %d
   Divergences: %d
   Duration: %s
   Mutations/second: %.1f
`,
		stats.TalentsRegistered, stats.SkillsClaimed, stats.ProjectsRecorded,
		stats.Endorsements, stats.Verifications, stats.Rejected, stats.Failed,
		stats.ProfilesChecked, stats.LeaderboardEntries, stats.Divergences,
		stats.Duration, mutationsPerSecond)
}
