package scenario

import (
	"fmt"
	"time"
)

// Config holds configuration for the scenario run
type Config struct {
	BaseURL         string        // Base URL of the service
	Talents         int           // Number of talents to register
	Endorsers       int           // Endorsements each talent receives on its first skill
	MaxProjects     int           // Projects per talent cycle through 1..MaxProjects
	TopN            int           // Number of top entries to fetch
	Workers         int           // Number of concurrent workers
	Timeout         time.Duration // HTTP request timeout
	AnalyticsSample int           // Number of talents to spot-check analytics for
	LogFile         string        // Log file for scenario output
	Verbose         bool          // Enable verbose logging
}

// validate rejects plans that cannot run to completion.
func (c *Config) validate() error {
	if c.Talents < 2 {
		return fmt.Errorf("talents must be at least 2, got %d", c.Talents)
	}
	if c.Endorsers < 1 || c.Endorsers >= c.Talents {
		return fmt.Errorf("endorsers must be in [1, talents), got %d", c.Endorsers)
	}
	if c.MaxProjects < 1 {
		return fmt.Errorf("projects must be at least 1, got %d", c.MaxProjects)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top must be at least 1, got %d", c.TopN)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Wire shapes, mirrored from the service API.

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type profileResponse struct {
	TalentID            string `json:"talent_id"`
	Username            string `json:"username"`
	ReputationScore     int    `json:"reputation_score"`
	TotalEndorsements   int    `json:"total_endorsements"`
	VerifiedSkillsCount int    `json:"verified_skills_count"`
	ProjectsCompleted   int    `json:"projects_completed"`
	Active              bool   `json:"active"`
}

type rankEntry struct {
	TalentID string `json:"talent_id"`
	Rank     int    `json:"rank"`
	Score    int    `json:"score"`
}

type countersResponse struct {
	TotalTalents      int `json:"total_talents"`
	TotalSkills       int `json:"total_skills"`
	TotalEndorsements int `json:"total_endorsements"`
}

type analyticsResponse struct {
	TalentID           string `json:"talent_id"`
	SkillDiversity     int    `json:"skill_diversity"`
	EndorsementRatio   int    `json:"endorsement_ratio"`
	ProjectSuccessRate int    `json:"project_success_rate"`
	ActivityScore      int    `json:"activity_score"`
	OverallScore       int    `json:"overall_score"`
	Tier               string `json:"tier"`
}

// Stats holds scenario statistics
type Stats struct {
	TalentsRegistered  int
	SkillsClaimed      int
	ProjectsRecorded   int
	Endorsements       int
	Verifications      int
	Rejected           int
	Failed             int
	ProfilesChecked    int
	Divergences        int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
