package scenario

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/vouch/pkg/logger"
)

// Reputation weights, kept in lockstep with the service so the scenario
// can predict every profile it drives.
const (
	endorsementWeight     = 10
	verifiedSkillWeight   = 25
	projectWeight         = 50
	maxReputation         = 1000
	verificationThreshold = 3
)

// skillNames seeds the claimed skills across the population.
var skillNames = []string{
	"go", "rust", "sql", "kubernetes", "react",
	"terraform", "postgres", "kafka", "grpc", "observability",
}

// skillClaim is one planned POST /skills call.
type skillClaim struct {
	SkillID          uint64 `json:"skill_id"`
	Name             string `json:"name"`
	ProficiencyLevel int    `json:"proficiency_level"`
	YearsExperience  int    `json:"years_experience"`
}

// projectRecord is one planned POST /projects call.
type projectRecord struct {
	ProjectID      uint64 `json:"project_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	DurationMonths int    `json:"duration_months"`
	Completed      bool   `json:"completed"`
	Rating         int    `json:"rating"`
}

// participant is one member of the planned population.
type participant struct {
	ID       string
	Username string
	Bio      string
	Skills   []skillClaim
	Projects []projectRecord
}

// buildPopulation lays out the whole plan up front: who registers, which
// skills and projects they record, so expected state is derivable before
// a single request is sent.
func buildPopulation(ctx context.Context, cfg *Config) []participant {
	logger.Get().Info(ctx, "building population plan",
		logger.Int("talents", cfg.Talents),
		logger.Int("endorsers", cfg.Endorsers),
		logger.Int("maxProjects", cfg.MaxProjects))

	population := make([]participant, cfg.Talents)
	for i := range population {
		p := participant{
			ID:       uuid.New().String(),
			Username: fmt.Sprintf("talent-%04d", i),
			Bio:      fmt.Sprintf("scenario participant %d", i),
		}

		skillCount := 1 + i%3
		for j := 0; j < skillCount; j++ {
			p.Skills = append(p.Skills, skillClaim{
				SkillID:          uint64(j + 1),
				Name:             skillNames[(i+j)%len(skillNames)],
				ProficiencyLevel: 1 + (i+j)%5,
				YearsExperience:  (i + j) % 10,
			})
		}

		projectCount := 1 + i%cfg.MaxProjects
		for j := 0; j < projectCount; j++ {
			p.Projects = append(p.Projects, projectRecord{
				ProjectID:      uint64(j + 1),
				Name:           fmt.Sprintf("project-%04d-%d", i, j+1),
				Role:           "contributor",
				DurationMonths: 3 + j,
				Completed:      true,
				Rating:         3 + (i+j)%3,
			})
		}

		population[i] = p
	}

	return population
}

// expectedProfile derives the profile the service must report for
// participant i once every phase has completed.
//
// Every participant receives cfg.Endorsers endorsements, all on skill 1,
// so exactly one skill crosses the verification threshold when the ring
// is wide enough.
func expectedProfile(cfg *Config, p participant) profileResponse {
	endorsements := cfg.Endorsers
	verified := 0
	if endorsements >= verificationThreshold {
		verified = 1
	}
	projects := len(p.Projects)

	score := endorsements*endorsementWeight +
		verified*verifiedSkillWeight +
		projects*projectWeight
	if score > maxReputation {
		score = maxReputation
	}

	return profileResponse{
		TalentID:            p.ID,
		Username:            p.Username,
		ReputationScore:     score,
		TotalEndorsements:   endorsements,
		VerifiedSkillsCount: verified,
		ProjectsCompleted:   projects,
		Active:              true,
	}
}

// expectedCounters derives the global counters for the completed plan.
func expectedCounters(cfg *Config, population []participant) countersResponse {
	skills := 0
	for _, p := range population {
		skills += len(p.Skills)
	}
	return countersResponse{
		TotalTalents:      len(population),
		TotalSkills:       skills,
		TotalEndorsements: len(population) * cfg.Endorsers,
	}
}
