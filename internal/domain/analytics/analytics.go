// Package analytics builds multi-factor talent reports from profile
// snapshots. Report generation is read-only and side-effect-free.
package analytics

import (
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/reputation"
)

// MaxSkillFilter bounds the skill-id filter a report request may carry.
// The filter is accepted and echoed but not yet used by any metric;
// reserved for a per-skill breakdown.
const MaxSkillFilter = 10

// Tier labels a talent's overall analytics score.
type Tier string

// Tiers in descending order of overall score.
const (
	TierElite        Tier = "Elite"
	TierExpert       Tier = "Expert"
	TierProfessional Tier = "Professional"
	TierIntermediate Tier = "Intermediate"
	TierBeginner     Tier = "Beginner"
)

// Tier thresholds on the overall score.
const (
	eliteFloor        = 800
	expertFloor       = 600
	professionalFloor = 400
	intermediateFloor = 200
)

// Report is an immutable multi-factor snapshot of one talent. All component
// scores except EndorsementRatio are bounded [0,100]; the ratio is unbounded
// and capped only when folded into the overall score.
type Report struct {
	TalentID           string `json:"talent_id"`
	Sequence           uint64 `json:"sequence"` // counter value the report was built at
	AccountAge         uint64 `json:"account_age"`
	SkillDiversity     int    `json:"skill_diversity"`
	EndorsementRatio   int    `json:"endorsement_ratio"`
	ProjectSuccessRate int    `json:"project_success_rate"`
	ActivityScore      int    `json:"activity_score"`
	OverallScore       int    `json:"overall_score"`
	Tier               Tier   `json:"tier"`
	PercentileRank     int    `json:"percentile_rank"`
}

// Build derives the report from one consistent profile snapshot and the
// current sequence counter value.
//
// Account age saturates at zero when the counter sits below the profile's
// registration sequence, which only happens when a journal has been edited
// by hand.
func Build(profile model.TalentProfile, now uint64) Report {
	var age uint64
	if now > profile.RegistrationSequence {
		age = now - profile.RegistrationSequence
	}

	diversity := 0
	if profile.VerifiedSkillsCount > 0 {
		diversity = min(100, profile.VerifiedSkillsCount*10)
	}

	ratio := 0
	if profile.VerifiedSkillsCount > 0 {
		ratio = profile.TotalEndorsements * 100 / profile.VerifiedSkillsCount
	}

	success := 0
	if profile.ProjectsCompleted > 0 {
		success = 100
	}

	activity := 0
	if age > 0 {
		raw := uint64(profile.TotalEndorsements+profile.ProjectsCompleted) * 1000 / age
		activity = int(min(raw, 100))
	}

	// Weighted blend, integer truncating division.
	overall := (profile.ReputationScore*30 +
		diversity*20 +
		min(ratio, 100)*25 +
		success*15 +
		activity*10) / 100

	return Report{
		TalentID:           profile.TalentID,
		Sequence:           now,
		AccountAge:         age,
		SkillDiversity:     diversity,
		EndorsementRatio:   ratio,
		ProjectSuccessRate: success,
		ActivityScore:      activity,
		OverallScore:       overall,
		Tier:               tierFor(overall),
		PercentileRank:     min(100, overall*100/reputation.MaxScore),
	}
}

func tierFor(overall int) Tier {
	switch {
	case overall >= eliteFloor:
		return TierElite
	case overall >= expertFloor:
		return TierExpert
	case overall >= professionalFloor:
		return TierProfessional
	case overall >= intermediateFloor:
		return TierIntermediate
	default:
		return TierBeginner
	}
}
