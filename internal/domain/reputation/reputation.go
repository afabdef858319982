// Package reputation implements the bounded reputation scoring function.
package reputation

// Scoring weights and bounds.
const (
	// MaxScore is the saturation ceiling of the reputation score.
	MaxScore = 1000
	// EndorsementWeight is the score contribution per received endorsement.
	EndorsementWeight = 10
	// VerifiedSkillWeight is the score contribution per verified skill.
	VerifiedSkillWeight = 25
	// ProjectWeight is the score contribution per completed project.
	ProjectWeight = 50
	// MinEndorserScore is the reputation an endorser must already hold
	// before endorsing anyone else.
	MinEndorserScore = 50
	// VerificationThreshold is the number of distinct endorsers that flips
	// a skill to verified.
	VerificationThreshold = 3
)

// Score computes the reputation score from the three activity counters.
// Defined over non-negative inputs, monotonic non-decreasing in each
// argument, saturating at MaxScore. Pure; recomputing with unchanged
// inputs yields an identical score.
func Score(endorsements, verifiedSkills, projects int) int {
	s := EndorsementWeight*endorsements +
		VerifiedSkillWeight*verifiedSkills +
		ProjectWeight*projects
	if s > MaxScore {
		return MaxScore
	}
	return s
}
