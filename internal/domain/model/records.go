// Package model contains the ledger record types passed between layers.
package model

// Scale bounds shared by proficiency levels, endorsement strengths, and
// project ratings.
const (
	ScaleMin = 1
	ScaleMax = 5
)

// TalentProfile is the per-identity profile record. Derived counters and the
// reputation score are maintained by the store; callers never write them.
type TalentProfile struct {
	TalentID             string `json:"talent_id"`
	Username             string `json:"username"`
	Bio                  string `json:"bio"`
	ReputationScore      int    `json:"reputation_score"` // bounded [0,1000]
	TotalEndorsements    int    `json:"total_endorsements"`
	VerifiedSkillsCount  int    `json:"verified_skills_count"`
	ProjectsCompleted    int    `json:"projects_completed"`
	RegistrationSequence uint64 `json:"registration_sequence"`
	Active               bool   `json:"active"`
}

// Skill is a claimed skill. Verified flips false to true exactly once, the
// moment VerificationCount first reaches the verification threshold.
type Skill struct {
	TalentID          string `json:"talent_id"`
	SkillID           uint64 `json:"skill_id"`
	Name              string `json:"name"`
	ProficiencyLevel  int    `json:"proficiency_level"` // 1..5
	YearsExperience   int    `json:"years_experience"`
	Verified          bool   `json:"verified"`
	VerificationCount int    `json:"verification_count"` // distinct endorsers
	AddedSequence     uint64 `json:"added_sequence"`
}

// Endorsement is an immutable endorsement edge. One per
// (endorser, talent, skill) key, never rewritten.
type Endorsement struct {
	EndorserID string `json:"endorser_id"`
	TalentID   string `json:"talent_id"`
	SkillID    uint64 `json:"skill_id"`
	Strength   int    `json:"strength"` // 1..5
	Comment    string `json:"comment"`
	Sequence   uint64 `json:"sequence"`
}

// Project is a work-history record. VerifiedBy is empty until a verifier
// claims it; the transition happens at most once and is never reset.
type Project struct {
	TalentID       string `json:"talent_id"`
	ProjectID      uint64 `json:"project_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	DurationMonths int    `json:"duration_months"`
	Completed      bool   `json:"completed"` // fixed at creation
	Rating         int    `json:"rating"`    // 1..5
	VerifiedBy     string `json:"verified_by,omitempty"`
}

// GlobalCounters are the aggregate totals. Monotonically non-decreasing.
type GlobalCounters struct {
	TotalTalents      int `json:"total_talents"`
	TotalSkills       int `json:"total_skills"`
	TotalEndorsements int `json:"total_endorsements"`
}

// RankEntry is one row of the reputation leaderboard.
type RankEntry struct {
	TalentID string `json:"talent_id"`
	Rank     int    `json:"rank"` // 1-based position
	Score    int    `json:"score"`
}

// SkillKey identifies a skill record.
type SkillKey struct {
	TalentID string
	SkillID  uint64
}

// EndorsementKey identifies an endorsement edge.
type EndorsementKey struct {
	EndorserID string
	TalentID   string
	SkillID    uint64
}

// ProjectKey identifies a project record.
type ProjectKey struct {
	TalentID  string
	ProjectID uint64
}
