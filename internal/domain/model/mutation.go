package model

// MutationKind discriminates the payload carried by a Mutation envelope.
type MutationKind string

// Mutation kinds, also used as journal and metrics labels.
const (
	KindRegisterTalent MutationKind = "register_talent"
	KindAddSkill       MutationKind = "add_skill"
	KindEndorseSkill   MutationKind = "endorse_skill"
	KindAddProject     MutationKind = "add_project"
	KindVerifyProject  MutationKind = "verify_project"
)

// RegisterTalentArgs are the arguments of a talent registration.
type RegisterTalentArgs struct {
	TalentID string `json:"talent_id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

// AddSkillArgs are the arguments of a skill claim.
type AddSkillArgs struct {
	TalentID         string `json:"talent_id"`
	SkillID          uint64 `json:"skill_id"`
	Name             string `json:"name"`
	ProficiencyLevel int    `json:"proficiency_level"`
	YearsExperience  int    `json:"years_experience"`
}

// EndorseSkillArgs are the arguments of a skill endorsement.
type EndorseSkillArgs struct {
	EndorserID string `json:"endorser_id"`
	TalentID   string `json:"talent_id"`
	SkillID    uint64 `json:"skill_id"`
	Strength   int    `json:"strength"`
	Comment    string `json:"comment"`
}

// AddProjectArgs are the arguments of a project record.
type AddProjectArgs struct {
	TalentID       string `json:"talent_id"`
	ProjectID      uint64 `json:"project_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	DurationMonths int    `json:"duration_months"`
	Completed      bool   `json:"completed"`
	Rating         int    `json:"rating"`
}

// VerifyProjectArgs are the arguments of a project verification.
type VerifyProjectArgs struct {
	VerifierID string `json:"verifier_id"`
	TalentID   string `json:"talent_id"`
	ProjectID  uint64 `json:"project_id"`
}

// Mutation is the envelope for one mutating transaction. Exactly one payload
// pointer matching Kind is set. The envelope is JSON-serializable so accepted
// mutations can be journaled and replayed verbatim.
type Mutation struct {
	Kind          MutationKind        `json:"kind"`
	Register      *RegisterTalentArgs `json:"register,omitempty"`
	AddSkill      *AddSkillArgs       `json:"add_skill,omitempty"`
	Endorse       *EndorseSkillArgs   `json:"endorse,omitempty"`
	AddProject    *AddProjectArgs     `json:"add_project,omitempty"`
	VerifyProject *VerifyProjectArgs  `json:"verify_project,omitempty"`
}
