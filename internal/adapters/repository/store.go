// Package repository owns the ledger state: profiles, skills, endorsements,
// projects, the global counters, and the reputation rank index.
package repository

import (
	"context"

	"github.com/okian/vouch/internal/domain/model"
)

// Store provides transactional access to the ledger state.
//
// Mutating methods check every precondition and then commit atomically; the
// first violated precondition determines the returned error kind and leaves
// all state untouched. Mutations carry the sequence number assigned to the
// transaction and must be invoked by a single writer.
//
// Read methods take a consistent snapshot and return copies. A missing
// record is reported as ErrNotFound.
type Store interface {
	RegisterTalent(ctx context.Context, seq uint64, args model.RegisterTalentArgs) error
	AddSkill(ctx context.Context, seq uint64, args model.AddSkillArgs) error
	EndorseSkill(ctx context.Context, seq uint64, args model.EndorseSkillArgs) error
	AddProject(ctx context.Context, seq uint64, args model.AddProjectArgs) error
	VerifyProject(ctx context.Context, seq uint64, args model.VerifyProjectArgs) error

	Talent(ctx context.Context, talentID string) (model.TalentProfile, error)
	Skill(ctx context.Context, talentID string, skillID uint64) (model.Skill, error)
	Endorsement(ctx context.Context, endorserID, talentID string, skillID uint64) (model.Endorsement, error)
	Project(ctx context.Context, talentID string, projectID uint64) (model.Project, error)
	Counters(ctx context.Context) model.GlobalCounters

	// Rank returns the current leaderboard position for a talent.
	Rank(ctx context.Context, talentID string) (model.RankEntry, error)
	// TopN returns the top-N entries ordered by reputation desc.
	TopN(ctx context.Context, n int) ([]model.RankEntry, error)
	// Count returns the number of registered talents.
	Count(ctx context.Context) int
}
