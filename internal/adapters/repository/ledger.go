package repository

import (
	"context"
	"sync"

	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/reputation"
	"github.com/okian/vouch/pkg/metrics"
)

// Ledger is the in-memory Store implementation. One RWMutex is the
// transaction boundary: each mutating method runs its whole
// validate-then-commit sequence as a single critical section, and reads
// observe either all of a transaction's writes or none of them.
type Ledger struct {
	mu           sync.RWMutex
	profiles     map[string]model.TalentProfile
	skills       map[model.SkillKey]model.Skill
	endorsements map[model.EndorsementKey]model.Endorsement
	projects     map[model.ProjectKey]model.Project
	counters     model.GlobalCounters
	root         *node // reputation rank index, maintained by rescore
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		profiles:     make(map[string]model.TalentProfile),
		skills:       make(map[model.SkillKey]model.Skill),
		endorsements: make(map[model.EndorsementKey]model.Endorsement),
		projects:     make(map[model.ProjectKey]model.Project),
	}
}

// RegisterTalent creates a profile with all derived counters at zero and
// indexes it in the leaderboard.
func (l *Ledger) RegisterTalent(ctx context.Context, seq uint64, args model.RegisterTalentArgs) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.profiles[args.TalentID]; ok {
		return ErrAlreadyExists
	}
	if args.Username == "" {
		return ErrInvalidInput
	}

	l.profiles[args.TalentID] = model.TalentProfile{
		TalentID:             args.TalentID,
		Username:             args.Username,
		Bio:                  args.Bio,
		RegistrationSequence: seq,
		Active:               true,
	}
	l.root = insert(l.root, args.TalentID, 0)
	l.counters.TotalTalents++
	metrics.UpdateTotalTalents(l.counters.TotalTalents)
	return nil
}

// AddSkill records an unverified skill claim for the caller.
func (l *Ledger) AddSkill(ctx context.Context, seq uint64, args model.AddSkillArgs) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.profiles[args.TalentID]; !ok {
		return ErrNotFound
	}
	if args.ProficiencyLevel < model.ScaleMin || args.ProficiencyLevel > model.ScaleMax {
		return ErrInvalidInput
	}
	if args.YearsExperience < 0 {
		return ErrInvalidInput
	}
	key := model.SkillKey{TalentID: args.TalentID, SkillID: args.SkillID}
	if _, ok := l.skills[key]; ok {
		return ErrAlreadyExists
	}

	l.skills[key] = model.Skill{
		TalentID:         args.TalentID,
		SkillID:          args.SkillID,
		Name:             args.Name,
		ProficiencyLevel: args.ProficiencyLevel,
		YearsExperience:  args.YearsExperience,
		AddedSequence:    seq,
	}
	l.counters.TotalSkills++
	return nil
}

// EndorseSkill records an endorsement edge and folds its effects into the
// target talent's derived state. Preconditions are checked in a fixed
// order; the first failure short-circuits with no state change.
func (l *Ledger) EndorseSkill(ctx context.Context, seq uint64, args model.EndorseSkillArgs) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	endorser, ok := l.profiles[args.EndorserID]
	if !ok {
		return ErrNotFound
	}
	talent, ok := l.profiles[args.TalentID]
	if !ok {
		return ErrNotFound
	}
	skillKey := model.SkillKey{TalentID: args.TalentID, SkillID: args.SkillID}
	skill, ok := l.skills[skillKey]
	if !ok {
		return ErrNotFound
	}
	if args.EndorserID == args.TalentID {
		return ErrSelfEndorsement
	}
	// The pre-operation score decides; this endorsement must not feed back
	// into its own admission.
	if endorser.ReputationScore < reputation.MinEndorserScore {
		return ErrInsufficientReputation
	}
	if args.Strength < model.ScaleMin || args.Strength > model.ScaleMax {
		return ErrInvalidInput
	}
	endKey := model.EndorsementKey{EndorserID: args.EndorserID, TalentID: args.TalentID, SkillID: args.SkillID}
	if _, ok := l.endorsements[endKey]; ok {
		return ErrAlreadyEndorsed
	}

	l.endorsements[endKey] = model.Endorsement{
		EndorserID: args.EndorserID,
		TalentID:   args.TalentID,
		SkillID:    args.SkillID,
		Strength:   args.Strength,
		Comment:    args.Comment,
		Sequence:   seq,
	}

	skill.VerificationCount++
	if !skill.Verified && skill.VerificationCount >= reputation.VerificationThreshold {
		// Crossing the threshold fires exactly once; later endorsements
		// of a verified skill never touch VerifiedSkillsCount again.
		skill.Verified = true
		talent.VerifiedSkillsCount++
		metrics.RecordSkillVerified()
	}
	l.skills[skillKey] = skill

	talent.TotalEndorsements++
	l.rescore(&talent)
	l.profiles[args.TalentID] = talent

	l.counters.TotalEndorsements++
	return nil
}

// AddProject records a work-history entry. Completion status is fixed at
// creation; there is no later mark-complete transition.
func (l *Ledger) AddProject(ctx context.Context, seq uint64, args model.AddProjectArgs) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	talent, ok := l.profiles[args.TalentID]
	if !ok {
		return ErrNotFound
	}
	if args.Rating < model.ScaleMin || args.Rating > model.ScaleMax {
		return ErrInvalidInput
	}
	if args.DurationMonths < 0 {
		return ErrInvalidInput
	}
	key := model.ProjectKey{TalentID: args.TalentID, ProjectID: args.ProjectID}
	if _, ok := l.projects[key]; ok {
		return ErrAlreadyExists
	}

	l.projects[key] = model.Project{
		TalentID:       args.TalentID,
		ProjectID:      args.ProjectID,
		Name:           args.Name,
		Role:           args.Role,
		DurationMonths: args.DurationMonths,
		Completed:      args.Completed,
		Rating:         args.Rating,
	}
	if args.Completed {
		talent.ProjectsCompleted++
		l.rescore(&talent)
		l.profiles[args.TalentID] = talent
	}
	return nil
}

// VerifyProject sets the project's verifier. The transition happens at most
// once and is never reset.
func (l *Ledger) VerifyProject(ctx context.Context, seq uint64, args model.VerifyProjectArgs) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.profiles[args.VerifierID]; !ok {
		return ErrNotFound
	}
	key := model.ProjectKey{TalentID: args.TalentID, ProjectID: args.ProjectID}
	project, ok := l.projects[key]
	if !ok {
		return ErrNotFound
	}
	if project.VerifiedBy != "" {
		return ErrAlreadyExists
	}

	project.VerifiedBy = args.VerifierID
	l.projects[key] = project

	// Verifier status is not a scoring input today; the recompute stays so
	// the day it becomes one, no call site changes. A project's talent
	// always has a profile.
	talent := l.profiles[args.TalentID]
	l.rescore(&talent)
	l.profiles[args.TalentID] = talent

	metrics.RecordProjectVerified()
	return nil
}

// rescore recomputes the profile's reputation from its three counters and
// keeps the rank index in step. Caller holds the write lock.
func (l *Ledger) rescore(p *model.TalentProfile) {
	next := reputation.Score(p.TotalEndorsements, p.VerifiedSkillsCount, p.ProjectsCompleted)
	if next != p.ReputationScore {
		l.root = deleteNode(l.root, p.TalentID, p.ReputationScore)
		l.root = insert(l.root, p.TalentID, next)
		p.ReputationScore = next
	}
	metrics.RecordReputationRecompute()
}

// Talent returns a copy of the profile record.
func (l *Ledger) Talent(ctx context.Context, talentID string) (model.TalentProfile, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.profiles[talentID]
	if !ok {
		return model.TalentProfile{}, ErrNotFound
	}
	return p, nil
}

// Skill returns a copy of the skill record.
func (l *Ledger) Skill(ctx context.Context, talentID string, skillID uint64) (model.Skill, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.skills[model.SkillKey{TalentID: talentID, SkillID: skillID}]
	if !ok {
		return model.Skill{}, ErrNotFound
	}
	return s, nil
}

// Endorsement returns a copy of the endorsement edge.
func (l *Ledger) Endorsement(ctx context.Context, endorserID, talentID string, skillID uint64) (model.Endorsement, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.endorsements[model.EndorsementKey{EndorserID: endorserID, TalentID: talentID, SkillID: skillID}]
	if !ok {
		return model.Endorsement{}, ErrNotFound
	}
	return e, nil
}

// Project returns a copy of the project record.
func (l *Ledger) Project(ctx context.Context, talentID string, projectID uint64) (model.Project, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.projects[model.ProjectKey{TalentID: talentID, ProjectID: projectID}]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p, nil
}

// Counters returns the global counters triple.
func (l *Ledger) Counters(ctx context.Context) model.GlobalCounters {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.counters
}

// Rank returns the talent's current leaderboard position in O(log n).
func (l *Ledger) Rank(ctx context.Context, talentID string) (model.RankEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.profiles[talentID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.RankEntry{}, ErrNotFound
	}

	metrics.RecordRankQuery()
	return model.RankEntry{
		TalentID: talentID,
		Rank:     rankOf(l.root, talentID, p.ReputationScore),
		Score:    p.ReputationScore,
	}, nil
}

// TopN returns the top-N leaderboard entries ordered by reputation desc,
// ties split by talent ID asc.
func (l *Ledger) TopN(ctx context.Context, n int) ([]model.RankEntry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidInput
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.RankEntry, 0, min(n, nsize(l.root)))
	collectTopN(l.root, n, &out)
	metrics.RecordLeaderboardQuery()
	return out, nil
}

// Count returns the number of registered talents.
func (l *Ledger) Count(ctx context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.profiles)
}
