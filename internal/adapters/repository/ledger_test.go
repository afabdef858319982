package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/reputation"
)

// seqGen hands out sequence numbers the way the applier would.
type seqGen uint64

func (s *seqGen) next() uint64 {
	*s++
	return uint64(*s)
}

func mustRegister(t *testing.T, l *Ledger, seq *seqGen, id string) {
	t.Helper()
	err := l.RegisterTalent(context.Background(), seq.next(), model.RegisterTalentArgs{
		TalentID: id,
		Username: "user-" + id,
	})
	if err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
}

// mustBootstrapReputation gives the talent a completed project, lifting its
// reputation to exactly the endorser floor.
func mustBootstrapReputation(t *testing.T, l *Ledger, seq *seqGen, id string) {
	t.Helper()
	err := l.AddProject(context.Background(), seq.next(), model.AddProjectArgs{
		TalentID:  id,
		ProjectID: 9999,
		Name:      "bootstrap",
		Role:      "dev",
		Completed: true,
		Rating:    5,
	})
	if err != nil {
		t.Fatalf("bootstrap project for %s: %v", id, err)
	}
	p, err := l.Talent(context.Background(), id)
	if err != nil {
		t.Fatalf("read %s: %v", id, err)
	}
	if p.ReputationScore != reputation.MinEndorserScore {
		t.Fatalf("bootstrap for %s: score %d, want %d", id, p.ReputationScore, reputation.MinEndorserScore)
	}
}

// checkScoreInvariant asserts the reputation formula over the profile's own
// counters.
func checkScoreInvariant(t *testing.T, l *Ledger, id string) {
	t.Helper()
	p, err := l.Talent(context.Background(), id)
	if err != nil {
		t.Fatalf("read %s: %v", id, err)
	}
	want := reputation.Score(p.TotalEndorsements, p.VerifiedSkillsCount, p.ProjectsCompleted)
	if p.ReputationScore != want {
		t.Errorf("%s: score %d, want %d (e=%d v=%d p=%d)",
			id, p.ReputationScore, want, p.TotalEndorsements, p.VerifiedSkillsCount, p.ProjectsCompleted)
	}
}

func TestLedger_RegisterTalent(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	if count := l.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	err := l.RegisterTalent(ctx, seq.next(), model.RegisterTalentArgs{TalentID: "a", Username: "ada", Bio: "bio"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := l.Talent(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Username != "ada" || p.Bio != "bio" || !p.Active {
		t.Errorf("unexpected profile: %+v", p)
	}
	if p.RegistrationSequence != 1 {
		t.Errorf("expected registration sequence 1, got %d", p.RegistrationSequence)
	}
	if p.ReputationScore != 0 || p.TotalEndorsements != 0 || p.VerifiedSkillsCount != 0 || p.ProjectsCompleted != 0 {
		t.Errorf("derived counters must start at zero: %+v", p)
	}

	// Duplicate identity.
	err = l.RegisterTalent(ctx, seq.next(), model.RegisterTalentArgs{TalentID: "a", Username: "other"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// Empty username.
	err = l.RegisterTalent(ctx, seq.next(), model.RegisterTalentArgs{TalentID: "b", Username: ""})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	// The duplicate check precedes username validation.
	err = l.RegisterTalent(ctx, seq.next(), model.RegisterTalentArgs{TalentID: "a", Username: ""})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate with empty username, got %v", err)
	}

	if count := l.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after failed registrations, got %d", count)
	}
	if c := l.Counters(ctx); c.TotalTalents != 1 {
		t.Errorf("expected totalTalents 1, got %d", c.TotalTalents)
	}
}

func TestLedger_AddSkill(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	// Caller without a profile.
	err := l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "ghost", SkillID: 1, Name: "go", ProficiencyLevel: 3})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	mustRegister(t, l, &seq, "a")

	for _, level := range []int{0, 6, -1} {
		err = l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "a", SkillID: 1, Name: "go", ProficiencyLevel: level})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("proficiency %d: expected ErrInvalidInput, got %v", level, err)
		}
	}

	err = l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "a", SkillID: 1, Name: "go", ProficiencyLevel: 3, YearsExperience: -2})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative years: expected ErrInvalidInput, got %v", err)
	}

	err = l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "a", SkillID: 1, Name: "go", ProficiencyLevel: 3, YearsExperience: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := l.Skill(ctx, "a", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Verified || s.VerificationCount != 0 {
		t.Errorf("new skill must start unverified: %+v", s)
	}
	if s.Name != "go" || s.ProficiencyLevel != 3 || s.YearsExperience != 4 {
		t.Errorf("unexpected skill: %+v", s)
	}
	if s.AddedSequence == 0 {
		t.Error("expected added sequence to be stamped")
	}

	// Duplicate key.
	err = l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "a", SkillID: 1, Name: "golang", ProficiencyLevel: 5})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// Same skill id for a different talent is a distinct key.
	mustRegister(t, l, &seq, "b")
	err = l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "b", SkillID: 1, Name: "go", ProficiencyLevel: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c := l.Counters(ctx); c.TotalSkills != 2 {
		t.Errorf("expected totalSkills 2, got %d", c.TotalSkills)
	}
}

func TestLedger_EndorseSkill_PreconditionOrder(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	endorse := func(endorser, talent string, skillID uint64, strength int) error {
		return l.EndorseSkill(ctx, seq.next(), model.EndorseSkillArgs{
			EndorserID: endorser,
			TalentID:   talent,
			SkillID:    skillID,
			Strength:   strength,
			Comment:    "c",
		})
	}

	// Unknown endorser wins over every later check, self-endorsement
	// included.
	if err := endorse("ghost", "ghost", 1, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown endorser: expected ErrNotFound, got %v", err)
	}

	mustRegister(t, l, &seq, "endorser")

	// Known endorser, unknown talent.
	if err := endorse("endorser", "ghost", 1, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown talent: expected ErrNotFound, got %v", err)
	}

	mustRegister(t, l, &seq, "talent")

	// Both profiles known, skill missing.
	if err := endorse("endorser", "talent", 1, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown skill: expected ErrNotFound, got %v", err)
	}

	if err := l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "talent", SkillID: 1, Name: "go", ProficiencyLevel: 3}); err != nil {
		t.Fatalf("add skill: %v", err)
	}
	if err := l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "endorser", SkillID: 7, Name: "rust", ProficiencyLevel: 3}); err != nil {
		t.Fatalf("add skill: %v", err)
	}

	// Self-endorsement precedes the reputation check: the endorser has
	// zero reputation and still gets the self kind.
	if err := endorse("endorser", "endorser", 7, 5); !errors.Is(err, ErrSelfEndorsement) {
		t.Errorf("self endorsement: expected ErrSelfEndorsement, got %v", err)
	}

	// Reputation floor precedes strength validation: strength is out of
	// range here and the reputation kind still wins.
	if err := endorse("endorser", "talent", 1, 99); !errors.Is(err, ErrInsufficientReputation) {
		t.Errorf("low reputation: expected ErrInsufficientReputation, got %v", err)
	}

	mustBootstrapReputation(t, l, &seq, "endorser")

	for _, strength := range []int{0, 6, -3} {
		if err := endorse("endorser", "talent", 1, strength); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("strength %d: expected ErrInvalidInput, got %v", strength, err)
		}
	}

	if err := endorse("endorser", "talent", 1, 5); err != nil {
		t.Fatalf("valid endorsement failed: %v", err)
	}

	// Duplicate key.
	if err := endorse("endorser", "talent", 1, 3); !errors.Is(err, ErrAlreadyEndorsed) {
		t.Errorf("duplicate: expected ErrAlreadyEndorsed, got %v", err)
	}

	// Every failed attempt above left the counts untouched; exactly one
	// endorsement landed.
	p, _ := l.Talent(ctx, "talent")
	if p.TotalEndorsements != 1 {
		t.Errorf("expected 1 endorsement, got %d", p.TotalEndorsements)
	}
	s, _ := l.Skill(ctx, "talent", 1)
	if s.VerificationCount != 1 || s.Verified {
		t.Errorf("unexpected skill state: %+v", s)
	}
	if c := l.Counters(ctx); c.TotalEndorsements != 1 {
		t.Errorf("expected global totalEndorsements 1, got %d", c.TotalEndorsements)
	}
	checkScoreInvariant(t, l, "talent")
}

func TestLedger_EndorseSkill_VerificationThreshold(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	// The canonical scenario: A claims a skill, B, C, D verify it.
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		mustRegister(t, l, &seq, id)
	}
	for _, id := range []string{"b", "c", "d", "e"} {
		mustBootstrapReputation(t, l, &seq, id)
	}
	if err := l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "a", SkillID: 1, Name: "go", ProficiencyLevel: 3}); err != nil {
		t.Fatalf("add skill: %v", err)
	}

	endorse := func(endorser string) {
		t.Helper()
		err := l.EndorseSkill(ctx, seq.next(), model.EndorseSkillArgs{
			EndorserID: endorser, TalentID: "a", SkillID: 1, Strength: 5,
		})
		if err != nil {
			t.Fatalf("endorse by %s: %v", endorser, err)
		}
		checkScoreInvariant(t, l, "a")
	}

	endorse("b")
	s, _ := l.Skill(ctx, "a", 1)
	if s.Verified || s.VerificationCount != 1 {
		t.Errorf("after 1st endorsement: %+v", s)
	}

	endorse("c")
	s, _ = l.Skill(ctx, "a", 1)
	if s.Verified || s.VerificationCount != 2 {
		t.Errorf("after 2nd endorsement: %+v", s)
	}

	endorse("d")
	s, _ = l.Skill(ctx, "a", 1)
	if !s.Verified || s.VerificationCount != 3 {
		t.Errorf("after 3rd endorsement: %+v", s)
	}
	p, _ := l.Talent(ctx, "a")
	if p.VerifiedSkillsCount != 1 || p.TotalEndorsements != 3 {
		t.Errorf("after verification: %+v", p)
	}
	if p.ReputationScore != 55 {
		t.Errorf("expected score 55, got %d", p.ReputationScore)
	}

	// A fourth endorsement bumps the count but never re-fires the
	// verification transition.
	endorse("e")
	s, _ = l.Skill(ctx, "a", 1)
	if !s.Verified || s.VerificationCount != 4 {
		t.Errorf("after 4th endorsement: %+v", s)
	}
	p, _ = l.Talent(ctx, "a")
	if p.VerifiedSkillsCount != 1 {
		t.Errorf("verified skills must stay 1, got %d", p.VerifiedSkillsCount)
	}
	if p.TotalEndorsements != 4 || p.ReputationScore != 65 {
		t.Errorf("after 4th endorsement: %+v", p)
	}
}

func TestLedger_EndorseSkill_ReputationFloor(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	for _, id := range []string{"low", "exact", "target"} {
		mustRegister(t, l, &seq, id)
	}
	if err := l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "target", SkillID: 1, Name: "go", ProficiencyLevel: 3}); err != nil {
		t.Fatalf("add skill: %v", err)
	}

	// Four helper endorsers lift "low" to 40, just under the floor. The
	// endorsements are spread over two skills so neither crosses the
	// verification threshold and adds its own weight.
	for i := 0; i < 4; i++ {
		helper := fmt.Sprintf("helper-%d", i)
		mustRegister(t, l, &seq, helper)
		mustBootstrapReputation(t, l, &seq, helper)
	}
	for _, skillID := range []uint64{2, 3} {
		if err := l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "low", SkillID: skillID, Name: "sql", ProficiencyLevel: 2}); err != nil {
			t.Fatalf("add skill: %v", err)
		}
	}
	for i := 0; i < 4; i++ {
		err := l.EndorseSkill(ctx, seq.next(), model.EndorseSkillArgs{
			EndorserID: fmt.Sprintf("helper-%d", i), TalentID: "low", SkillID: uint64(2 + i%2), Strength: 4,
		})
		if err != nil {
			t.Fatalf("helper endorsement %d: %v", i, err)
		}
	}

	p, _ := l.Talent(ctx, "low")
	if p.ReputationScore >= reputation.MinEndorserScore {
		t.Fatalf("setup: score %d not below floor", p.ReputationScore)
	}

	err := l.EndorseSkill(ctx, seq.next(), model.EndorseSkillArgs{
		EndorserID: "low", TalentID: "target", SkillID: 1, Strength: 5,
	})
	if !errors.Is(err, ErrInsufficientReputation) {
		t.Errorf("below floor: expected ErrInsufficientReputation, got %v", err)
	}

	// Exactly at the floor succeeds.
	mustBootstrapReputation(t, l, &seq, "exact")
	err = l.EndorseSkill(ctx, seq.next(), model.EndorseSkillArgs{
		EndorserID: "exact", TalentID: "target", SkillID: 1, Strength: 5,
	})
	if err != nil {
		t.Errorf("at floor: unexpected error %v", err)
	}
}

func TestLedger_AddProject(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	err := l.AddProject(ctx, seq.next(), model.AddProjectArgs{TalentID: "ghost", ProjectID: 1, Rating: 3})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	mustRegister(t, l, &seq, "a")

	// Rating is validated regardless of completion status.
	err = l.AddProject(ctx, seq.next(), model.AddProjectArgs{TalentID: "a", ProjectID: 1, Completed: false, Rating: 0})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("rating 0: expected ErrInvalidInput, got %v", err)
	}
	err = l.AddProject(ctx, seq.next(), model.AddProjectArgs{TalentID: "a", ProjectID: 1, Completed: true, Rating: 6})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("rating 6: expected ErrInvalidInput, got %v", err)
	}
	err = l.AddProject(ctx, seq.next(), model.AddProjectArgs{TalentID: "a", ProjectID: 1, DurationMonths: -1, Rating: 3})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative duration: expected ErrInvalidInput, got %v", err)
	}

	// Incomplete project: recorded, no reputation effect.
	err = l.AddProject(ctx, seq.next(), model.AddProjectArgs{
		TalentID: "a", ProjectID: 1, Name: "ledger", Role: "dev", DurationMonths: 6, Completed: false, Rating: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, _ := l.Talent(ctx, "a")
	if p.ProjectsCompleted != 0 || p.ReputationScore != 0 {
		t.Errorf("incomplete project must not score: %+v", p)
	}

	proj, err := l.Project(ctx, "a", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proj.Completed || proj.VerifiedBy != "" {
		t.Errorf("unexpected project: %+v", proj)
	}

	// Completed project scores.
	err = l.AddProject(ctx, seq.next(), model.AddProjectArgs{
		TalentID: "a", ProjectID: 2, Name: "api", Role: "dev", DurationMonths: 3, Completed: true, Rating: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, _ = l.Talent(ctx, "a")
	if p.ProjectsCompleted != 1 || p.ReputationScore != 50 {
		t.Errorf("completed project must add 50: %+v", p)
	}
	checkScoreInvariant(t, l, "a")

	// Duplicate key.
	err = l.AddProject(ctx, seq.next(), model.AddProjectArgs{TalentID: "a", ProjectID: 2, Completed: true, Rating: 5})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	p, _ = l.Talent(ctx, "a")
	if p.ProjectsCompleted != 1 {
		t.Errorf("failed insert must not change counters: %+v", p)
	}
}

func TestLedger_VerifyProject(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	mustRegister(t, l, &seq, "owner")
	mustRegister(t, l, &seq, "verifier")
	mustRegister(t, l, &seq, "second")

	if err := l.AddProject(ctx, seq.next(), model.AddProjectArgs{
		TalentID: "owner", ProjectID: 1, Name: "ledger", Completed: true, Rating: 4,
	}); err != nil {
		t.Fatalf("add project: %v", err)
	}

	// Unknown verifier.
	err := l.VerifyProject(ctx, seq.next(), model.VerifyProjectArgs{VerifierID: "ghost", TalentID: "owner", ProjectID: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown verifier: expected ErrNotFound, got %v", err)
	}

	// Unknown project.
	err = l.VerifyProject(ctx, seq.next(), model.VerifyProjectArgs{VerifierID: "verifier", TalentID: "owner", ProjectID: 99})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown project: expected ErrNotFound, got %v", err)
	}

	before, _ := l.Talent(ctx, "owner")

	err = l.VerifyProject(ctx, seq.next(), model.VerifyProjectArgs{VerifierID: "verifier", TalentID: "owner", ProjectID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proj, _ := l.Project(ctx, "owner", 1)
	if proj.VerifiedBy != "verifier" {
		t.Errorf("expected verifier set, got %q", proj.VerifiedBy)
	}

	// Verifier status is not a scoring input.
	after, _ := l.Talent(ctx, "owner")
	if after.ReputationScore != before.ReputationScore {
		t.Errorf("verification changed score: %d -> %d", before.ReputationScore, after.ReputationScore)
	}

	// The transition fires at most once, whoever retries.
	err = l.VerifyProject(ctx, seq.next(), model.VerifyProjectArgs{VerifierID: "verifier", TalentID: "owner", ProjectID: 1})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("re-verify by same: expected ErrAlreadyExists, got %v", err)
	}
	err = l.VerifyProject(ctx, seq.next(), model.VerifyProjectArgs{VerifierID: "second", TalentID: "owner", ProjectID: 1})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("re-verify by other: expected ErrAlreadyExists, got %v", err)
	}
	proj, _ = l.Project(ctx, "owner", 1)
	if proj.VerifiedBy != "verifier" {
		t.Errorf("verifier must never change, got %q", proj.VerifiedBy)
	}
}

func TestLedger_ScoreSaturation(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	mustRegister(t, l, &seq, "prolific")

	// 21 completed projects would score 1050 unbounded.
	for i := uint64(1); i <= 21; i++ {
		err := l.AddProject(ctx, seq.next(), model.AddProjectArgs{
			TalentID: "prolific", ProjectID: i, Name: "p", Completed: true, Rating: 5,
		})
		if err != nil {
			t.Fatalf("project %d: %v", i, err)
		}
	}

	p, _ := l.Talent(ctx, "prolific")
	if p.ReputationScore != reputation.MaxScore {
		t.Errorf("expected saturated score %d, got %d", reputation.MaxScore, p.ReputationScore)
	}
	if p.ProjectsCompleted != 21 {
		t.Errorf("expected 21 completed projects, got %d", p.ProjectsCompleted)
	}

	entry, err := l.Rank(ctx, "prolific")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if entry.Rank != 1 || entry.Score != reputation.MaxScore {
		t.Errorf("unexpected rank entry: %+v", entry)
	}
}

func TestLedger_Reads(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	if _, err := l.Talent(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Talent: expected ErrNotFound, got %v", err)
	}
	if _, err := l.Skill(ctx, "nope", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Skill: expected ErrNotFound, got %v", err)
	}
	if _, err := l.Endorsement(ctx, "a", "b", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Endorsement: expected ErrNotFound, got %v", err)
	}
	if _, err := l.Project(ctx, "nope", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Project: expected ErrNotFound, got %v", err)
	}
	if _, err := l.Rank(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rank: expected ErrNotFound, got %v", err)
	}

	mustRegister(t, l, &seq, "a")
	mustRegister(t, l, &seq, "b")
	mustBootstrapReputation(t, l, &seq, "b")
	if err := l.AddSkill(ctx, seq.next(), model.AddSkillArgs{TalentID: "a", SkillID: 3, Name: "go", ProficiencyLevel: 4}); err != nil {
		t.Fatalf("add skill: %v", err)
	}
	endorseSeq := seq.next()
	if err := l.EndorseSkill(ctx, endorseSeq, model.EndorseSkillArgs{
		EndorserID: "b", TalentID: "a", SkillID: 3, Strength: 2, Comment: "seen it",
	}); err != nil {
		t.Fatalf("endorse: %v", err)
	}

	e, err := l.Endorsement(ctx, "b", "a", 3)
	if err != nil {
		t.Fatalf("endorsement read: %v", err)
	}
	if e.Strength != 2 || e.Comment != "seen it" || e.Sequence != endorseSeq {
		t.Errorf("unexpected endorsement: %+v", e)
	}

	// The key is directional: a never endorsed b.
	if _, err := l.Endorsement(ctx, "a", "b", 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("reversed key: expected ErrNotFound, got %v", err)
	}

	c := l.Counters(ctx)
	if c.TotalTalents != 2 || c.TotalSkills != 1 || c.TotalEndorsements != 1 {
		t.Errorf("unexpected counters: %+v", c)
	}
}

func TestLedger_RankAndTopN(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	if _, err := l.TopN(ctx, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("limit 0: expected ErrInvalidInput, got %v", err)
	}

	entries, err := l.TopN(ctx, 5)
	if err != nil {
		t.Fatalf("empty ledger TopN: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}

	// Scores: high=150 (3 projects), mid=100 (2 projects), tied pair at 50,
	// zero stays at 0.
	projects := map[string]int{"high": 3, "mid": 2, "tied-b": 1, "tied-a": 1, "zero": 0}
	for _, id := range []string{"high", "mid", "tied-b", "tied-a", "zero"} {
		mustRegister(t, l, &seq, id)
		for i := 0; i < projects[id]; i++ {
			err := l.AddProject(ctx, seq.next(), model.AddProjectArgs{
				TalentID: id, ProjectID: uint64(i + 1), Name: "p", Completed: true, Rating: 5,
			})
			if err != nil {
				t.Fatalf("project for %s: %v", id, err)
			}
		}
	}

	entries, err = l.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	wantOrder := []string{"high", "mid", "tied-a", "tied-b", "zero"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(entries))
	}
	for i, want := range wantOrder {
		if entries[i].TalentID != want {
			t.Errorf("position %d: got %s, want %s", i, entries[i].TalentID, want)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("position %d: rank %d, want %d", i, entries[i].Rank, i+1)
		}
	}

	// Ranks are positional: the tied pair occupies distinct consecutive
	// positions, split by talent ID.
	a, _ := l.Rank(ctx, "tied-a")
	b, _ := l.Rank(ctx, "tied-b")
	if a.Rank != 3 || b.Rank != 4 {
		t.Errorf("tied ranks: a=%d b=%d, want 3 and 4", a.Rank, b.Rank)
	}
	if a.Score != b.Score {
		t.Errorf("tied scores diverged: %d vs %d", a.Score, b.Score)
	}

	// Limit smaller than the population truncates.
	entries, err = l.TopN(ctx, 2)
	if err != nil {
		t.Fatalf("TopN(2): %v", err)
	}
	if len(entries) != 2 || entries[0].TalentID != "high" || entries[1].TalentID != "mid" {
		t.Errorf("unexpected top 2: %+v", entries)
	}

	// A zero-score talent still holds a rank.
	z, err := l.Rank(ctx, "zero")
	if err != nil {
		t.Fatalf("rank zero: %v", err)
	}
	if z.Rank != 5 || z.Score != 0 {
		t.Errorf("unexpected zero entry: %+v", z)
	}
}

// TestLedger_RankIndexAgainstReference cross-checks the treap against a
// sorted slice under random score churn.
func TestLedger_RankIndexAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	type ref struct {
		id    string
		score int
	}

	var root *node
	byID := map[string]int{}

	for step := 0; step < 2000; step++ {
		id := fmt.Sprintf("t%03d", rng.Intn(200))
		score := rng.Intn(1001)
		if old, ok := byID[id]; ok {
			root = deleteNode(root, id, old)
		}
		byID[id] = score
		root = insert(root, id, score)
	}

	refs := make([]ref, 0, len(byID))
	for id, score := range byID {
		refs = append(refs, ref{id: id, score: score})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].score != refs[j].score {
			return refs[i].score > refs[j].score
		}
		return refs[i].id < refs[j].id
	})

	if nsize(root) != len(refs) {
		t.Fatalf("index size %d, want %d", nsize(root), len(refs))
	}
	for i, r := range refs {
		if got := rankOf(root, r.id, r.score); got != i+1 {
			t.Errorf("%s (score %d): rank %d, want %d", r.id, r.score, got, i+1)
		}
	}

	out := make([]model.RankEntry, 0, len(refs))
	collectTopN(root, len(refs), &out)
	for i, r := range refs {
		if out[i].TalentID != r.id || out[i].Score != r.score || out[i].Rank != i+1 {
			t.Errorf("position %d: got %+v, want %s/%d", i, out[i], r.id, r.score)
		}
	}
}

func TestLedger_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	var seq seqGen

	for i := 0; i < 50; i++ {
		mustRegister(t, l, &seq, fmt.Sprintf("talent-%02d", i))
	}

	done := make(chan struct{})
	var wg sync.WaitGroup

	// One writer, many readers. The single-writer rule only constrains
	// mutations; reads are freely concurrent.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= 200; i++ {
			id := fmt.Sprintf("talent-%02d", i%50)
			_ = l.AddProject(ctx, seq.next(), model.AddProjectArgs{
				TalentID: id, ProjectID: 1000 + i, Name: "p", Completed: true, Rating: 3,
			})
		}
		close(done)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_, _ = l.Talent(ctx, "talent-07")
				_, _ = l.TopN(ctx, 10)
				_, _ = l.Rank(ctx, "talent-07")
				_ = l.Counters(ctx)
				_ = l.Count(ctx)
			}
		}()
	}

	wg.Wait()

	// Every profile still satisfies the scoring invariant.
	for i := 0; i < 50; i++ {
		checkScoreInvariant(t, l, fmt.Sprintf("talent-%02d", i))
	}
}
