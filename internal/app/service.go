// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/vouch/internal/adapters/journal"
	repository "github.com/okian/vouch/internal/adapters/repository"
	"github.com/okian/vouch/internal/adapters/txn/applier"
	txqueue "github.com/okian/vouch/internal/adapters/txn/queue"
	"github.com/okian/vouch/internal/domain/analytics"
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/sequence"
	"github.com/okian/vouch/pkg/logger"
	"github.com/okian/vouch/pkg/metrics"
)

const shutdownDrainTimeout = 30 * time.Second

// Service wires the ledger, the transaction pipeline and the journal
// together behind the facade the HTTP API consumes.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	txQueue   txqueue.Queue
	applier   *applier.Applier
	journal   *journal.Journal
	sequencer *sequence.Counter

	// Configuration
	queueSize   int
	journalPath string

	// State
	started   bool
	runCancel context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the maximum size of the transaction queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJournalPath enables the SQLite journal at the given path. Empty
// keeps the ledger memory-only.
func WithJournalPath(path string) Option {
	return func(s *Service) {
		s.journalPath = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service with default configuration. The ledger and
// the sequencer exist from construction; reads against an unstarted
// service see an empty ledger.
func New(opts ...Option) *Service {
	s := &Service{
		store:     repository.NewLedger(),
		sequencer: &sequence.Counter{},
		queueSize: 4096,
		logger:    nil, // resolved at Start
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the journal, replays it into the ledger and launches the
// applier. It is a no-op on a started service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting reputation service...")

	if s.journalPath != "" {
		j, err := journal.Open(s.journalPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		s.journal = j

		// Replay drives the recorded mutations through the same
		// dispatch the live path uses, keeping their original sequence
		// numbers.
		head, err := j.Replay(ctx, func(seq uint64, m model.Mutation) error {
			return applier.Apply(ctx, s.store, seq, m)
		})
		if err != nil {
			return fmt.Errorf("replay journal: %w", err)
		}
		s.sequencer.Restore(head)
		s.logger.Info(ctx, "journal replayed",
			logger.Uint64("head", head),
			logger.Int("talents", s.store.Count(ctx)),
		)
	}

	s.txQueue = txqueue.NewInMemoryQueue(txqueue.WithCapacity(s.queueSize))

	var opts []applier.Option
	if s.journal != nil {
		opts = append(opts, applier.WithJournal(s.journal))
	}
	s.applier = applier.NewApplier(s.txQueue, s.store, s.sequencer, opts...)

	// The applier's lifetime is bound to the queue, not to the caller's
	// ctx; closing the queue is what ends the drain.
	runCtx, cancel := context.WithCancel(context.Background())
	s.runCancel = cancel
	go s.applier.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "reputation service started",
		logger.Int("queueSize", s.queueSize),
		logger.Bool("journal", s.journal != nil),
	)

	return nil
}

// Stop drains the pipeline and releases the journal. Admission stops
// first, so every transaction accepted before the call still gets its
// outcome.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping reputation service...")

	if s.txQueue != nil {
		_ = s.txQueue.Close()
	}

	if s.applier != nil {
		drainCtx, cancel := context.WithTimeout(ctx, shutdownDrainTimeout)
		if err := s.applier.Shutdown(drainCtx); err != nil {
			s.logger.Warn(ctx, "applier did not drain in time", logger.Error(err))
		}
		cancel()
	}

	if s.runCancel != nil {
		s.runCancel()
	}

	if s.journal != nil {
		_ = s.journal.Close()
		s.journal = nil
	}

	s.started = false
	s.logger.Info(ctx, "reputation service stopped")
}

// submit queues one mutation and blocks until the applier reports its
// outcome.
func (s *Service) submit(ctx context.Context, m model.Mutation) error {
	s.mu.RLock()
	q := s.txQueue
	s.mu.RUnlock()

	if q == nil {
		return txqueue.ErrClosed
	}

	p := txqueue.NewPending(m)
	if err := q.Enqueue(ctx, p); err != nil {
		return err
	}

	select {
	case err := <-p.Result:
		return err
	case <-ctx.Done():
		// The mutation was admitted and will still apply; only the
		// caller has stopped waiting.
		return ctx.Err()
	}
}

// RegisterTalent submits a registration transaction.
func (s *Service) RegisterTalent(ctx context.Context, args model.RegisterTalentArgs) error {
	return s.submit(ctx, model.Mutation{Kind: model.KindRegisterTalent, Register: &args})
}

// AddSkill submits a skill claim transaction.
func (s *Service) AddSkill(ctx context.Context, args model.AddSkillArgs) error {
	return s.submit(ctx, model.Mutation{Kind: model.KindAddSkill, AddSkill: &args})
}

// EndorseSkill submits an endorsement transaction.
func (s *Service) EndorseSkill(ctx context.Context, args model.EndorseSkillArgs) error {
	return s.submit(ctx, model.Mutation{Kind: model.KindEndorseSkill, Endorse: &args})
}

// AddProject submits a project record transaction.
func (s *Service) AddProject(ctx context.Context, args model.AddProjectArgs) error {
	return s.submit(ctx, model.Mutation{Kind: model.KindAddProject, AddProject: &args})
}

// VerifyProject submits a project verification transaction.
func (s *Service) VerifyProject(ctx context.Context, args model.VerifyProjectArgs) error {
	return s.submit(ctx, model.Mutation{Kind: model.KindVerifyProject, VerifyProject: &args})
}

// Talent returns one profile.
func (s *Service) Talent(ctx context.Context, talentID string) (model.TalentProfile, error) {
	return s.store.Talent(ctx, talentID)
}

// Skill returns one skill record.
func (s *Service) Skill(ctx context.Context, talentID string, skillID uint64) (model.Skill, error) {
	return s.store.Skill(ctx, talentID, skillID)
}

// Endorsement returns one endorsement edge.
func (s *Service) Endorsement(ctx context.Context, endorserID, talentID string, skillID uint64) (model.Endorsement, error) {
	return s.store.Endorsement(ctx, endorserID, talentID, skillID)
}

// Project returns one project record.
func (s *Service) Project(ctx context.Context, talentID string, projectID uint64) (model.Project, error) {
	return s.store.Project(ctx, talentID, projectID)
}

// Counters returns the global counters triple.
func (s *Service) Counters(ctx context.Context) model.GlobalCounters {
	return s.store.Counters(ctx)
}

// TopN returns the highest-reputation talents with positional ranks.
func (s *Service) TopN(ctx context.Context, n int) ([]model.RankEntry, error) {
	return s.store.TopN(ctx, n)
}

// Rank returns the rank entry for a given talent id.
func (s *Service) Rank(ctx context.Context, talentID string) (model.RankEntry, error) {
	return s.store.Rank(ctx, talentID)
}

// GenerateAnalytics builds the derived engagement report for one talent.
// The skill filter is bounded before any lookup happens; it is carried
// for future per-skill metrics and not consumed by the current formulas.
func (s *Service) GenerateAnalytics(ctx context.Context, talentID string, skillIDs []uint64) (analytics.Report, error) {
	if len(skillIDs) > analytics.MaxSkillFilter {
		metrics.RecordErrorByComponent("service", "skill_filter_too_large")
		return analytics.Report{}, fmt.Errorf("%w: at most %d skill ids", repository.ErrInvalidInput, analytics.MaxSkillFilter)
	}

	profile, err := s.store.Talent(ctx, talentID)
	if err != nil {
		return analytics.Report{}, err
	}

	report := analytics.Build(profile, s.sequencer.Current())
	metrics.RecordAnalyticsReport()
	return report, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	counters := s.store.Counters(ctx)

	stats := map[string]interface{}{
		"started":           s.started,
		"queueCapacity":     s.queueSize,
		"journal":           s.journal != nil,
		"sequenceHead":      s.sequencer.Current(),
		"totalTalents":      counters.TotalTalents,
		"totalSkills":       counters.TotalSkills,
		"totalEndorsements": counters.TotalEndorsements,
		"trackedTalents":    s.store.Count(ctx),
	}

	if s.started {
		queueLen := s.txQueue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}
	metrics.UpdateTotalTalents(s.store.Count(ctx))

	return stats
}
