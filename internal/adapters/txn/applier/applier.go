// Package applier runs the ledger's single writer.
//
// Exactly one applier drains the transaction queue. It draws a sequence
// number for each dequeued mutation, applies it to the store, journals
// the accepted ones and delivers the outcome back to the submitter.
// Having one writer is what makes admission order and sequence order the
// same thing.
package applier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/vouch/internal/adapters/repository"
	"github.com/okian/vouch/internal/adapters/txn/queue"
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/pkg/logger"
	"github.com/okian/vouch/pkg/metrics"
)

// Store is the write surface of the ledger.
type Store interface {
	RegisterTalent(ctx context.Context, seq uint64, args model.RegisterTalentArgs) error
	AddSkill(ctx context.Context, seq uint64, args model.AddSkillArgs) error
	EndorseSkill(ctx context.Context, seq uint64, args model.EndorseSkillArgs) error
	AddProject(ctx context.Context, seq uint64, args model.AddProjectArgs) error
	VerifyProject(ctx context.Context, seq uint64, args model.VerifyProjectArgs) error
}

// Sequencer hands out sequence numbers in admission order.
type Sequencer interface {
	Next() uint64
}

// Journal records accepted mutations for replay.
type Journal interface {
	Append(ctx context.Context, seq uint64, m model.Mutation) error
}

// Queue is how the applier receives admitted transactions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Pending
}

// Applier applies mutations one at a time.
type Applier struct {
	queue     Queue
	store     Store
	sequencer Sequencer
	journal   Journal // nil when journaling is disabled

	done chan struct{}

	logger logger.Logger
}

// NewApplier creates the applier with configuration options.
func NewApplier(q Queue, store Store, sequencer Sequencer, opts ...Option) *Applier {
	a := &Applier{
		queue:     q,
		store:     store,
		sequencer: sequencer,
		done:      make(chan struct{}),
		logger:    logger.Get().Named("applier"),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Run drains the queue until it closes or ctx is cancelled. Closing the
// queue before cancelling ctx gives every admitted transaction an
// outcome before Run returns.
func (a *Applier) Run(ctx context.Context) {
	defer close(a.done)

	pending := a.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-pending:
			if !ok {
				return
			}
			a.process(ctx, p)
		}
	}
}

// Shutdown waits for the applier to finish draining. The queue must be
// closed first.
func (a *Applier) Shutdown(ctx context.Context) error {
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		a.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process handles a single pending transaction.
func (a *Applier) process(ctx context.Context, p queue.Pending) {
	start := time.Now()

	// The sequence number is drawn at dequeue time. Rejected mutations
	// burn their number, so gaps between journaled entries are normal.
	seq := a.sequencer.Next()

	err := Apply(ctx, a.store, seq, p.Mutation)
	if err != nil {
		metrics.RecordMutationRejected(string(p.Mutation.Kind), reasonLabel(err))
	} else {
		metrics.RecordMutationApplied(string(p.Mutation.Kind))
		if a.journal != nil {
			if jerr := a.journal.Append(ctx, seq, p.Mutation); jerr != nil {
				// An applied but unrecorded mutation would replay into
				// a different ledger. Stop before accepting more
				// writes.
				a.logger.Fatal(ctx, "journal append failed",
					logger.Uint64("seq", seq),
					logger.String("kind", string(p.Mutation.Kind)),
					logger.Error(jerr),
				)
			}
		}
	}

	metrics.RecordApplyLatency(float64(time.Since(start).Milliseconds()))

	// Result is buffered; delivery never blocks the writer.
	p.Result <- err
}

// Apply dispatches one mutation to the store under the given sequence
// number. The live loop calls it with freshly drawn numbers; journal
// replay calls it with the recorded ones.
func Apply(ctx context.Context, store Store, seq uint64, m model.Mutation) error {
	switch m.Kind {
	case model.KindRegisterTalent:
		if m.Register == nil {
			return fmt.Errorf("%w: register payload missing", repository.ErrInvalidInput)
		}
		return store.RegisterTalent(ctx, seq, *m.Register)
	case model.KindAddSkill:
		if m.AddSkill == nil {
			return fmt.Errorf("%w: add_skill payload missing", repository.ErrInvalidInput)
		}
		return store.AddSkill(ctx, seq, *m.AddSkill)
	case model.KindEndorseSkill:
		if m.Endorse == nil {
			return fmt.Errorf("%w: endorse_skill payload missing", repository.ErrInvalidInput)
		}
		return store.EndorseSkill(ctx, seq, *m.Endorse)
	case model.KindAddProject:
		if m.AddProject == nil {
			return fmt.Errorf("%w: add_project payload missing", repository.ErrInvalidInput)
		}
		return store.AddProject(ctx, seq, *m.AddProject)
	case model.KindVerifyProject:
		if m.VerifyProject == nil {
			return fmt.Errorf("%w: verify_project payload missing", repository.ErrInvalidInput)
		}
		return store.VerifyProject(ctx, seq, *m.VerifyProject)
	default:
		return fmt.Errorf("%w: unknown mutation kind %q", repository.ErrInvalidInput, m.Kind)
	}
}

// reasonLabel folds a rejection into a low-cardinality metric label.
func reasonLabel(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, repository.ErrAlreadyEndorsed):
		return "already_endorsed"
	case errors.Is(err, repository.ErrSelfEndorsement):
		return "self_endorsement"
	case errors.Is(err, repository.ErrInsufficientReputation):
		return "insufficient_reputation"
	case errors.Is(err, repository.ErrInvalidInput):
		return "invalid_input"
	default:
		return "unknown"
	}
}
