// Package queue holds mutations that have been admitted but not yet
// applied.
//
// The queue is the only entry point to the ledger's write path: every
// mutation waits here in arrival order until the single applier picks it
// up. Readers never touch the queue.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/pkg/metrics"
)

const defaultCapacity = 4096

// Pending couples an admitted mutation with the channel its outcome is
// delivered on. Result has capacity one so the applier's send never
// blocks, even when the submitter has stopped waiting.
type Pending struct {
	Mutation model.Mutation
	Result   chan error
}

// NewPending wraps a mutation for submission.
func NewPending(m model.Mutation) Pending {
	return Pending{Mutation: m, Result: make(chan error, 1)}
}

// Queue provides bounded enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue admits a pending transaction. It reports ErrFull when the
	// queue is at capacity and ErrClosed once the queue has shut down;
	// it never blocks on a full queue.
	Enqueue(ctx context.Context, p Pending) error

	// Dequeue returns a channel that yields pending transactions in
	// admission order. The channel closes once the queue is closed and
	// drained.
	Dequeue(ctx context.Context) <-chan Pending

	// Len returns the current number of queued transactions.
	Len(ctx context.Context) int

	// Close stops admission. Transactions already queued remain
	// available to Dequeue.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	pending  chan Pending
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with the configured capacity.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.pending = make(chan Pending, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue admits a pending transaction.
func (q *InMemoryQueue) Enqueue(ctx context.Context, p Pending) error {
	// The read lock excludes Close, so no send can race the channel
	// close.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejection()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.pending <- p:
		metrics.RecordQueueEnqueue()
		size := len(q.pending)
		metrics.UpdateQueueSize(size)
		metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
		return nil
	case <-ctx.Done():
		metrics.RecordQueueRejection()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue cancelled: %w", ctx.Err())
	default:
		metrics.RecordQueueRejection()
		metrics.RecordErrorByComponent("queue", "full")
		return ErrFull
	}
}

// Dequeue returns a channel that yields pending transactions in admission
// order.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Pending {
	out := make(chan Pending)
	go func() {
		defer close(out)
		for p := range q.pending {
			select {
			case out <- p:
				metrics.RecordQueueDequeue()
				size := len(q.pending)
				metrics.UpdateQueueSize(size)
				metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued transactions.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.pending)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close stops admission.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.pending)
	q.closed = true

	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
