package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/vouch/internal/domain/model"
)

func pendingRegister(id string) Pending {
	return NewPending(model.Mutation{
		Kind:     model.KindRegisterTalent,
		Register: &model.RegisterTalentArgs{TalentID: id, Username: id},
	})
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, pendingRegister("a")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	p := <-out
	if p.Mutation.Kind != model.KindRegisterTalent || p.Mutation.Register.TalentID != "a" {
		t.Errorf("unexpected pending transaction: %+v", p.Mutation)
	}
	if p.Result == nil || cap(p.Result) != 1 {
		t.Error("expected a buffered result channel")
	}
}

func TestInMemoryQueue_FullRejection(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.Enqueue(ctx, pendingRegister("a")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, pendingRegister("b")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// At capacity: the third admission is refused, not delayed.
	if err := q.Enqueue(ctx, pendingRegister("c")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_OrderPreserved(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(16))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := q.Enqueue(ctx, pendingRegister(fmt.Sprintf("t-%d", i))); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	out := q.Dequeue(ctx)
	for i := 0; i < 10; i++ {
		p := <-out
		want := fmt.Sprintf("t-%d", i)
		if p.Mutation.Register.TalentID != want {
			t.Errorf("position %d: got %s, want %s", i, p.Mutation.Register.TalentID, want)
		}
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, pendingRegister("a")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, pendingRegister("b")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	// Admission stops immediately.
	if err := q.Enqueue(ctx, pendingRegister("c")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Transactions admitted before the close still drain, in order, and
	// then the channel closes.
	out := q.Dequeue(ctx)
	drained := []string{}
	timeout := time.After(time.Second)
	for {
		select {
		case p, ok := <-out:
			if !ok {
				if len(drained) != 2 || drained[0] != "a" || drained[1] != "b" {
					t.Errorf("unexpected drain order: %v", drained)
				}
				// Close again is a no-op.
				if err := q.Close(); err != nil {
					t.Errorf("second close: %v", err)
				}
				return
			}
			drained = append(drained, p.Mutation.Register.TalentID)
		case <-timeout:
			t.Fatal("dequeue channel never closed")
		}
	}
}

func TestInMemoryQueue_ContextCancelStopsDequeue(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())

	out := q.Dequeue(ctx)
	cancel()

	if err := q.Enqueue(context.Background(), pendingRegister("a")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// The dequeue channel closes once the context dies; the item it may
	// have pulled first is allowed through.
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("dequeue channel never closed after cancel")
		}
	}
}
