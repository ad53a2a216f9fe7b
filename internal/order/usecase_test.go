package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"main/internal/schema"
	"main/pkg/exception"
)

type delegatorRecorder struct {
	ch chan schema.Command
}

func (d *delegatorRecorder) Send(_ context.Context, cmd schema.Command) error {
	d.ch <- cmd
	return nil
}

func TestSubmitRejectsWhenFull(t *testing.T) {
	use := NewUsecase(2, &delegatorRecorder{ch: make(chan schema.Command, 8)})

	if err := use.Submit(schema.NewCancel(1)); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if err := use.Submit(schema.NewCancel(2)); err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if err := use.Submit(schema.NewCancel(3)); !errors.Is(err, exception.ErrOrderQueueFull) {
		t.Fatalf("submit 3: got %v, want ErrOrderQueueFull", err)
	}
}

func TestWorkerPreservesSubmissionOrder(t *testing.T) {
	rec := &delegatorRecorder{ch: make(chan schema.Command, 8)}
	use := NewUsecase(8, rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for id := uint64(1); id <= 5; id++ {
		if err := use.Submit(schema.NewCancel(id)); err != nil {
			t.Fatalf("submit %d: %v", id, err)
		}
	}
	use.Run(ctx)

	for want := uint64(1); want <= 5; want++ {
		select {
		case cmd := <-rec.ch:
			if cmd.Cancel.OrderID != want {
				t.Fatalf("got order %d, want %d", cmd.Cancel.OrderID, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for command %d", want)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	rec := &delegatorRecorder{ch: make(chan schema.Command, 8)}
	use := NewUsecase(8, rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	use.Run(ctx)
	use.Run(ctx)

	if err := use.Submit(schema.NewCancel(42)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case cmd := <-rec.ch:
		if cmd.Cancel.OrderID != 42 {
			t.Fatalf("got order %d, want 42", cmd.Cancel.OrderID)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out")
	}

	// a second Run must not have started a second worker draining out
	// of order; nothing further should arrive
	select {
	case cmd := <-rec.ch:
		t.Fatalf("unexpected command: %+v", cmd)
	case <-time.After(50 * time.Millisecond):
	}
}
