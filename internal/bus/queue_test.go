package bus

import (
	"context"
	"testing"

	"main/internal/schema"
)

func TestTryPublishOverflowDrops(t *testing.T) {
	q := NewQueue(2)

	if err := q.TryPublish(Event{Header: schema.EventHeader{Seq: 1}}); err != nil {
		t.Fatalf("publish 1: %v", err)
	}
	if err := q.TryPublish(Event{Header: schema.EventHeader{Seq: 2}}); err != nil {
		t.Fatalf("publish 2: %v", err)
	}
	if err := q.TryPublish(Event{Header: schema.EventHeader{Seq: 3}}); err != ErrQueueFull {
		t.Fatalf("publish 3: got %v, want ErrQueueFull", err)
	}
	if q.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", q.Depth())
	}
}

func TestRunObservesPublishOrderAndDrainsOnClose(t *testing.T) {
	q := NewQueue(8)
	for seq := uint64(1); seq <= 5; seq++ {
		if err := q.TryPublish(Event{Header: schema.EventHeader{Seq: seq}}); err != nil {
			t.Fatalf("publish %d: %v", seq, err)
		}
	}
	q.Close()

	if err := q.TryPublish(Event{}); err != ErrQueueClosed {
		t.Fatalf("publish after close: got %v, want ErrQueueClosed", err)
	}

	var seen []uint64
	q.Run(context.Background(), func(e Event) {
		seen = append(seen, e.Header.Seq)
	})

	if len(seen) != 5 {
		t.Fatalf("consumed %d events, want 5", len(seen))
	}
	for i, seq := range seen {
		if seq != uint64(i+1) {
			t.Fatalf("event %d: seq = %d, want %d", i, seq, i+1)
		}
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		q.Run(ctx, func(Event) {})
		close(done)
	}()
	<-done
}
