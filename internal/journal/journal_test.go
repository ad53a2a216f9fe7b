package journal

import (
	"context"
	"sync"
	"testing"
	"time"

	"main/internal/schema"
)

type memorySink struct {
	mu      sync.Mutex
	entries []Entry
}

func (s *memorySink) Save(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memorySink) snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestRecordFlowsThroughWorker(t *testing.T) {
	sink := &memorySink{}
	j := New(8, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	j.Run(ctx)

	j.RecordFill(schema.InstrumentTradable, schema.Fill{OrderID: 1, Side: schema.SideBuy, Price: 1000, Qty: 5}, 42)
	j.RecordHedge(schema.InstrumentReference, schema.Fill{OrderID: 1, Side: schema.SideSell, Price: 990, Qty: 5}, 42)

	waitFor(t, func() bool { return len(sink.snapshot()) == 2 })

	entries := sink.snapshot()
	if entries[0].Hedge || !entries[1].Hedge {
		t.Fatalf("hedge flags = %v, %v", entries[0].Hedge, entries[1].Hedge)
	}
	if entries[0].Instrument != uint16(schema.InstrumentTradable) {
		t.Fatalf("fill instrument = %d", entries[0].Instrument)
	}
	if entries[1].Side != uint16(schema.SideSell) {
		t.Fatalf("hedge side = %d", entries[1].Side)
	}
	if entries[0].TraceID != 42 || entries[1].TraceID != 42 {
		t.Fatalf("trace ids = %d, %d", entries[0].TraceID, entries[1].TraceID)
	}
}

func TestRecordDropsWhenFull(t *testing.T) {
	sink := &memorySink{}
	j := New(2, sink)

	for id := uint64(1); id <= 5; id++ {
		j.RecordFill(schema.InstrumentTradable, schema.Fill{OrderID: id, Qty: 1}, 0)
	}
	if got := j.Dropped(); got != 3 {
		t.Fatalf("dropped = %d, want 3", got)
	}
	if got := j.Depth(); got != 2 {
		t.Fatalf("depth = %d, want 2", got)
	}
}

func TestNilSinkDisablesJournal(t *testing.T) {
	j := New(4, nil)
	j.Run(context.Background())
	j.RecordFill(schema.InstrumentTradable, schema.Fill{OrderID: 1, Qty: 1}, 0)
	if got := j.Depth(); got != 0 {
		t.Fatalf("depth = %d, want 0", got)
	}
}
