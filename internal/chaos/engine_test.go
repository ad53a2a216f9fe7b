package chaos

import (
	"testing"
	"time"

	"main/internal/bus"
	"main/internal/schema"
)

func bookEvent(seq uint64) bus.Event {
	return bus.Event{
		Header: schema.NewHeader(schema.EventBookUpdate, 0, seq, int64(seq)*1000, int64(seq)*1000+10),
	}
}

func TestValidateRejectsBadRates(t *testing.T) {
	bad := []Config{
		{DropRate: -0.1, ReorderWindow: 1},
		{DropRate: 1.1, ReorderWindow: 1},
		{DuplicateRate: 2, ReorderWindow: 1},
		{MaxDelay: -time.Second, ReorderWindow: 1},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("config %d: expected validation error", i)
		}
	}
}

func TestPassthroughWithoutChaos(t *testing.T) {
	eng, err := NewEngine(Config{Seed: 1})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	for seq := uint64(1); seq <= 10; seq++ {
		out := eng.Process(bookEvent(seq))
		if len(out) != 1 || out[0].Header.Seq != seq {
			t.Fatalf("seq %d: got %d events", seq, len(out))
		}
	}
	if extra := eng.Flush(); len(extra) != 0 {
		t.Fatalf("flush returned %d events, want 0", len(extra))
	}
}

func TestDropRateOneDropsEverything(t *testing.T) {
	eng, err := NewEngine(Config{Seed: 1, DropRate: 1})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	for seq := uint64(1); seq <= 10; seq++ {
		if out := eng.Process(bookEvent(seq)); len(out) != 0 {
			t.Fatalf("seq %d survived a full drop", seq)
		}
	}
}

func TestDuplicateRateOneDoublesEverything(t *testing.T) {
	eng, err := NewEngine(Config{Seed: 1, DuplicateRate: 1})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	out := eng.Process(bookEvent(5))
	if len(out) != 2 {
		t.Fatalf("got %d events, want 2", len(out))
	}
	if out[0].Header.Seq != 5 || out[1].Header.Seq != 5 {
		t.Fatalf("duplicate carries a different seq: %+v", out)
	}
}

func TestReorderPreservesEventSet(t *testing.T) {
	eng, err := NewEngine(Config{Seed: 42, ReorderWindow: 4})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	seen := map[uint64]int{}
	total := 0
	for seq := uint64(1); seq <= 20; seq++ {
		for _, ev := range eng.Process(bookEvent(seq)) {
			seen[ev.Header.Seq]++
			total++
		}
	}
	for _, ev := range eng.Flush() {
		seen[ev.Header.Seq]++
		total++
	}

	if total != 20 {
		t.Fatalf("got %d events, want 20", total)
	}
	for seq := uint64(1); seq <= 20; seq++ {
		if seen[seq] != 1 {
			t.Fatalf("seq %d seen %d times", seq, seen[seq])
		}
	}
}

func TestDelayOnlyMovesReceiveTime(t *testing.T) {
	eng, err := NewEngine(Config{Seed: 7, MaxDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	in := bookEvent(3)
	out := eng.Process(in)
	if len(out) != 1 {
		t.Fatalf("got %d events, want 1", len(out))
	}
	if out[0].Header.TsEvent != in.Header.TsEvent {
		t.Fatalf("event time changed")
	}
	if out[0].Header.TsRecv < in.Header.TsRecv {
		t.Fatalf("receive time moved backwards")
	}
}
