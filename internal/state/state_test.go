package state

import (
	"context"
	"path/filepath"
	"testing"

	"main/internal/codec"
	"main/internal/recorder"
	"main/internal/schema"
)

func TestReducerSignsFillsBySide(t *testing.T) {
	r := NewPositionReducer()

	if got := r.ApplyFill(schema.InstrumentTradable, schema.Fill{Side: schema.SideBuy, Qty: 10}); got != 10 {
		t.Fatalf("after buy: %d, want 10", got)
	}
	if got := r.ApplyFill(schema.InstrumentTradable, schema.Fill{Side: schema.SideSell, Qty: 25}); got != -15 {
		t.Fatalf("after sell: %d, want -15", got)
	}
	if got := r.ApplyFill(schema.InstrumentReference, schema.Fill{Side: schema.SideSell, Qty: 10}); got != -10 {
		t.Fatalf("reference leg: %d, want -10", got)
	}
	if got := r.Position(schema.InstrumentTradable); got != -15 {
		t.Fatalf("tradable position: %d, want -15", got)
	}
	if r.Count() != 2 {
		t.Fatalf("count = %d, want 2", r.Count())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	r := NewPositionReducer()
	r.ApplyFill(schema.InstrumentTradable, schema.Fill{Side: schema.SideBuy, Qty: 7})
	r.ApplyFill(schema.InstrumentReference, schema.Fill{Side: schema.SideSell, Qty: 7})

	snap := r.SnapshotWithMeta(99, 12345)
	if snap.LastSeq != 99 || snap.LastEventTs != 12345 {
		t.Fatalf("meta = %d/%d", snap.LastSeq, snap.LastEventTs)
	}

	path := filepath.Join(t.TempDir(), "positions.json")
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := CompareSnapshots(snap, loaded); err != nil {
		t.Fatalf("compare: %v", err)
	}

	restored := NewPositionReducer()
	restored.ApplySnapshot(loaded)
	if got := restored.Position(schema.InstrumentTradable); got != 7 {
		t.Fatalf("restored tradable: %d, want 7", got)
	}
	if got := restored.Position(schema.InstrumentReference); got != -7 {
		t.Fatalf("restored reference: %d, want -7", got)
	}
}

func TestCompareSnapshotsCatchesDrift(t *testing.T) {
	a := Snapshot{Positions: []PositionEntry{{Instrument: schema.InstrumentTradable, Qty: 5}}}
	b := Snapshot{Positions: []PositionEntry{{Instrument: schema.InstrumentTradable, Qty: 6}}}
	if err := CompareSnapshots(a, b); err == nil {
		t.Fatalf("expected qty mismatch error")
	}
}

func writeJournal(t *testing.T, dir string, events []struct {
	seq  uint64
	typ  schema.EventType
	fill schema.Fill
}) {
	t.Helper()
	w, err := recorder.NewWriter(recorder.DefaultConfig(dir))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, ev := range events {
		header := schema.NewHeader(ev.typ, 0, ev.seq, int64(ev.seq)*1000, int64(ev.seq)*1000)
		if err := w.TryAppend(header, codec.EncodeFill(nil, ev.fill)); err != nil {
			t.Fatalf("append seq %d: %v", ev.seq, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecoverReplaysJournalTail(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir, []struct {
		seq  uint64
		typ  schema.EventType
		fill schema.Fill
	}{
		{1, schema.EventOrderFilled, schema.Fill{OrderID: 1, Side: schema.SideBuy, Price: 1000, Qty: 10}},
		{2, schema.EventHedgeFilled, schema.Fill{OrderID: 1, Side: schema.SideSell, Price: 990, Qty: 10}},
		{3, schema.EventBookUpdate, schema.Fill{}},
		{4, schema.EventOrderFilled, schema.Fill{OrderID: 2, Side: schema.SideSell, Price: 1010, Qty: 4}},
	})

	res, err := RecoverPositions(context.Background(), RecoverConfig{WALDir: dir})
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got := res.Positions.Position(schema.InstrumentTradable); got != 6 {
		t.Fatalf("tradable = %d, want 6", got)
	}
	if got := res.Positions.Position(schema.InstrumentReference); got != -10 {
		t.Fatalf("reference = %d, want -10", got)
	}
	if res.LastSeq != 4 {
		t.Fatalf("lastSeq = %d, want 4", res.LastSeq)
	}
}

func TestRecoverSkipsEventsCoveredBySnapshot(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir, []struct {
		seq  uint64
		typ  schema.EventType
		fill schema.Fill
	}{
		{1, schema.EventOrderFilled, schema.Fill{OrderID: 1, Side: schema.SideBuy, Qty: 10}},
		{2, schema.EventOrderFilled, schema.Fill{OrderID: 2, Side: schema.SideBuy, Qty: 3}},
	})

	snapPath := filepath.Join(t.TempDir(), "snap.json")
	snap := Snapshot{
		LastSeq: 1,
		Positions: []PositionEntry{
			{Instrument: schema.InstrumentTradable, Qty: 10},
		},
	}
	if err := WriteSnapshot(snapPath, snap); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	res, err := RecoverPositions(context.Background(), RecoverConfig{
		WALDir:       dir,
		SnapshotPath: snapPath,
	})
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got := res.Positions.Position(schema.InstrumentTradable); got != 13 {
		t.Fatalf("tradable = %d, want 13 (snapshot 10 + tail 3)", got)
	}
	if res.LastSeq != 2 {
		t.Fatalf("lastSeq = %d, want 2", res.LastSeq)
	}
}
