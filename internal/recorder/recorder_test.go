package recorder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"main/internal/codec"
	"main/internal/schema"
)

func fillEvent(seq uint64, id uint64) (schema.EventHeader, []byte) {
	header := schema.NewHeader(schema.EventOrderFilled, 0, seq, int64(seq)*1000, int64(seq)*1000)
	payload := codec.EncodeFill(nil, schema.Fill{
		OrderID: id,
		Side:    schema.SideBuy,
		Price:   1000,
		Qty:     5,
	})
	return header, payload
}

func TestWriterPlaybackRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(DefaultConfig(dir))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	for seq := uint64(1); seq <= 20; seq++ {
		header, payload := fillEvent(seq, seq)
		if err := w.TryAppend(header, payload); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	pb, err := NewPlayback(PlaybackConfig{Dir: dir})
	if err != nil {
		t.Fatalf("new playback: %v", err)
	}

	var wantSeq uint64 = 1
	err = pb.Run(context.Background(), func(header schema.EventHeader, payload []byte) error {
		if header.Seq != wantSeq {
			t.Fatalf("seq = %d, want %d", header.Seq, wantSeq)
		}
		if header.Version != schema.SchemaVersion {
			t.Fatalf("version = %d", header.Version)
		}
		fill, ok := codec.DecodeFill(payload)
		if !ok || fill.OrderID != wantSeq {
			t.Fatalf("fill decode failed at seq %d", wantSeq)
		}
		wantSeq++
		return nil
	})
	if err != nil {
		t.Fatalf("playback: %v", err)
	}
	if wantSeq != 21 {
		t.Fatalf("replayed %d events, want 20", wantSeq-1)
	}
}

func TestReaderDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	header, payload := fillEvent(1, 1)

	frame := make([]byte, recordHeaderSize)
	encodeHeader(frame, header, len(payload))
	sum := checksum(frame, payload)
	buf.Write(frame)
	buf.Write(payload)
	var sumBuf [recordChecksumSize]byte
	sumBuf[0] = byte(sum)
	sumBuf[1] = byte(sum >> 8)
	sumBuf[2] = byte(sum >> 16)
	sumBuf[3] = byte(sum >> 24)
	buf.Write(sumBuf[:])

	raw := buf.Bytes()
	raw[recordHeaderSize] ^= 0xFF

	r := NewReader(bytes.NewReader(raw), ReaderOptions{})
	if _, _, err := r.Next(); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("got %v, want ErrChecksumMismatch", err)
	}

	r = NewReader(bytes.NewReader(raw), ReaderOptions{DisableChecksum: true})
	if _, _, err := r.Next(); err != nil {
		t.Fatalf("checksum disabled: %v", err)
	}
}

func TestReaderEOFOnEmptyStream(t *testing.T) {
	r := NewReader(bytes.NewReader(nil), ReaderOptions{})
	if _, _, err := r.Next(); err != io.EOF {
		t.Fatalf("got %v, want EOF", err)
	}
}

func TestWriterRotatesSegments(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.SegmentMaxBytes = 128

	w, err := NewWriter(cfg)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	for seq := uint64(1); seq <= 10; seq++ {
		header, payload := fillEvent(seq, seq)
		if err := w.TryAppend(header, payload); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	segments := 0
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".wal") {
			segments++
		}
	}
	if segments < 2 {
		t.Fatalf("got %d segments, want rotation", segments)
	}
}

func TestTryAppendBeforeStart(t *testing.T) {
	w, err := NewWriter(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	header, payload := fillEvent(1, 1)
	if err := w.TryAppend(header, payload); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("got %v, want ErrNotStarted", err)
	}
}

func TestPlaybackPacesOnEventTime(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(DefaultConfig(dir))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	for seq := uint64(1); seq <= 3; seq++ {
		header, payload := fillEvent(seq, seq)
		header.TsEvent = int64(seq) * int64(time.Second)
		if err := w.TryAppend(header, payload); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	pb, err := NewPlayback(PlaybackConfig{Dir: dir, Speed: 2})
	if err != nil {
		t.Fatalf("new playback: %v", err)
	}
	clock := &captureClock{}
	pb.WithClock(clock)

	err = pb.Run(context.Background(), func(schema.EventHeader, []byte) error { return nil })
	if err != nil {
		t.Fatalf("playback: %v", err)
	}
	if len(clock.slept) != 2 {
		t.Fatalf("slept %d times, want 2", len(clock.slept))
	}
	for _, d := range clock.slept {
		if d != 500*time.Millisecond {
			t.Fatalf("slept %v, want 500ms at 2x", d)
		}
	}
}

type captureClock struct {
	slept []time.Duration
}

func (c *captureClock) Sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	return nil
}
