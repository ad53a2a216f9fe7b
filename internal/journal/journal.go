package journal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/schema"
)

// Entry is one executed trade, ours or the hedge leg.
type Entry struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	OrderID    uint64 `gorm:"index"`
	Instrument uint16
	Side       uint16
	Price      int64
	Qty        int64
	Hedge      bool
	TraceID    uint64
	CreatedAt  time.Time
}

// TableName keeps the table stable across gorm naming strategies.
func (Entry) TableName() string { return "trade_journal" }

// Sink persists entries.
type Sink interface {
	Save(context.Context, Entry) error
}

// Journal buffers trade entries and persists them off the hot path.
// Record never blocks; when the buffer is full the entry is dropped
// and logged, the journal is an audit trail, not the book of record.
type Journal struct {
	sink Sink

	running atomic.Bool
	dropped atomic.Uint64
	queue   chan Entry
}

// New allocates a journal writing to sink. A nil sink disables
// persistence; Record becomes a no-op.
func New(capacity int, sink Sink) *Journal {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Journal{
		sink:  sink,
		queue: make(chan Entry, capacity),
	}
}

// RecordFill journals one of our fills on the tradable leg.
func (j *Journal) RecordFill(instrument schema.Instrument, fill schema.Fill, traceID uint64) {
	j.record(Entry{
		OrderID:    fill.OrderID,
		Instrument: uint16(instrument),
		Side:       uint16(fill.Side),
		Price:      int64(fill.Price),
		Qty:        int64(fill.Qty),
		TraceID:    traceID,
	})
}

// RecordHedge journals a hedge execution on the reference leg.
func (j *Journal) RecordHedge(instrument schema.Instrument, fill schema.Fill, traceID uint64) {
	j.record(Entry{
		OrderID:    fill.OrderID,
		Instrument: uint16(instrument),
		Side:       uint16(fill.Side),
		Price:      int64(fill.Price),
		Qty:        int64(fill.Qty),
		Hedge:      true,
		TraceID:    traceID,
	})
}

// Dropped reports how many entries were shed on a full buffer.
func (j *Journal) Dropped() uint64 {
	if j == nil {
		return 0
	}
	return j.dropped.Load()
}

// Depth reports the number of buffered entries.
func (j *Journal) Depth() int {
	if j == nil {
		return 0
	}
	return len(j.queue)
}

func (j *Journal) record(entry Entry) {
	if j == nil || j.sink == nil {
		return
	}
	entry.CreatedAt = time.Now().UTC()
	select {
	case j.queue <- entry:
	default:
		j.dropped.Add(1)
		logs.Errorf("journal buffer full, dropped trade for order %d", entry.OrderID)
	}
}

// Run starts the single persistence worker.
func (j *Journal) Run(ctx context.Context) {
	if j == nil || j.sink == nil {
		return
	}
	if j.running.Swap(true) {
		return
	}

	go func() {
		for {
			select {
			case entry := <-j.queue:
				if err := j.sink.Save(ctx, entry); err != nil {
					logs.Errorf("journal save order %d: %v", entry.OrderID, err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
