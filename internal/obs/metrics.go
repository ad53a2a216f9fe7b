package obs

import (
	"sync/atomic"
	"time"

	"main/internal/schema"
)

const maxEventType = int(schema.EventGatewayError)

// Metrics collects lightweight counters and latency stats. All methods
// are safe from any goroutine and tolerate a nil receiver so call
// sites never need a guard.
type Metrics struct {
	eventCounts [maxEventType + 1]uint64

	quoteInserts    uint64
	quoteReplaces   uint64
	quoteSuppressed uint64
	quotePulls      uint64
	clipsFired      uint64
	hedges          uint64
	limitRejects    uint64
	queueDrops      uint64
	queueClosed     uint64

	eventLatency  LatencyStats
	decideLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventCounts     map[schema.EventType]uint64
	QuoteInserts    uint64
	QuoteReplaces   uint64
	QuoteSuppressed uint64
	QuotePulls      uint64
	ClipsFired      uint64
	Hedges          uint64
	LimitRejects    uint64
	QueueDrops      uint64
	QueueClosed     uint64
	EventLatency    LatencySnapshot
	DecideLatency   LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveEvent increments counters and tracks feed-to-engine latency
// when both timestamps are present.
func (m *Metrics) ObserveEvent(header schema.EventHeader) {
	if m == nil {
		return
	}
	idx := int(header.Type)
	if idx >= 0 && idx < len(m.eventCounts) {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
	if header.TsEvent > 0 && header.TsRecv > 0 {
		delta := header.TsRecv - header.TsEvent
		if delta >= 0 {
			m.eventLatency.Observe(time.Duration(delta))
		}
	}
}

// IncQuoteInsert records a fresh quote reaching an empty side.
func (m *Metrics) IncQuoteInsert() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.quoteInserts, 1)
}

// IncQuoteReplace records a cancel/replace at a new price.
func (m *Metrics) IncQuoteReplace() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.quoteReplaces, 1)
}

// IncQuoteSuppressed records a same-price quote absorbed as a no-op.
func (m *Metrics) IncQuoteSuppressed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.quoteSuppressed, 1)
}

// IncQuotePull records a side pulled without replacement.
func (m *Metrics) IncQuotePull() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.quotePulls, 1)
}

// IncClipFired records an aggressive fill-and-kill clip.
func (m *Metrics) IncClipFired() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.clipsFired, 1)
}

// IncHedge records a hedge command.
func (m *Metrics) IncHedge() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.hedges, 1)
}

// IncLimitReject records a clip dropped by the limit check.
func (m *Metrics) IncLimitReject() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.limitRejects, 1)
}

// IncQueueDrop records a queue drop.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// IncQueueClosed records a closed-queue publish attempt.
func (m *Metrics) IncQueueClosed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueClosed, 1)
}

// ObserveDecide measures one strategy decision pass.
func (m *Metrics) ObserveDecide(d time.Duration) {
	if m == nil {
		return
	}
	m.decideLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	eventCounts := make(map[schema.EventType]uint64)
	for i := range m.eventCounts {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			eventCounts[schema.EventType(i)] = v
		}
	}
	return Snapshot{
		EventCounts:     eventCounts,
		QuoteInserts:    atomic.LoadUint64(&m.quoteInserts),
		QuoteReplaces:   atomic.LoadUint64(&m.quoteReplaces),
		QuoteSuppressed: atomic.LoadUint64(&m.quoteSuppressed),
		QuotePulls:      atomic.LoadUint64(&m.quotePulls),
		ClipsFired:      atomic.LoadUint64(&m.clipsFired),
		Hedges:          atomic.LoadUint64(&m.hedges),
		LimitRejects:    atomic.LoadUint64(&m.limitRejects),
		QueueDrops:      atomic.LoadUint64(&m.queueDrops),
		QueueClosed:     atomic.LoadUint64(&m.queueClosed),
		EventLatency:    m.eventLatency.Snapshot(),
		DecideLatency:   m.decideLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
