package obs

import (
	"sync/atomic"
	"time"
)

// TraceGenerator issues the trace IDs stamped into event headers, so a
// book update and the commands and fills it caused share one ID.
type TraceGenerator struct {
	next atomic.Uint64
}

// NewTraceGenerator returns a generator starting above seed. A zero
// seed starts from the current wall clock so IDs differ across runs.
func NewTraceGenerator(seed uint64) *TraceGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	g := &TraceGenerator{}
	g.next.Store(seed)
	return g
}

// Next returns the next trace ID. A nil generator returns zero.
func (g *TraceGenerator) Next() uint64 {
	if g == nil {
		return 0
	}
	return g.next.Add(1)
}
