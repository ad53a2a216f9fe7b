package mdg

import (
	"fmt"
	"time"

	"main/internal/schema"
)

// Normalizer maps raw book frames to schema events.
type Normalizer struct {
	reg *schema.Registry
}

// NewNormalizer creates a normalizer for a registry.
func NewNormalizer(reg *schema.Registry) *Normalizer {
	return &Normalizer{reg: reg}
}

// Normalize converts a raw book into a schema event and header. Prices
// outside the instrument's bounds zero the offending side, matching
// how a live feed reports an empty book edge.
func (n *Normalizer) Normalize(seq uint64, raw RawBook) (schema.EventHeader, schema.BookUpdate, error) {
	if n.reg == nil {
		return schema.EventHeader{}, schema.BookUpdate{}, fmt.Errorf("registry is nil")
	}
	tag, ok := n.reg.ByName(raw.Symbol)
	if !ok {
		return schema.EventHeader{}, schema.BookUpdate{}, fmt.Errorf("instrument not found: %s", raw.Symbol)
	}
	spec, _ := n.reg.Spec(tag)

	if raw.TsRecv == 0 {
		raw.TsRecv = time.Now().UTC().UnixNano()
	}
	if raw.TsEvent == 0 {
		raw.TsEvent = raw.TsRecv
	}

	header := schema.NewHeader(schema.EventBookUpdate, raw.Source, seq, raw.TsEvent, raw.TsRecv)
	book := schema.BookUpdate{
		Instrument: tag,
		Seq:        seq,
	}

	minBid := spec.MinBidNearestTick()
	maxAsk := spec.MaxAskNearestTick()
	for i := 0; i < schema.TopLevelCount; i++ {
		if raw.BidPrices[i] >= minBid && raw.BidPrices[i] <= maxAsk {
			book.BidPrices[i] = raw.BidPrices[i]
			book.BidVolumes[i] = raw.BidVolumes[i]
		}
		if raw.AskPrices[i] >= minBid && raw.AskPrices[i] <= maxAsk {
			book.AskPrices[i] = raw.AskPrices[i]
			book.AskVolumes[i] = raw.AskVolumes[i]
		}
	}
	return header, book, nil
}
