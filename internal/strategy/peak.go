package strategy

import (
	"main/internal/indicator"
	"main/internal/schema"
)

// peakLookback is the number of gap samples a local-peak check needs:
// one rising step and one non-rising step.
const peakLookback = 3

// Peak watches the cross-book gap in each trade direction and acts
// when a gap that had been widening stops widening, i.e. at a local
// peak of the profit opportunity. Quotes go out GoodForDay at the
// tradable's own touch, fee-adjusted so a fill still clears the
// round-trip cost.
type Peak struct {
	cfg      Config
	sellGaps *indicator.Window[float64]
	buyGaps  *indicator.Window[float64]
}

// NewPeak builds the peak-detection variant.
func NewPeak(cfg Config) *Peak {
	return &Peak{
		cfg:      cfg,
		sellGaps: indicator.NewWindow[float64](peakLookback),
		buyGaps:  indicator.NewWindow[float64](peakLookback),
	}
}

func (s *Peak) Kind() Kind {
	return KindPeak
}

func (s *Peak) Decide(snap Snapshot) []Quote {
	var quotes []Quote

	// sell direction: sell the tradable at its bid, cover on the
	// reference ask
	if snap.Tradable.BidPrice > 0 && snap.Reference.AskPrice > 0 {
		s.sellGaps.Push(float64(snap.Tradable.BidPrice - snap.Reference.AskPrice))
		if peaked(s.sellGaps) && s.fits(schema.SideSell, snap.Position) {
			price := AskAfterFees(snap.Tradable.BidPrice, s.cfg.FeeRate(), s.cfg.TickSize)
			quotes = append(quotes, Quote{
				Side:     schema.SideSell,
				Price:    clampPrice(price, s.cfg.MinBidPrice, s.cfg.MaxAskPrice),
				Qty:      s.cfg.LotSize,
				Lifespan: schema.LifespanGoodForDay,
			})
		}
	}

	// buy direction: buy the tradable at its ask, unload on the
	// reference bid
	if snap.Tradable.AskPrice > 0 && snap.Reference.BidPrice > 0 {
		s.buyGaps.Push(float64(snap.Reference.BidPrice - snap.Tradable.AskPrice))
		if peaked(s.buyGaps) && s.fits(schema.SideBuy, snap.Position) {
			price := BidAfterFees(snap.Tradable.AskPrice, s.cfg.FeeRate(), s.cfg.TickSize)
			quotes = append(quotes, Quote{
				Side:     schema.SideBuy,
				Price:    clampPrice(price, s.cfg.MinBidPrice, s.cfg.MaxAskPrice),
				Qty:      s.cfg.LotSize,
				Lifespan: schema.LifespanGoodForDay,
			})
		}
	}

	return quotes
}

// fits runs the directional limit check for one lot.
func (s *Peak) fits(side schema.Side, pos schema.Quantity) bool {
	next := pos
	switch side {
	case schema.SideBuy:
		next += s.cfg.LotSize
	case schema.SideSell:
		next -= s.cfg.LotSize
	}
	if next < 0 {
		next = -next
	}
	return next <= s.cfg.PositionLimit
}

// peaked reports a local peak: the gap rose on the previous step and
// did not rise on the latest one.
func peaked(w *indicator.Window[float64]) bool {
	if w.Len() < peakLookback {
		return false
	}
	n := w.Len()
	prev, mid, last := w.At(n-3), w.At(n-2), w.At(n-1)
	return mid > prev && last <= mid
}
