package strategy

import (
	"math"

	"main/internal/indicator"
	"main/internal/schema"
)

// StatArb trades mean reversion of the spread between the two books.
// The gap is the reference mid minus the tradable mid; a gap more than
// one combined standard deviation above its rolling mean means the
// tradable leg is cheap, so buy it, and the mirror case sells it. The
// clip is sized by how many deviations the gap has stretched.
type StatArb struct {
	cfg      Config
	gaps     *indicator.Window[float64]
	refMids  *indicator.Window[float64]
	tradMids *indicator.Window[float64]
}

// NewStatArb builds the statistical arbitrage variant.
func NewStatArb(cfg Config) *StatArb {
	n := cfg.GapWindow
	if n < 2 {
		n = 2
	}
	return &StatArb{
		cfg:      cfg,
		gaps:     indicator.NewWindow[float64](n),
		refMids:  indicator.NewWindow[float64](n),
		tradMids: indicator.NewWindow[float64](n),
	}
}

func (s *StatArb) Kind() Kind {
	return KindStatArb
}

// SignalSize converts a gap excursion into a clip size:
// ceil(|gap-mean| / stddev), capped at max. Zero when stddev is zero.
func SignalSize(gap, mean, stddev float64, max schema.Quantity) schema.Quantity {
	if stddev <= 0 {
		return 0
	}
	size := schema.Quantity(math.Ceil(math.Abs(gap-mean) / stddev))
	if size > max {
		return max
	}
	return size
}

func (s *StatArb) Decide(snap Snapshot) []Quote {
	refMid, ok := snap.Reference.Mid()
	if !ok {
		return nil
	}
	tradMid, ok := snap.Tradable.Mid()
	if !ok {
		return nil
	}

	gap := refMid - tradMid
	s.gaps.Push(gap)
	s.refMids.Push(refMid)
	s.tradMids.Push(tradMid)

	if !s.gaps.Full() {
		return nil
	}

	mean, _, err := indicator.MeanStdDev(s.gaps)
	if err != nil {
		return nil
	}
	_, refSD, err := indicator.MeanStdDev(s.refMids)
	if err != nil {
		return nil
	}
	_, tradSD, err := indicator.MeanStdDev(s.tradMids)
	if err != nil {
		return nil
	}
	stddev := indicator.CombinedStdDev(refSD, tradSD)
	if stddev <= 0 {
		return nil
	}

	switch {
	case gap > mean+stddev:
		size := SignalSize(gap, mean, stddev, s.cfg.TransactionLimit)
		size = s.buffered(schema.SideBuy, size, snap.Position)
		if size <= 0 || snap.Tradable.AskPrice == 0 {
			return nil
		}
		return []Quote{{
			Side:     schema.SideBuy,
			Price:    snap.Tradable.AskPrice,
			Qty:      size,
			Lifespan: schema.LifespanFillAndKill,
		}}
	case gap < mean-stddev:
		size := SignalSize(gap, mean, stddev, s.cfg.TransactionLimit)
		size = s.buffered(schema.SideSell, size, snap.Position)
		if size <= 0 || snap.Tradable.BidPrice == 0 {
			return nil
		}
		return []Quote{{
			Side:     schema.SideSell,
			Price:    snap.Tradable.BidPrice,
			Qty:      size,
			Lifespan: schema.LifespanFillAndKill,
		}}
	default:
		return nil
	}
}

// buffered trims a clip so the resulting position stays LimitBuffer
// inside the hard limit.
func (s *StatArb) buffered(side schema.Side, size schema.Quantity, pos schema.Quantity) schema.Quantity {
	bound := s.cfg.PositionLimit - s.cfg.LimitBuffer
	if bound < 0 {
		bound = 0
	}

	var room schema.Quantity
	switch side {
	case schema.SideBuy:
		room = bound - pos
	case schema.SideSell:
		room = bound + pos
	}
	if room <= 0 {
		return 0
	}
	if size > room {
		return room
	}
	return size
}
