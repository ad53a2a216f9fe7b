package strategy

import (
	"main/internal/indicator"
	"main/internal/schema"
)

// Trend trades tradable-book breakouts through an Ichimoku-style
// cloud. It enters flat with an aggressive clip when price breaks out
// of the cloud with the conversion line confirming, and exits on a
// line-relation reversal or a stop at the base line recorded at entry.
// Entries and exits fire as fill-and-kill clips at the bound prices so
// they never rest.
type Trend struct {
	cfg      Config
	askTrend *indicator.Trend
	bidTrend *indicator.Trend
	stop     schema.Price
}

// NewTrend builds the trend-following variant.
func NewTrend(cfg Config) *Trend {
	return &Trend{
		cfg:      cfg,
		askTrend: indicator.NewTrend(),
		bidTrend: indicator.NewTrend(),
	}
}

func (s *Trend) Kind() Kind {
	return KindTrend
}

func (s *Trend) Decide(snap Snapshot) []Quote {
	if snap.Updated != schema.InstrumentTradable {
		return nil
	}

	ask := snap.Tradable.AskPrice
	bid := snap.Tradable.BidPrice
	if ask > 0 {
		s.askTrend.Push(ask)
	}
	if bid > 0 {
		s.bidTrend.Push(bid)
	}
	if !s.askTrend.Ready() || !s.bidTrend.Ready() {
		return nil
	}

	switch {
	case snap.Position > 0:
		return s.exitLong(snap, bid)
	case snap.Position < 0:
		return s.exitShort(snap, ask)
	default:
		return s.enter(ask, bid)
	}
}

func (s *Trend) enter(ask, bid schema.Price) []Quote {
	askLines, err := s.askTrend.Lines()
	if err != nil {
		return nil
	}
	bidLines, err := s.bidTrend.Lines()
	if err != nil {
		return nil
	}

	if ask > 0 && ask > askLines.CloudTop && askLines.Conversion > askLines.Base {
		s.stop = askLines.Base
		return []Quote{{
			Side:     schema.SideBuy,
			Price:    s.cfg.MaxAskPrice,
			Qty:      s.cfg.LotSize,
			Lifespan: schema.LifespanFillAndKill,
		}}
	}

	if bid > 0 && bid < bidLines.CloudBottom && bidLines.Conversion < bidLines.Base {
		s.stop = bidLines.Base
		return []Quote{{
			Side:     schema.SideSell,
			Price:    s.cfg.MinBidPrice,
			Qty:      s.cfg.LotSize,
			Lifespan: schema.LifespanFillAndKill,
		}}
	}

	return nil
}

func (s *Trend) exitLong(snap Snapshot, bid schema.Price) []Quote {
	lines, err := s.bidTrend.Lines()
	if err != nil {
		return nil
	}
	if lines.Conversion >= lines.Base && (bid == 0 || bid >= s.stop) {
		return nil
	}
	return []Quote{{
		Side:     schema.SideSell,
		Price:    s.cfg.MinBidPrice,
		Qty:      snap.Position,
		Lifespan: schema.LifespanFillAndKill,
	}}
}

func (s *Trend) exitShort(snap Snapshot, ask schema.Price) []Quote {
	lines, err := s.askTrend.Lines()
	if err != nil {
		return nil
	}
	if lines.Conversion <= lines.Base && (ask == 0 || ask <= s.stop) {
		return nil
	}
	return []Quote{{
		Side:     schema.SideBuy,
		Price:    s.cfg.MaxAskPrice,
		Qty:      -snap.Position,
		Lifespan: schema.LifespanFillAndKill,
	}}
}
