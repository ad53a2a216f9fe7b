package strategy

import (
	"main/internal/schema"
)

// Mirror quotes one tick outside the reference touch on both sides of
// the tradable book. The ask size grows with the position and the bid
// size takes the rest of the lot, so a long book leans on the offer
// and a short book leans on the bid.
type Mirror struct {
	cfg Config
}

// NewMirror builds the tick-offset mirroring variant.
func NewMirror(cfg Config) *Mirror {
	return &Mirror{cfg: cfg}
}

func (s *Mirror) Kind() Kind {
	return KindMirror
}

func (s *Mirror) Decide(snap Snapshot) []Quote {
	if snap.Updated != schema.InstrumentReference {
		return nil
	}

	askSize := (s.cfg.PositionLimit + snap.Position) / 2
	bidSize := s.cfg.LotSize - askSize
	if askSize < 0 {
		askSize = 0
	}
	if bidSize < 0 {
		bidSize = 0
	}

	quotes := make([]Quote, 0, 2)

	if snap.Reference.AskPrice > 0 && askSize > 0 {
		price := clampPrice(snap.Reference.AskPrice+s.cfg.TickSize, s.cfg.MinBidPrice, s.cfg.MaxAskPrice)
		quotes = append(quotes, Quote{
			Side:     schema.SideSell,
			Price:    price,
			Qty:      askSize,
			Lifespan: schema.LifespanGoodForDay,
		})
	} else {
		quotes = append(quotes, Quote{Side: schema.SideSell})
	}

	if snap.Reference.BidPrice > 0 && bidSize > 0 {
		price := clampPrice(snap.Reference.BidPrice-s.cfg.TickSize, s.cfg.MinBidPrice, s.cfg.MaxAskPrice)
		quotes = append(quotes, Quote{
			Side:     schema.SideBuy,
			Price:    price,
			Qty:      bidSize,
			Lifespan: schema.LifespanGoodForDay,
		})
	} else {
		quotes = append(quotes, Quote{Side: schema.SideBuy})
	}

	return quotes
}
