package strategy

import (
	"testing"

	"github.com/shopspring/decimal"

	"main/internal/schema"
)

func peakConfig() Config {
	return Config{
		Kind:          KindPeak,
		LotSize:       5,
		PositionLimit: 100,
		TickSize:      10,
		MinBidPrice:   10,
		MaxAskPrice:   1 << 30,
		TakerFee:      decimal.Zero,
		MakerFee:      decimal.Zero,
		ProfitMargin:  decimal.Zero,
	}
}

func TestPeakSellsWhenGapStopsRising(t *testing.T) {
	s := NewPeak(peakConfig())

	// reference ask pinned at 1000; tradable bid walks 1010, 1030,
	// 1020, so the sell gap rises then falls
	bids := []schema.Price{1010, 1030, 1020}
	var quotes []Quote
	for _, bid := range bids {
		quotes = s.Decide(Snapshot{
			Updated:   schema.InstrumentTradable,
			Reference: Level{AskPrice: 1000},
			Tradable:  Level{BidPrice: bid},
		})
	}

	if len(quotes) != 1 {
		t.Fatalf("quotes = %+v, want one sell", quotes)
	}
	q := quotes[0]
	if q.Side != schema.SideSell || q.Lifespan != schema.LifespanGoodForDay {
		t.Fatalf("quote = %+v, want resting sell", q)
	}
	if q.Price != 1020 || q.Qty != 5 {
		t.Fatalf("quote = %+v, want 5 @ 1020", q)
	}
}

func TestPeakStaysQuietWhileGapRises(t *testing.T) {
	s := NewPeak(peakConfig())

	for _, bid := range []schema.Price{1010, 1020, 1030, 1040} {
		quotes := s.Decide(Snapshot{
			Updated:   schema.InstrumentTradable,
			Reference: Level{AskPrice: 1000},
			Tradable:  Level{BidPrice: bid},
		})
		if quotes != nil {
			t.Fatalf("quotes = %+v on a still-rising gap", quotes)
		}
	}
}

func TestPeakBuyDirection(t *testing.T) {
	s := NewPeak(peakConfig())

	// reference bid pinned at 1100; tradable ask walks down then back
	// up, so the buy gap rises then falls
	asks := []schema.Price{1080, 1050, 1060}
	var quotes []Quote
	for _, ask := range asks {
		quotes = s.Decide(Snapshot{
			Updated:   schema.InstrumentTradable,
			Reference: Level{BidPrice: 1100},
			Tradable:  Level{AskPrice: ask},
		})
	}

	if len(quotes) != 1 {
		t.Fatalf("quotes = %+v, want one buy", quotes)
	}
	q := quotes[0]
	if q.Side != schema.SideBuy || q.Price != 1060 || q.Qty != 5 {
		t.Fatalf("quote = %+v, want buy 5 @ 1060", q)
	}
}

func TestPeakDirectionalLimitCheck(t *testing.T) {
	cfg := peakConfig()
	cfg.PositionLimit = 10
	s := NewPeak(cfg)

	// short at the limit: another sell lot would breach
	for _, bid := range []schema.Price{1010, 1030, 1020} {
		quotes := s.Decide(Snapshot{
			Updated:   schema.InstrumentTradable,
			Reference: Level{AskPrice: 1000},
			Tradable:  Level{BidPrice: bid},
			Position:  -8,
		})
		if quotes != nil {
			t.Fatalf("quotes = %+v, want none past the directional limit", quotes)
		}
	}
}

func TestPeakFeeAdjustedPricing(t *testing.T) {
	cfg := peakConfig()
	cfg.TakerFee = decimal.RequireFromString("0.0002")
	cfg.MakerFee = decimal.RequireFromString("-0.0001")
	cfg.ProfitMargin = decimal.RequireFromString("0.0009")
	s := NewPeak(cfg)

	var quotes []Quote
	for _, bid := range []schema.Price{1010, 1030, 1020} {
		quotes = s.Decide(Snapshot{
			Updated:   schema.InstrumentTradable,
			Reference: Level{AskPrice: 1000},
			Tradable:  Level{BidPrice: bid},
		})
	}

	// 1020 * 1.001 = 1021.02, ceiled to the 10-tick grid
	if len(quotes) != 1 || quotes[0].Price != 1030 {
		t.Fatalf("quotes = %+v, want sell @ 1030", quotes)
	}
}
