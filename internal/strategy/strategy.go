package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"main/internal/schema"
)

// Kind selects a quoting strategy variant.
type Kind uint16

const (
	KindUnknown Kind = iota
	KindMirror
	KindTrend
	KindStatArb
	KindPeak
)

// ParseKind maps a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "mirror":
		return KindMirror, nil
	case "trend":
		return KindTrend, nil
	case "statarb":
		return KindStatArb, nil
	case "peak":
		return KindPeak, nil
	default:
		return KindUnknown, fmt.Errorf("unknown strategy kind: %q", s)
	}
}

func (k Kind) String() string {
	switch k {
	case KindMirror:
		return "mirror"
	case KindTrend:
		return "trend"
	case KindStatArb:
		return "statarb"
	case KindPeak:
		return "peak"
	default:
		return "unknown"
	}
}

// Level is one book's touch.
type Level struct {
	BidPrice  schema.Price
	BidVolume schema.Quantity
	AskPrice  schema.Price
	AskVolume schema.Quantity
}

// Mid returns the midpoint and false when either side is empty.
func (l Level) Mid() (float64, bool) {
	if l.BidPrice == 0 || l.AskPrice == 0 {
		return 0, false
	}
	return float64(l.BidPrice+l.AskPrice) / 2, true
}

// Snapshot is the engine's view handed to a strategy on every book
// update: both touches, which book moved, and the inventory state.
type Snapshot struct {
	Updated   schema.Instrument
	Reference Level
	Tradable  Level
	Position  schema.Quantity
	Unwind    bool
}

// Quote is one desired order. Lifespan GoodForDay quotes are
// reconciled against the resting slot on that side; FillAndKill quotes
// fire immediately and never rest. Qty zero pulls the side.
type Quote struct {
	Side     schema.Side
	Price    schema.Price
	Qty      schema.Quantity
	Lifespan schema.Lifespan
}

// Strategy turns book snapshots into desired quotes. Implementations
// keep their own rolling state and are called from the single engine
// goroutine only.
type Strategy interface {
	Kind() Kind
	Decide(snap Snapshot) []Quote
}

// Config carries everything a variant needs, resolved from the ops
// layer: sizing, bounds, fees and window lengths.
type Config struct {
	Kind             Kind
	LotSize          schema.Quantity
	PositionLimit    schema.Quantity
	LimitBuffer      schema.Quantity
	TransactionLimit schema.Quantity
	TickSize         schema.Price
	// MinBidPrice and MaxAskPrice are the tick-aligned bound prices of
	// the tradable book, used for worst-case aggressive clips.
	MinBidPrice  schema.Price
	MaxAskPrice  schema.Price
	TakerFee     decimal.Decimal
	MakerFee     decimal.Decimal
	ProfitMargin decimal.Decimal
	GapWindow    int
}

// FeeRate folds taker fee, maker rebate and profit margin into the
// one rate quotes must clear.
func (c Config) FeeRate() decimal.Decimal {
	return c.TakerFee.Add(c.MakerFee).Add(c.ProfitMargin)
}

// New constructs the configured variant.
func New(cfg Config) (Strategy, error) {
	switch cfg.Kind {
	case KindMirror:
		return NewMirror(cfg), nil
	case KindTrend:
		return NewTrend(cfg), nil
	case KindStatArb:
		return NewStatArb(cfg), nil
	case KindPeak:
		return NewPeak(cfg), nil
	default:
		return nil, fmt.Errorf("unknown strategy kind: %d", cfg.Kind)
	}
}
