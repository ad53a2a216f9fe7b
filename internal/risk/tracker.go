package risk

import (
	"main/internal/schema"
	"main/pkg/exception"
)

// Config defines the inventory limits and hedge prices.
type Config struct {
	// PositionLimit is the hard bound: |position| never exceeds it at
	// committed states.
	PositionLimit schema.Quantity `json:"positionLimit"`
	// SoftLimit triggers unwind mode when |position| moves beyond it.
	SoftLimit schema.Quantity `json:"softLimit"`
	// HedgeBidPrice is the lowest tick-aligned bid on the reference
	// book; hedge sells go out at this worst-case price.
	HedgeBidPrice schema.Price `json:"hedgeBidPrice"`
	// HedgeAskPrice is the highest tick-aligned ask on the reference
	// book; hedge buys go out at this worst-case price.
	HedgeAskPrice schema.Price `json:"hedgeAskPrice"`
	// EnableHedging gates hedge command emission.
	EnableHedging bool `json:"enableHedging"`
}

// CommandSink receives the hedge commands the tracker emits.
type CommandSink interface {
	Submit(schema.Command) error
}

// Tracker keeps the signed tradable position and hedges every fill
// unconditionally on the opposite side of the reference book. Hedge
// orders draw from their own id sequence; hedge events carry a
// distinct type so the spaces never collide.
type Tracker struct {
	cfg         Config
	sink        CommandSink
	position    schema.Quantity
	hedged      schema.Quantity
	nextHedgeID uint64
}

// NewTracker creates a tracker emitting hedge commands into sink.
func NewTracker(cfg Config, sink CommandSink) *Tracker {
	return &Tracker{cfg: cfg, sink: sink, nextHedgeID: 1}
}

// Position returns the signed tradable position.
func (t *Tracker) Position() schema.Quantity {
	return t.position
}

// Hedged returns the signed reference-leg position built by hedges.
func (t *Tracker) Hedged() schema.Quantity {
	return t.hedged
}

// SetPosition seeds the position, used on snapshot recovery.
func (t *Tracker) SetPosition(pos schema.Quantity) {
	t.position = pos
}

// Limit returns the hard position limit.
func (t *Tracker) Limit() schema.Quantity {
	return t.cfg.PositionLimit
}

// Unwinding reports whether |position| has moved past the soft limit.
func (t *Tracker) Unwinding() bool {
	if t.cfg.SoftLimit <= 0 {
		return false
	}
	return absQty(t.position) > t.cfg.SoftLimit
}

// CheckLimit reports whether a trade of size on side would push the
// position outside the hard limit.
func (t *Tracker) CheckLimit(side schema.Side, size schema.Quantity) error {
	next := t.position
	switch side {
	case schema.SideBuy:
		next += size
	case schema.SideSell:
		next -= size
	}
	if absQty(next) > t.cfg.PositionLimit {
		return exception.ErrLimitBreach
	}
	return nil
}

// RestingSize returns the largest size that may rest on a side without
// a worst-case full fill breaching the hard limit.
func (t *Tracker) RestingSize(side schema.Side) schema.Quantity {
	var size schema.Quantity
	switch side {
	case schema.SideBuy:
		size = t.cfg.PositionLimit - t.position
	case schema.SideSell:
		size = t.cfg.PositionLimit + t.position
	}
	if size < 0 {
		return 0
	}
	return size
}

// OnFill applies a tradable fill and immediately emits the offsetting
// hedge: a bid fill raises the position and hedges with a sell at the
// worst-case reference bid; an ask fill lowers it and hedges with a
// buy at the worst-case reference ask. Hedges are never netted or
// deferred, so the transient exposure window stays one event wide.
func (t *Tracker) OnFill(fill schema.Fill) error {
	switch fill.Side {
	case schema.SideBuy:
		t.position += fill.Qty
	case schema.SideSell:
		t.position -= fill.Qty
	default:
		return nil
	}

	if !t.cfg.EnableHedging {
		return nil
	}

	hedge := schema.HedgeOrder{
		OrderID: t.nextHedgeID,
		Side:    fill.Side.Opposite(),
		Qty:     fill.Qty,
	}
	if hedge.Side == schema.SideSell {
		hedge.Price = t.cfg.HedgeBidPrice
	} else {
		hedge.Price = t.cfg.HedgeAskPrice
	}

	if err := t.sink.Submit(schema.NewHedge(hedge)); err != nil {
		return err
	}
	t.nextHedgeID++
	return nil
}

// OnHedgeFill records the reference-leg execution of a hedge.
func (t *Tracker) OnHedgeFill(fill schema.Fill) {
	switch fill.Side {
	case schema.SideBuy:
		t.hedged += fill.Qty
	case schema.SideSell:
		t.hedged -= fill.Qty
	}
}

// HedgingEnabled reports whether fills emit hedge commands.
func (t *Tracker) HedgingEnabled() bool {
	return t.cfg.EnableHedging
}

// SetConfig swaps the limits, used by config hot-reload.
func (t *Tracker) SetConfig(cfg Config) {
	t.cfg = cfg
}

func absQty(q schema.Quantity) schema.Quantity {
	if q < 0 {
		return -q
	}
	return q
}
