package state

import "main/internal/schema"

// PositionReducer folds fill events into signed per-instrument
// positions: order fills land on the tradable leg, hedge fills on the
// reference leg.
type PositionReducer struct {
	positions map[schema.Instrument]schema.Quantity
}

// NewPositionReducer creates an empty reducer.
func NewPositionReducer() *PositionReducer {
	return &PositionReducer{positions: make(map[schema.Instrument]schema.Quantity)}
}

// ApplyFill updates the instrument's position and returns the new
// quantity. Buys add, sells subtract.
func (r *PositionReducer) ApplyFill(instrument schema.Instrument, fill schema.Fill) schema.Quantity {
	current := r.positions[instrument]
	var next schema.Quantity
	switch fill.Side {
	case schema.SideBuy:
		next = current + fill.Qty
	case schema.SideSell:
		next = current - fill.Qty
	default:
		next = current
	}
	r.positions[instrument] = next
	return next
}

// ApplySnapshot replaces positions with a snapshot.
func (r *PositionReducer) ApplySnapshot(snapshot Snapshot) {
	if r.positions == nil {
		r.positions = make(map[schema.Instrument]schema.Quantity, len(snapshot.Positions))
	} else {
		for key := range r.positions {
			delete(r.positions, key)
		}
	}
	for _, entry := range snapshot.Positions {
		r.positions[entry.Instrument] = entry.Qty
	}
}

// Position returns the current position for an instrument.
func (r *PositionReducer) Position(instrument schema.Instrument) schema.Quantity {
	return r.positions[instrument]
}

// Count returns the number of instruments with tracked positions.
func (r *PositionReducer) Count() int {
	return len(r.positions)
}
