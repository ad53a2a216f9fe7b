package schema

import "fmt"

// Scale is the number of decimal places used by a scaled integer.
// Example: Scale=2 means the integer value is scaled by 1e2.
type Scale int32

// ScaleSpec defines scaling for common numeric fields.
type ScaleSpec struct {
	PriceScale    Scale
	QuantityScale Scale
	FeeScale      Scale
}

// InstrumentSpec describes one of the two books the engine trades against.
type InstrumentSpec struct {
	Instrument Instrument
	Name       string
	TickSize   Price
	MinBid     Price
	MaxAsk     Price
	Scale      ScaleSpec
}

// MinBidNearestTick returns the lowest valid bid price on the tick grid
// that is strictly above the minimum bound.
func (s InstrumentSpec) MinBidNearestTick() Price {
	return (s.MinBid + s.TickSize) / s.TickSize * s.TickSize
}

// MaxAskNearestTick returns the highest valid ask price on the tick grid
// at or below the maximum bound.
func (s InstrumentSpec) MaxAskNearestTick() Price {
	return s.MaxAsk / s.TickSize * s.TickSize
}

// Registry stores the instrument specs keyed by Instrument tag.
type Registry struct {
	specs  []InstrumentSpec
	byName map[string]Instrument
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Instrument),
	}
}

// Add registers an instrument spec. The tag must be Reference or Tradable
// and each tag may be registered once.
func (r *Registry) Add(spec InstrumentSpec) error {
	if spec.Instrument != InstrumentReference && spec.Instrument != InstrumentTradable {
		return fmt.Errorf("invalid instrument tag: %d", spec.Instrument)
	}
	if spec.Name == "" {
		return fmt.Errorf("instrument name is empty")
	}
	if spec.TickSize <= 0 {
		return fmt.Errorf("tick size must be positive: %d", spec.TickSize)
	}
	if spec.MinBid < 0 || spec.MaxAsk <= spec.MinBid {
		return fmt.Errorf("invalid price bounds: min bid %d, max ask %d", spec.MinBid, spec.MaxAsk)
	}
	if _, ok := r.Spec(spec.Instrument); ok {
		return fmt.Errorf("instrument already registered: %s", spec.Instrument)
	}
	if _, ok := r.byName[spec.Name]; ok {
		return fmt.Errorf("instrument name already registered: %s", spec.Name)
	}
	r.specs = append(r.specs, spec)
	r.byName[spec.Name] = spec.Instrument
	return nil
}

// Spec returns the spec for an instrument tag.
func (r *Registry) Spec(instrument Instrument) (InstrumentSpec, bool) {
	for _, spec := range r.specs {
		if spec.Instrument == instrument {
			return spec, true
		}
	}
	return InstrumentSpec{}, false
}

// ByName returns the instrument tag for a configured name.
func (r *Registry) ByName(name string) (Instrument, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Count returns the number of registered instruments.
func (r *Registry) Count() int {
	return len(r.specs)
}
