package mdg

import (
	"fmt"
	"math/rand"
	"time"

	"main/internal/schema"
)

// Config shapes the synthetic walk.
type Config struct {
	Seed       int64
	BasePrice  schema.Price
	TickSize   schema.Price
	// Premium offsets the tradable mid from the reference mid.
	Premium schema.Price
	// StepTicks bounds one walk step, in ticks.
	StepTicks int
	// Correlation in [0,1] is the share of each reference move copied
	// into the tradable leg; the rest is independent noise.
	Correlation float64
	BaseVolume  schema.Quantity
}

// Generator produces a correlated two-instrument book walk. The
// reference leg leads with a random walk and the tradable leg follows
// it with noise, alternating one book per call so both feeds
// interleave the way a live session does.
type Generator struct {
	cfg     Config
	reg     *schema.Registry
	rng     *rand.Rand
	refMid  float64
	tradMid float64
	turn    int
}

// RawBook is one generated top-of-book frame before normalization.
type RawBook struct {
	Symbol     string
	BidPrices  [schema.TopLevelCount]schema.Price
	BidVolumes [schema.TopLevelCount]schema.Quantity
	AskPrices  [schema.TopLevelCount]schema.Price
	AskVolumes [schema.TopLevelCount]schema.Quantity
	Source     uint16
	TsEvent    int64
	TsRecv     int64
}

// NewGenerator creates a generator for the registry's two instruments.
func NewGenerator(reg *schema.Registry, cfg Config) (*Generator, error) {
	if reg == nil || reg.Count() != 2 {
		return nil, fmt.Errorf("registry must hold both instruments")
	}
	if cfg.BasePrice <= 0 {
		return nil, fmt.Errorf("base price must be > 0")
	}
	if cfg.TickSize <= 0 {
		return nil, fmt.Errorf("tick size must be > 0")
	}
	if cfg.StepTicks <= 0 {
		cfg.StepTicks = 1
	}
	if cfg.Correlation < 0 {
		cfg.Correlation = 0
	}
	if cfg.Correlation > 1 {
		cfg.Correlation = 1
	}
	if cfg.BaseVolume <= 0 {
		cfg.BaseVolume = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Generator{
		cfg:     cfg,
		reg:     reg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		refMid:  float64(cfg.BasePrice),
		tradMid: float64(cfg.BasePrice + cfg.Premium),
	}, nil
}

// Next advances the walk and returns the next book frame, alternating
// reference and tradable.
func (g *Generator) Next(now time.Time) RawBook {
	step := float64(g.cfg.TickSize) * float64(g.cfg.StepTicks)
	refMove := (g.rng.Float64()*2 - 1) * step
	g.refMid += refMove
	g.tradMid += g.cfg.Correlation*refMove + (1-g.cfg.Correlation)*(g.rng.Float64()*2-1)*step

	floor := float64(g.cfg.TickSize) * 2
	if g.refMid < floor {
		g.refMid = floor
	}
	if g.tradMid < floor {
		g.tradMid = floor
	}

	var spec schema.InstrumentSpec
	var mid float64
	if g.turn%2 == 0 {
		spec, _ = g.reg.Spec(schema.InstrumentReference)
		mid = g.refMid
	} else {
		spec, _ = g.reg.Spec(schema.InstrumentTradable)
		mid = g.tradMid
	}
	g.turn++

	book := RawBook{
		Symbol:  spec.Name,
		TsEvent: now.UnixNano(),
		TsRecv:  now.UnixNano(),
	}

	tick := g.cfg.TickSize
	bestBid := schema.Price(mid) / tick * tick
	bestAsk := bestBid + tick
	for i := 0; i < schema.TopLevelCount; i++ {
		book.BidPrices[i] = bestBid - tick*schema.Price(i)
		book.AskPrices[i] = bestAsk + tick*schema.Price(i)
		book.BidVolumes[i] = g.cfg.BaseVolume + schema.Quantity(g.rng.Intn(int(g.cfg.BaseVolume)+1))
		book.AskVolumes[i] = g.cfg.BaseVolume + schema.Quantity(g.rng.Intn(int(g.cfg.BaseVolume)+1))
	}
	return book
}
