package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/engine"
	"main/internal/mdg"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/ops"
	"main/internal/paper"
	"main/internal/recorder"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/state"
	"main/internal/strategy"
)

// Paper-trades a strategy against a generated market: books come from
// the synthetic walk, fills come from the matching simulator, and the
// whole event stream is journaled so the session can be replayed.
func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	walDir := flag.String("wal-dir", "", "Journal directory for the session (empty=no recording)")
	snapshotPath := flag.String("snapshot-path", "", "Position snapshot output (default: <wal-dir>/positions.json)")
	kind := flag.String("strategy", "", "Override the configured strategy kind")
	ticks := flag.Int("ticks", 10000, "Number of book frames to run")
	seed := flag.Int64("seed", 0, "Market walk seed (0=time-based)")
	stepTicks := flag.Int("step-ticks", 2, "Walk step bound in ticks")
	correlation := flag.Float64("correlation", 0.9, "Tradable/reference correlation in [0,1]")
	premium := flag.Int64("premium", 0, "Tradable premium over the reference mid (scaled)")
	baseVolume := flag.Int64("base-volume", 50, "Displayed volume per level (scaled)")
	flag.Parse()

	if *ticks <= 0 {
		log.Fatalf("ticks must be > 0")
	}

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *kind != "" {
		parsed, err := strategy.ParseKind(*kind)
		if err != nil {
			log.Fatalf("invalid strategy: %v", err)
		}
		loaded.Strategy.Kind = parsed
	}

	strat, err := strategy.New(loaded.Strategy)
	if err != nil {
		log.Fatalf("strategy init failed: %v", err)
	}

	ctx := context.Background()
	queue := bus.NewQueue(4096)
	var seq atomic.Uint64
	traceGen := obs.NewTraceGenerator(0)
	metrics := obs.NewMetrics()
	sim := paper.NewSimulator(queue, &seq, traceGen)

	quotes := og.NewManager(sim)
	tracker := risk.NewTracker(loaded.Risk, sim)
	eng := engine.New(loaded.Engine, quotes, tracker, strat, nil, metrics)

	var writer *recorder.Writer
	if *walDir != "" {
		writer, err = recorder.NewWriter(recorder.DefaultConfig(*walDir))
		if err != nil {
			log.Fatalf("journal init failed: %v", err)
		}
		if err := writer.Start(ctx); err != nil {
			log.Fatalf("journal start failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx, func(e bus.Event) {
			if writer != nil {
				if err := writer.TryAppend(e.Header, e.Payload); err != nil {
					log.Printf("journal append: %v", err)
				}
			}
			eng.HandleEvent(e)
		})
	}()

	tradable, _ := loaded.Registry.Spec(schema.InstrumentTradable)
	gen, err := mdg.NewGenerator(loaded.Registry, mdg.Config{
		Seed:        *seed,
		BasePrice:   (tradable.MinBidNearestTick() + tradable.MaxAskNearestTick()) / 2,
		TickSize:    tradable.TickSize,
		Premium:     schema.Price(*premium),
		StepTicks:   *stepTicks,
		Correlation: *correlation,
		BaseVolume:  schema.Quantity(*baseVolume),
	})
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}
	norm := mdg.NewNormalizer(loaded.Registry)

	for i := 0; i < *ticks; i++ {
		raw := gen.Next(time.Now().UTC())
		header, book, err := norm.Normalize(seq.Add(1), raw)
		if err != nil {
			log.Fatalf("normalize failed: %v", err)
		}
		header.TraceID = traceGen.Next()
		sim.OnBook(book)
		if err := queue.TryPublish(bus.Event{Header: header, Payload: codec.EncodeBookUpdate(nil, book)}); err != nil {
			metrics.IncQueueDrop()
		}
	}

	settle := time.Now().Add(2 * time.Second)
	for queue.Depth() > 0 && time.Now().Before(settle) {
		time.Sleep(10 * time.Millisecond)
	}
	queue.Close()
	wg.Wait()

	if writer != nil {
		if err := writer.Close(); err != nil {
			log.Fatalf("journal close failed: %v", err)
		}
		path := *snapshotPath
		if path == "" {
			path = filepath.Join(*walDir, "positions.json")
		}
		snapshot := eng.Positions().SnapshotWithMeta(eng.LastSeq(), eng.LastEventTs())
		if err := state.WriteSnapshot(path, snapshot); err != nil {
			log.Fatalf("snapshot write failed: %v", err)
		}
	}

	snap := metrics.Snapshot()
	log.Printf("paper session: strategy=%s frames=%d fills=%d hedges=%d open=%d",
		loaded.Strategy.Kind, *ticks, sim.Fills(), sim.Hedges(), sim.Open())
	log.Printf("quotes: inserts=%d replaces=%d pulls=%d suppressed=%d clips=%d limit_rejects=%d decide=%+v",
		snap.QuoteInserts, snap.QuoteReplaces, snap.QuotePulls, snap.QuoteSuppressed,
		snap.ClipsFired, snap.LimitRejects, snap.DecideLatency)
	log.Printf("positions: tradable=%d reference=%d hedged=%d unwinding=%v",
		eng.Positions().Position(schema.InstrumentTradable),
		eng.Positions().Position(schema.InstrumentReference),
		tracker.Hedged(), tracker.Unwinding())
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Resolve(ops.FileConfig{
			Registry: ops.RegistryConfig{
				Instruments: []ops.InstrumentConfig{
					{Name: "FUT", Role: "reference", TickSize: 100, MinBid: 1, MaxAsk: 20000000},
					{Name: "ETF", Role: "tradable", TickSize: 100, MinBid: 1, MaxAsk: 20000000},
				},
			},
			Risk: ops.RiskConfig{
				PositionLimit: 100,
				SoftLimit:     40,
			},
			Strategy: ops.StrategyConfig{
				Kind:    "mirror",
				LotSize: 10,
			},
		})
	}
	return ops.Load(path)
}
