package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/engine"
	"main/internal/journal"
	"main/internal/mdg"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/ops"
	"main/internal/order"
	"main/internal/paper"
	"main/internal/recorder"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/state"
	"main/internal/strategy"
	"main/pkg/conn"
)

type runtimeConfig struct {
	v       atomic.Value
	version atomic.Uint64
}

type versioned struct {
	loaded  ops.Loaded
	version uint64
}

func newRuntimeConfig(loaded ops.Loaded) *runtimeConfig {
	rc := &runtimeConfig{}
	rc.v.Store(versioned{loaded: loaded, version: 1})
	rc.version.Store(1)
	return rc
}

func (r *runtimeConfig) Load() versioned {
	return r.v.Load().(versioned)
}

func (r *runtimeConfig) Update(loaded ops.Loaded) {
	r.v.Store(versioned{loaded: loaded, version: r.version.Add(1)})
}

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	configReload := flag.Duration("config-reload-interval", 2*time.Second, "Config reload interval (0=disable)")
	walDir := flag.String("wal-dir", "testdata/wal", "Journal directory for recording")
	snapshotPath := flag.String("snapshot-path", "", "Position snapshot output (default: <wal-dir>/positions.json)")
	ticks := flag.Int("ticks", 1000, "Number of book frames to run (0=until interrupted)")
	interval := flag.Duration("interval", 0, "Delay between book frames")
	seed := flag.Int64("seed", 0, "Market walk seed (0=time-based)")
	stepTicks := flag.Int("step-ticks", 2, "Walk step bound in ticks")
	correlation := flag.Float64("correlation", 0.9, "Tradable/reference correlation in [0,1]")
	premium := flag.Int64("premium", 0, "Tradable premium over the reference mid (scaled)")
	baseVolume := flag.Int64("base-volume", 50, "Displayed volume per level (scaled)")
	queueSize := flag.Int("queue-size", 4096, "Event queue capacity")
	recoverEnabled := flag.Bool("recover", false, "Recover positions from snapshot + journal before trading")
	recoverSnapshot := flag.String("recover-snapshot", "", "Snapshot path for recovery (default: <wal-dir>/positions.json)")
	recoverNoChecksum := flag.Bool("recover-no-checksum", false, "Disable checksum validation for recovery")
	journalDSN := flag.String("journal-dsn", "", "PostgreSQL DSN for the trade journal (empty=disabled)")
	pyroscopeAddr := flag.String("pyroscope-addr", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader",
			ServerAddress:   *pyroscopeAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer profiler.Stop()
	}

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	runtime := newRuntimeConfig(loaded)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sys.Shutdown()
		cancel()
	}()

	if *configPath != "" && *configReload > 0 {
		go watchConfig(ctx, *configPath, *configReload, runtime.Update)
	}

	trades := journal.New(1024, nil)
	if *journalDSN != "" {
		client, err := conn.New(conn.Option{ConnString: *journalDSN})
		if err != nil {
			log.Fatalf("journal connect failed: %v", err)
		}
		defer client.Close()
		sink, err := journal.NewGormSink(client)
		if err != nil {
			log.Fatalf("journal migrate failed: %v", err)
		}
		trades = journal.New(1024, sink)
		trades.Run(ctx)
	}

	snapshotOut := resolveSnapshotPath(*walDir, *snapshotPath)
	var recoverCfg *state.RecoverConfig
	if *recoverEnabled {
		recoverCfg = &state.RecoverConfig{
			WALDir:          *walDir,
			SnapshotPath:    resolveSnapshotPath(*walDir, *recoverSnapshot),
			DisableChecksum: *recoverNoChecksum,
		}
	}

	session := sessionConfig{
		walDir:      *walDir,
		ticks:       *ticks,
		interval:    *interval,
		seed:        *seed,
		stepTicks:   *stepTicks,
		correlation: *correlation,
		premium:     schema.Price(*premium),
		baseVolume:  schema.Quantity(*baseVolume),
		queueSize:   *queueSize,
		snapshot:    snapshotOut,
		recover:     recoverCfg,
	}
	if err := runSession(ctx, runtime, trades, session); err != nil {
		log.Fatalf("session failed: %v", err)
	}
}

type sessionConfig struct {
	walDir      string
	ticks       int
	interval    time.Duration
	seed        int64
	stepTicks   int
	correlation float64
	premium     schema.Price
	baseVolume  schema.Quantity
	queueSize   int
	snapshot    string
	recover     *state.RecoverConfig
}

func runSession(ctx context.Context, runtime *runtimeConfig, trades *journal.Journal, session sessionConfig) error {
	current := runtime.Load()
	loaded := current.loaded

	writer, err := recorder.NewWriter(recorder.DefaultConfig(session.walDir))
	if err != nil {
		return err
	}
	if err := writer.Start(ctx); err != nil {
		return err
	}

	queue := bus.NewQueue(session.queueSize)
	var seq atomic.Uint64
	traceGen := obs.NewTraceGenerator(0)
	metrics := obs.NewMetrics()
	sim := paper.NewSimulator(queue, &seq, traceGen)

	outbound := order.NewUsecase(256, order.DelegatorFunc(func(_ context.Context, cmd schema.Command) error {
		return sim.Submit(cmd)
	}))
	outbound.Run(ctx)

	quotes := og.NewManager(outbound)
	tracker := risk.NewTracker(loaded.Risk, outbound)
	strat, err := strategy.New(loaded.Strategy)
	if err != nil {
		return err
	}
	positions := state.NewPositionReducer()

	if session.recover != nil {
		recovered, err := state.RecoverPositions(ctx, *session.recover)
		if err != nil {
			return err
		}
		positions = recovered.Positions
		tracker.SetPosition(positions.Position(schema.InstrumentTradable))
		seq.Store(recovered.LastSeq)
		log.Printf("recovered positions=%d last_seq=%d", positions.Count(), recovered.LastSeq)
	}

	eng := engine.New(loaded.Engine, quotes, tracker, strat, positions, metrics).WithJournal(trades)

	appliedVersion := current.version
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx, func(e bus.Event) {
			// config swaps land here so the engine state never races
			if v := runtime.Load(); v.version != appliedVersion {
				tracker.SetConfig(v.loaded.Risk)
				appliedVersion = v.version
			}
			if err := writer.TryAppend(e.Header, e.Payload); err != nil {
				log.Printf("journal append: %v", err)
			}
			eng.HandleEvent(e)
		})
	}()

	gen, err := mdg.NewGenerator(loaded.Registry, generatorConfig(loaded, session))
	if err != nil {
		return err
	}
	norm := mdg.NewNormalizer(loaded.Registry)

pump:
	for frame := 0; session.ticks <= 0 || frame < session.ticks; frame++ {
		select {
		case <-ctx.Done():
			break pump
		default:
		}

		raw := gen.Next(time.Now().UTC())
		header, book, err := norm.Normalize(seq.Add(1), raw)
		if err != nil {
			return err
		}
		header.TraceID = traceGen.Next()
		sim.OnBook(book)
		if err := queue.TryPublish(bus.Event{Header: header, Payload: codec.EncodeBookUpdate(nil, book)}); err != nil {
			if err == bus.ErrQueueFull {
				metrics.IncQueueDrop()
			} else {
				metrics.IncQueueClosed()
			}
		}
		if session.interval > 0 {
			time.Sleep(session.interval)
		}
	}

	// let the in-flight command/event round trips settle
	settle := time.Now().Add(2 * time.Second)
	for (outbound.Depth() > 0 || queue.Depth() > 0) && time.Now().Before(settle) && ctx.Err() == nil {
		time.Sleep(10 * time.Millisecond)
	}
	queue.Close()
	wg.Wait()

	if err := writer.Close(); err != nil {
		return err
	}
	if session.snapshot != "" {
		snapshot := eng.Positions().SnapshotWithMeta(eng.LastSeq(), eng.LastEventTs())
		if err := state.WriteSnapshot(session.snapshot, snapshot); err != nil {
			return err
		}
	}

	snap := metrics.Snapshot()
	log.Printf("session done: events=%v inserts=%d replaces=%d pulls=%d suppressed=%d clips=%d hedges=%d limit_rejects=%d decide=%+v",
		snap.EventCounts, snap.QuoteInserts, snap.QuoteReplaces, snap.QuotePulls, snap.QuoteSuppressed,
		snap.ClipsFired, snap.Hedges, snap.LimitRejects, snap.DecideLatency)
	log.Printf("positions: tradable=%d reference=%d sim_fills=%d journal_drops=%d",
		eng.Positions().Position(schema.InstrumentTradable),
		eng.Positions().Position(schema.InstrumentReference),
		sim.Fills(), trades.Dropped())
	return nil
}

func generatorConfig(loaded ops.Loaded, session sessionConfig) mdg.Config {
	tradable, _ := loaded.Registry.Spec(schema.InstrumentTradable)
	basePrice := (tradable.MinBidNearestTick() + tradable.MaxAskNearestTick()) / 2
	return mdg.Config{
		Seed:        session.seed,
		BasePrice:   basePrice,
		TickSize:    tradable.TickSize,
		Premium:     session.premium,
		StepTicks:   session.stepTicks,
		Correlation: session.correlation,
		BaseVolume:  session.baseVolume,
	}
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Resolve(defaultFileConfig())
	}
	return ops.Load(path)
}

func defaultFileConfig() ops.FileConfig {
	return ops.FileConfig{
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
	}
}

func resolveSnapshotPath(dir string, path string) string {
	if path != "" {
		return path
	}
	return filepath.Join(dir, "positions.json")
}

func watchConfig(ctx context.Context, path string, interval time.Duration, update func(ops.Loaded)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				log.Printf("config stat failed: %v", err)
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			loaded, err := ops.Load(path)
			if err != nil {
				log.Printf("config reload failed: %v", err)
				continue
			}
			update(loaded)
			lastMod = info.ModTime()
			log.Printf("config reloaded: %s", path)
		}
	}
}
