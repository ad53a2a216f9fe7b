package main

import (
	"context"
	"flag"
	"log"
	"sync"
	"time"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/mdg"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/schema"
)

func main() {
	walDir := flag.String("wal-dir", "testdata/wal", "Journal directory for market data")
	configPath := flag.String("config", "", "Path to JSON config")
	ticks := flag.Int("ticks", 10, "Number of book frames to generate")
	interval := flag.Duration("interval", 0, "Delay between frames")
	seed := flag.Int64("seed", 0, "Walk seed (0=time-based)")
	basePrice := flag.Int64("base-price", 1000000, "Starting mid price (scaled)")
	tickSize := flag.Int64("tick-size", 100, "Tick size (scaled)")
	premium := flag.Int64("premium", 0, "Tradable premium over the reference mid (scaled)")
	stepTicks := flag.Int("step-ticks", 2, "Walk step bound in ticks")
	correlation := flag.Float64("correlation", 0.9, "Tradable/reference correlation in [0,1]")
	baseVolume := flag.Int64("base-volume", 50, "Displayed volume per level (scaled)")
	flag.Parse()

	if *ticks <= 0 {
		log.Fatalf("ticks must be > 0")
	}

	registry, err := loadRegistry(*configPath)
	if err != nil {
		log.Fatalf("registry load failed: %v", err)
	}

	generator, err := mdg.NewGenerator(registry, mdg.Config{
		Seed:        *seed,
		BasePrice:   schema.Price(*basePrice),
		TickSize:    schema.Price(*tickSize),
		Premium:     schema.Price(*premium),
		StepTicks:   *stepTicks,
		Correlation: *correlation,
		BaseVolume:  schema.Quantity(*baseVolume),
	})
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}
	normalizer := mdg.NewNormalizer(registry)

	ctx := context.Background()
	writer, err := recorder.NewWriter(recorder.DefaultConfig(*walDir))
	if err != nil {
		log.Fatalf("journal init failed: %v", err)
	}
	if err := writer.Start(ctx); err != nil {
		log.Fatalf("journal start failed: %v", err)
	}

	queue := bus.NewQueue(1024)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	metrics := obs.NewMetrics()
	traceGen := obs.NewTraceGenerator(0)

	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx, func(e bus.Event) {
			if err := writer.TryAppend(e.Header, e.Payload); err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		})
	}()

	seq := uint64(0)
	for i := 0; i < *ticks; i++ {
		seq++
		raw := generator.Next(time.Now().UTC())
		header, book, err := normalizer.Normalize(seq, raw)
		if err != nil {
			log.Fatalf("normalize failed: %v", err)
		}
		header.TraceID = traceGen.Next()
		payload := codec.EncodeBookUpdate(nil, book)
		if err := queue.TryPublish(bus.Event{Header: header, Payload: payload}); err != nil {
			if err == bus.ErrQueueFull {
				metrics.IncQueueDrop()
			} else if err == bus.ErrQueueClosed {
				metrics.IncQueueClosed()
			}
			log.Fatalf("publish failed: %v", err)
		}
		metrics.ObserveEvent(header)
		if *interval > 0 && i < *ticks-1 {
			time.Sleep(*interval)
		}
	}

	queue.Close()
	wg.Wait()

	var appendErr error
	select {
	case appendErr = <-errCh:
	default:
	}

	if err := writer.Close(); err != nil {
		log.Fatalf("journal close failed: %v", err)
	}
	if appendErr != nil {
		log.Fatalf("journal append failed: %v", appendErr)
	}
	snapshot := metrics.Snapshot()
	log.Printf("metrics: events=%v drops=%d closed=%d event_latency=%+v",
		snapshot.EventCounts, snapshot.QueueDrops, snapshot.QueueClosed, snapshot.EventLatency)
}

func loadRegistry(path string) (*schema.Registry, error) {
	if path == "" {
		return defaultRegistry()
	}
	return ops.LoadRegistry(path)
}

func defaultRegistry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	specs := []schema.InstrumentSpec{
		{Instrument: schema.InstrumentReference, Name: "FUT", TickSize: 100, MinBid: 1, MaxAsk: 20000000},
		{Instrument: schema.InstrumentTradable, Name: "ETF", TickSize: 100, MinBid: 1, MaxAsk: 20000000},
	}
	for _, spec := range specs {
		if err := reg.Add(spec); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
