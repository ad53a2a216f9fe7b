package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/engine"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/recorder"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/state"
	"main/internal/strategy"
)

// Replays a recorded session through the engine with trading and
// hedging disabled, so positions are rebuilt exactly as the live run
// saw them, then verifies the result against the session snapshot.
func main() {
	dir := flag.String("dir", "testdata/wal", "Journal directory")
	prefix := flag.String("prefix", "", "Journal file prefix (default: wal)")
	speed := flag.Float64("speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	useRecv := flag.Bool("use-recv-time", false, "Use receive timestamp for pacing")
	noChecksum := flag.Bool("no-checksum", false, "Disable checksum validation")
	maxPayload := flag.Int("max-payload", 0, "Max payload size in bytes (0=unlimited)")
	decode := flag.Bool("decode", false, "Print decoded payloads")
	snapshotPath := flag.String("snapshot", "", "Snapshot path for verification (default: <dir>/positions.json)")
	verify := flag.Bool("verify-snapshot", true, "Verify positions against the snapshot after replay")
	flag.Parse()

	pb, err := recorder.NewPlayback(recorder.PlaybackConfig{
		Dir:             *dir,
		FilePrefix:      *prefix,
		Speed:           *speed,
		UseRecvTime:     *useRecv,
		DisableChecksum: *noChecksum,
		MaxPayloadSize:  *maxPayload,
	})
	if err != nil {
		log.Fatalf("playback init failed: %v", err)
	}

	quotes := og.NewManager(discardSink{})
	tracker := risk.NewTracker(risk.Config{PositionLimit: 1 << 40}, discardSink{})
	eng := engine.New(engine.Config{}, quotes, tracker, strategy.NewMirror(strategy.Config{}), nil, obs.NewMetrics())

	ctx := context.Background()
	counts := make(map[schema.EventType]int)
	total := 0
	var lastSeq uint64
	err = pb.Run(ctx, func(header schema.EventHeader, payload []byte) error {
		// chaos streams carry duplicates and stale reorders; replay on
		// sequence order only
		if lastSeq > 0 && header.Seq <= lastSeq {
			return nil
		}
		lastSeq = header.Seq
		total++
		counts[header.Type]++
		if *decode {
			printEvent(total, header, payload)
		}
		eng.HandleEvent(bus.Event{Header: header, Payload: copyPayload(payload)})
		return nil
	})
	if err != nil {
		log.Fatalf("playback run failed: %v", err)
	}

	positions := eng.Positions()
	if *verify {
		path := *snapshotPath
		if path == "" {
			path = filepath.Join(*dir, "positions.json")
		}
		expected, err := state.ReadSnapshot(path)
		if err != nil {
			log.Fatalf("snapshot read failed: %v", err)
		}
		if err := state.CompareSnapshots(expected, positions.Snapshot()); err != nil {
			log.Fatalf("snapshot mismatch: %v", err)
		}
		log.Printf("snapshot verified: positions=%d", positions.Count())
	}
	log.Printf("replay completed: total=%d counts=%v tradable=%d reference=%d",
		total, counts,
		positions.Position(schema.InstrumentTradable),
		positions.Position(schema.InstrumentReference))
}

type discardSink struct{}

func (discardSink) Submit(schema.Command) error { return nil }

func printEvent(index int, header schema.EventHeader, payload []byte) {
	fmt.Printf("%06d seq=%d type=%s ts_event=%d ts_recv=%d len=%d\n",
		index, header.Seq, eventTypeName(header.Type), header.TsEvent, header.TsRecv, len(payload))
	switch header.Type {
	case schema.EventBookUpdate:
		book, ok := codec.DecodeBookUpdate(payload)
		if !ok {
			fmt.Println("  decode BookUpdate failed")
			return
		}
		fmt.Printf("  book instrument=%d bid=%d/%d ask=%d/%d\n",
			book.Instrument, book.BidPrices[0], book.BidVolumes[0], book.AskPrices[0], book.AskVolumes[0])
	case schema.EventOrderFilled, schema.EventHedgeFilled:
		fill, ok := codec.DecodeFill(payload)
		if !ok {
			fmt.Println("  decode Fill failed")
			return
		}
		fmt.Printf("  fill id=%d side=%d price=%d qty=%d\n", fill.OrderID, fill.Side, fill.Price, fill.Qty)
	case schema.EventOrderStatus:
		status, ok := codec.DecodeOrderStatus(payload)
		if !ok {
			fmt.Println("  decode OrderStatus failed")
			return
		}
		fmt.Printf("  status id=%d filled=%d remaining=%d fees=%d\n",
			status.OrderID, status.FillQty, status.RemainingQty, status.Fees)
	case schema.EventOrderAccepted:
		ack, ok := codec.DecodeOrderAccepted(payload)
		if !ok {
			fmt.Println("  decode OrderAccepted failed")
			return
		}
		fmt.Printf("  accepted id=%d\n", ack.OrderID)
	case schema.EventGatewayError:
		ge, ok := codec.DecodeGatewayError(payload)
		if !ok {
			fmt.Println("  decode GatewayError failed")
			return
		}
		fmt.Printf("  gateway error id=%d msg=%s\n", ge.OrderID, ge.Message)
	}
}

func eventTypeName(t schema.EventType) string {
	switch t {
	case schema.EventBookUpdate:
		return "BookUpdate"
	case schema.EventTradeTicks:
		return "TradeTicks"
	case schema.EventOrderAccepted:
		return "OrderAccepted"
	case schema.EventOrderStatus:
		return "OrderStatus"
	case schema.EventOrderFilled:
		return "OrderFilled"
	case schema.EventHedgeFilled:
		return "HedgeFilled"
	case schema.EventGatewayError:
		return "GatewayError"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

func copyPayload(payload []byte) []byte {
	if len(payload) == 0 {
		return nil
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return cp
}
