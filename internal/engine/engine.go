package engine

import (
	"errors"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/journal"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/state"
	"main/internal/strategy"
	"main/pkg/exception"
)

// Config carries the engine-level knobs.
type Config struct {
	// LotSize caps one unwind clip.
	LotSize schema.Quantity
	// MinBidPrice and MaxAskPrice are the tick-aligned bounds of the
	// tradable book, used for aggressive unwind clips.
	MinBidPrice schema.Price
	MaxAskPrice schema.Price
	// EnableTrading gates quoting; fills and positions are tracked
	// either way.
	EnableTrading bool
}

// Engine consumes bus events in order and drives quoting, hedging and
// position tracking. It runs entirely on the bus consumer goroutine,
// so none of its state needs locking.
type Engine struct {
	cfg       Config
	quotes    *og.Manager
	tracker   *risk.Tracker
	strat     strategy.Strategy
	positions *state.PositionReducer
	metrics   *obs.Metrics
	trades    *journal.Journal

	reference strategy.Level
	tradable  strategy.Level

	lastSeq     uint64
	lastEventTs int64
}

// New wires an engine. positions and metrics may be nil.
func New(cfg Config, quotes *og.Manager, tracker *risk.Tracker, strat strategy.Strategy, positions *state.PositionReducer, metrics *obs.Metrics) *Engine {
	if positions == nil {
		positions = state.NewPositionReducer()
	}
	return &Engine{
		cfg:       cfg,
		quotes:    quotes,
		tracker:   tracker,
		strat:     strat,
		positions: positions,
		metrics:   metrics,
	}
}

// WithJournal attaches a trade journal. Fills and hedge executions are
// recorded off the hot path; a nil journal is fine.
func (e *Engine) WithJournal(trades *journal.Journal) *Engine {
	e.trades = trades
	return e
}

// Positions exposes the reducer for snapshotting.
func (e *Engine) Positions() *state.PositionReducer {
	return e.positions
}

// Tracker exposes the risk tracker.
func (e *Engine) Tracker() *risk.Tracker {
	return e.tracker
}

// Quotes exposes the quote slot manager.
func (e *Engine) Quotes() *og.Manager {
	return e.quotes
}

// LastSeq returns the highest event sequence seen.
func (e *Engine) LastSeq() uint64 {
	return e.lastSeq
}

// LastEventTs returns the latest event timestamp seen.
func (e *Engine) LastEventTs() int64 {
	return e.lastEventTs
}

// HandleEvent is the bus handler. Malformed payloads and out-of-band
// errors are absorbed and logged; nothing here is fatal.
func (e *Engine) HandleEvent(ev bus.Event) {
	e.metrics.ObserveEvent(ev.Header)
	if ev.Header.Seq > e.lastSeq {
		e.lastSeq = ev.Header.Seq
	}
	if ev.Header.TsEvent > e.lastEventTs {
		e.lastEventTs = ev.Header.TsEvent
	}

	switch ev.Header.Type {
	case schema.EventBookUpdate:
		book, ok := codec.DecodeBookUpdate(ev.Payload)
		if !ok {
			logs.Errorf("drop malformed book update, seq %d", ev.Header.Seq)
			return
		}
		e.onBook(book)
	case schema.EventTradeTicks:
		// informational only
	case schema.EventOrderAccepted:
		ack, ok := codec.DecodeOrderAccepted(ev.Payload)
		if !ok {
			logs.Errorf("drop malformed order accepted, seq %d", ev.Header.Seq)
			return
		}
		if err := e.quotes.OnAccepted(ack); err != nil && !errors.Is(err, exception.ErrUnknownOrder) {
			logs.Errorf("order accepted: %v", err)
		}
	case schema.EventOrderStatus:
		status, ok := codec.DecodeOrderStatus(ev.Payload)
		if !ok {
			logs.Errorf("drop malformed order status, seq %d", ev.Header.Seq)
			return
		}
		if err := e.quotes.OnStatus(status); err != nil && !errors.Is(err, exception.ErrUnknownOrder) {
			logs.Errorf("order status: %v", err)
		}
	case schema.EventOrderFilled:
		fill, ok := codec.DecodeFill(ev.Payload)
		if !ok {
			logs.Errorf("drop malformed fill, seq %d", ev.Header.Seq)
			return
		}
		e.onFill(fill, ev.Header.TraceID)
	case schema.EventHedgeFilled:
		fill, ok := codec.DecodeFill(ev.Payload)
		if !ok {
			logs.Errorf("drop malformed hedge fill, seq %d", ev.Header.Seq)
			return
		}
		e.tracker.OnHedgeFill(fill)
		e.positions.ApplyFill(schema.InstrumentReference, fill)
		e.trades.RecordHedge(schema.InstrumentReference, fill, ev.Header.TraceID)
	case schema.EventGatewayError:
		ge, ok := codec.DecodeGatewayError(ev.Payload)
		if !ok {
			logs.Errorf("drop malformed gateway error, seq %d", ev.Header.Seq)
			return
		}
		logs.Errorf("gateway error: order %d: %s", ge.OrderID, ge.Message)
		if err := e.quotes.OnError(ge); err != nil {
			logs.Errorf("gateway error handling: %v", err)
		}
	}
}

func (e *Engine) onBook(book schema.BookUpdate) {
	level := strategy.Level{
		BidPrice:  book.BidPrices[0],
		BidVolume: book.BidVolumes[0],
		AskPrice:  book.AskPrices[0],
		AskVolume: book.AskVolumes[0],
	}
	switch book.Instrument {
	case schema.InstrumentReference:
		e.reference = level
	case schema.InstrumentTradable:
		e.tradable = level
	default:
		return
	}

	if !e.cfg.EnableTrading {
		return
	}

	if e.tracker.Unwinding() {
		e.unwind()
		return
	}

	snap := strategy.Snapshot{
		Updated:   book.Instrument,
		Reference: e.reference,
		Tradable:  e.tradable,
		Position:  e.tracker.Position(),
	}

	start := time.Now()
	quotes := e.strat.Decide(snap)
	e.metrics.ObserveDecide(time.Since(start))

	e.apply(quotes)
}

func (e *Engine) apply(quotes []strategy.Quote) {
	for _, q := range quotes {
		switch {
		case q.Lifespan == schema.LifespanFillAndKill:
			e.fire(q)
		case q.Qty == 0:
			if _, ok := e.quotes.Resting(q.Side); !ok {
				continue
			}
			if err := e.quotes.CancelSide(q.Side); err != nil {
				logs.Errorf("pull %s: %v", q.Side, err)
				continue
			}
			e.metrics.IncQuotePull()
		default:
			e.rest(q)
		}
	}
}

func (e *Engine) rest(q strategy.Quote) {
	qty := q.Qty
	if room := e.tracker.RestingSize(q.Side); qty > room {
		qty = room
	}
	if qty <= 0 {
		if _, ok := e.quotes.Resting(q.Side); ok {
			if err := e.quotes.CancelSide(q.Side); err != nil {
				logs.Errorf("pull %s: %v", q.Side, err)
				return
			}
			e.metrics.IncQuotePull()
		}
		return
	}

	_, hadResting := e.quotes.Resting(q.Side)
	if _, err := e.quotes.PlaceQuote(q.Side, q.Price, qty, q.Lifespan); err != nil {
		if errors.Is(err, exception.ErrDuplicateQuote) {
			e.metrics.IncQuoteSuppressed()
			return
		}
		logs.Errorf("quote %s %d@%d: %v", q.Side, qty, q.Price, err)
		return
	}
	if hadResting {
		e.metrics.IncQuoteReplace()
	} else {
		e.metrics.IncQuoteInsert()
	}
}

func (e *Engine) fire(q strategy.Quote) {
	// one clip in flight per side
	if resting, ok := e.quotes.Resting(q.Side); ok && resting.Lifespan == schema.LifespanFillAndKill {
		return
	}
	if err := e.tracker.CheckLimit(q.Side, q.Qty); err != nil {
		e.metrics.IncLimitReject()
		return
	}
	if _, err := e.quotes.Fire(q.Side, q.Price, q.Qty); err != nil {
		logs.Errorf("clip %s %d@%d: %v", q.Side, q.Qty, q.Price, err)
		return
	}
	e.metrics.IncClipFired()
}

// unwind works the position back under the soft limit with aggressive
// clips at the bound prices, pulling both resting quotes first.
func (e *Engine) unwind() {
	pos := e.tracker.Position()
	if pos == 0 {
		return
	}

	var q strategy.Quote
	if pos > 0 {
		q = strategy.Quote{Side: schema.SideSell, Price: e.cfg.MinBidPrice, Qty: min(pos, e.cfg.LotSize)}
	} else {
		q = strategy.Quote{Side: schema.SideBuy, Price: e.cfg.MaxAskPrice, Qty: min(-pos, e.cfg.LotSize)}
	}
	q.Lifespan = schema.LifespanFillAndKill

	for _, side := range []schema.Side{schema.SideBuy, schema.SideSell} {
		if resting, ok := e.quotes.Resting(side); ok && resting.Lifespan == schema.LifespanGoodForDay {
			if err := e.quotes.CancelSide(side); err != nil {
				logs.Errorf("unwind pull %s: %v", side, err)
			} else {
				e.metrics.IncQuotePull()
			}
		}
	}

	e.fire(q)
}

func (e *Engine) onFill(fill schema.Fill, traceID uint64) {
	e.positions.ApplyFill(schema.InstrumentTradable, fill)
	e.trades.RecordFill(schema.InstrumentTradable, fill, traceID)

	if err := e.quotes.OnFill(fill); err != nil && !errors.Is(err, exception.ErrUnknownOrder) {
		logs.Errorf("fill: %v", err)
	}

	if err := e.tracker.OnFill(fill); err != nil {
		logs.Errorf("hedge for order %d: %v", fill.OrderID, err)
		return
	}
	if e.tracker.HedgingEnabled() {
		e.metrics.IncHedge()
	}
}
