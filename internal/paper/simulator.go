package paper

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/obs"
	"main/internal/schema"
)

// Simulator stands in for the venue gateway. Commands come in through
// Submit and come back out as bus events: inserts are acknowledged,
// crossing orders fill against the last seen book, hedges execute
// immediately at their command price. Submit and OnBook may run on
// different goroutines, so the book and slot state sit behind a mutex.
type Simulator struct {
	queue *bus.Queue
	seq   *atomic.Uint64
	trace *obs.TraceGenerator

	mu       sync.Mutex
	tradable schema.BookUpdate
	resting  map[uint64]*simOrder
	fills    uint64
	hedges   uint64
}

type simOrder struct {
	id       uint64
	side     schema.Side
	price    schema.Price
	qty      schema.Quantity
	filled   schema.Quantity
	lifespan schema.Lifespan
}

// NewSimulator creates a simulator publishing into queue. seq is the
// shared event sequence, typically owned by the feed pump.
func NewSimulator(queue *bus.Queue, seq *atomic.Uint64, trace *obs.TraceGenerator) *Simulator {
	return &Simulator{
		queue:   queue,
		seq:     seq,
		trace:   trace,
		resting: make(map[uint64]*simOrder),
	}
}

// Fills reports the number of tradable-leg executions.
func (s *Simulator) Fills() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fills
}

// Hedges reports the number of hedge executions.
func (s *Simulator) Hedges() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hedges
}

// Open reports the number of resting orders.
func (s *Simulator) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resting)
}

// Submit implements the command sink for both the quote manager and
// the risk tracker.
func (s *Simulator) Submit(cmd schema.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch cmd.Type {
	case schema.CommandInsert:
		s.onInsert(cmd.Insert)
	case schema.CommandCancel:
		s.onCancel(cmd.Cancel)
	case schema.CommandHedge:
		s.onHedge(cmd.Hedge)
	}
	return nil
}

// OnBook feeds the simulator a book update. Tradable updates sweep the
// resting orders for crosses.
func (s *Simulator) OnBook(book schema.BookUpdate) {
	if book.Instrument != schema.InstrumentTradable {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tradable = book
	for _, o := range s.resting {
		s.tryCross(o)
	}
}

func (s *Simulator) onInsert(ins schema.InsertOrder) {
	s.publish(schema.EventOrderAccepted, codec.EncodeOrderAccepted(nil, schema.OrderAccepted{OrderID: ins.OrderID}))

	o := &simOrder{
		id:       ins.OrderID,
		side:     ins.Side,
		price:    ins.Price,
		qty:      ins.Qty,
		lifespan: ins.Lifespan,
	}
	s.tryCross(o)

	if o.filled >= o.qty {
		return
	}
	if ins.Lifespan == schema.LifespanFillAndKill {
		// unfilled remainder is killed
		s.publish(schema.EventOrderStatus, codec.EncodeOrderStatus(nil, schema.OrderStatus{
			OrderID:      o.id,
			FillQty:      o.filled,
			RemainingQty: 0,
		}))
		return
	}
	s.resting[o.id] = o
}

func (s *Simulator) onCancel(c schema.CancelOrder) {
	o, ok := s.resting[c.OrderID]
	if !ok {
		s.publish(schema.EventOrderStatus, codec.EncodeOrderStatus(nil, schema.OrderStatus{OrderID: c.OrderID}))
		return
	}
	delete(s.resting, c.OrderID)
	s.publish(schema.EventOrderStatus, codec.EncodeOrderStatus(nil, schema.OrderStatus{
		OrderID:      o.id,
		FillQty:      o.filled,
		RemainingQty: 0,
	}))
}

func (s *Simulator) onHedge(h schema.HedgeOrder) {
	s.hedges++
	s.publish(schema.EventHedgeFilled, codec.EncodeFill(nil, schema.Fill{
		OrderID: h.OrderID,
		Side:    h.Side,
		Price:   h.Price,
		Qty:     h.Qty,
	}))
}

// tryCross fills as much of o as the displayed opposite side allows.
func (s *Simulator) tryCross(o *simOrder) {
	remaining := o.qty - o.filled
	if remaining <= 0 {
		return
	}

	for i := 0; i < schema.TopLevelCount && remaining > 0; i++ {
		var price schema.Price
		var volume schema.Quantity
		if o.side == schema.SideBuy {
			price, volume = s.tradable.AskPrices[i], s.tradable.AskVolumes[i]
			if price == 0 || o.price < price {
				break
			}
		} else {
			price, volume = s.tradable.BidPrices[i], s.tradable.BidVolumes[i]
			if price == 0 || o.price > price {
				break
			}
		}

		qty := remaining
		if volume < qty {
			qty = volume
		}
		if qty <= 0 {
			break
		}
		remaining -= qty
		o.filled += qty
		s.fills++
		s.publish(schema.EventOrderFilled, codec.EncodeFill(nil, schema.Fill{
			OrderID: o.id,
			Side:    o.side,
			Price:   price,
			Qty:     qty,
		}))
	}

	if o.filled >= o.qty {
		delete(s.resting, o.id)
		s.publish(schema.EventOrderStatus, codec.EncodeOrderStatus(nil, schema.OrderStatus{
			OrderID:      o.id,
			FillQty:      o.filled,
			RemainingQty: 0,
		}))
	}
}

func (s *Simulator) publish(eventType schema.EventType, payload []byte) {
	now := time.Now().UTC().UnixNano()
	header := schema.NewHeader(eventType, 0, s.seq.Add(1), now, now)
	header.TraceID = s.trace.Next()
	if err := s.queue.TryPublish(bus.Event{Header: header, Payload: payload}); err != nil {
		logs.Errorf("simulator publish type %d: %v", eventType, err)
	}
}
