package og

import (
	"errors"

	"main/internal/schema"
	"main/pkg/exception"
)

var (
	ErrInvalidTransition = errors.New("invalid order state transition")
	ErrInvalidFill       = errors.New("invalid fill quantity")
)

// OrderState tracks the lifecycle of a resting order.
type OrderState uint16

const (
	OrderStateUnknown OrderState = iota
	OrderStatePendingInsert
	OrderStateLive
	OrderStatePartFilled
	OrderStatePendingCancel
	OrderStateFilled
	OrderStateCancelled
)

// RestingOrder holds the manager's view of one order.
type RestingOrder struct {
	ID        uint64
	Side      schema.Side
	Price     schema.Price
	Qty       schema.Quantity
	Remaining schema.Quantity
	Lifespan  schema.Lifespan
	State     OrderState
}

// CommandSink receives the insert/cancel commands the manager emits.
type CommandSink interface {
	Submit(schema.Command) error
}

// Manager owns the two quote slots, one per side. It issues client
// order ids (monotonically increasing, starting at 1; id 0 is never
// used), suppresses duplicate-price quotes, and keeps cancelled orders
// tracked until their terminal status arrives so late fills still
// resolve.
type Manager struct {
	sink   CommandSink
	nextID uint64
	slots  [2]uint64
	orders map[uint64]*RestingOrder
}

// NewManager creates a manager emitting commands into sink.
func NewManager(sink CommandSink) *Manager {
	return &Manager{
		sink:   sink,
		nextID: 1,
		orders: make(map[uint64]*RestingOrder),
	}
}

func slotIndex(side schema.Side) int {
	if side == schema.SideSell {
		return 1
	}
	return 0
}

// Resting returns the active order occupying a side's slot, if any.
func (m *Manager) Resting(side schema.Side) (*RestingOrder, bool) {
	id := m.slots[slotIndex(side)]
	if id == 0 {
		return nil, false
	}
	o, ok := m.orders[id]
	return o, ok
}

// Order returns any tracked order by id, slot or not.
func (m *Manager) Order(id uint64) (*RestingOrder, bool) {
	o, ok := m.orders[id]
	return o, ok
}

// PlaceQuote requests a quote on a side. A quote at the identical price
// already resting on that side is a no-op and returns
// exception.ErrDuplicateQuote. A different resting price is cancelled
// first, then the new order is inserted. Returns the new order id.
func (m *Manager) PlaceQuote(side schema.Side, price schema.Price, qty schema.Quantity, lifespan schema.Lifespan) (uint64, error) {
	if resting, ok := m.Resting(side); ok {
		if resting.Price == price {
			return 0, exception.ErrDuplicateQuote
		}
		if err := m.cancel(resting); err != nil {
			return 0, err
		}
	}
	return m.insert(side, price, qty, lifespan)
}

// Fire submits an order on a side without slot bookkeeping for
// duplicate prices; used for fill-and-kill clips that never rest.
func (m *Manager) Fire(side schema.Side, price schema.Price, qty schema.Quantity) (uint64, error) {
	return m.insert(side, price, qty, schema.LifespanFillAndKill)
}

// CancelSide cancels whatever occupies the side's slot. No-op when the
// slot is empty.
func (m *Manager) CancelSide(side schema.Side) error {
	resting, ok := m.Resting(side)
	if !ok {
		return nil
	}
	return m.cancel(resting)
}

func (m *Manager) insert(side schema.Side, price schema.Price, qty schema.Quantity, lifespan schema.Lifespan) (uint64, error) {
	id := m.nextID
	order := &RestingOrder{
		ID:        id,
		Side:      side,
		Price:     price,
		Qty:       qty,
		Remaining: qty,
		Lifespan:  lifespan,
		State:     OrderStatePendingInsert,
	}

	if err := m.sink.Submit(schema.NewInsert(schema.InsertOrder{
		OrderID:  id,
		Side:     side,
		Price:    price,
		Qty:      qty,
		Lifespan: lifespan,
	})); err != nil {
		return 0, err
	}

	m.nextID++
	m.orders[id] = order
	m.slots[slotIndex(side)] = id
	return id, nil
}

func (m *Manager) cancel(order *RestingOrder) error {
	if err := m.sink.Submit(schema.NewCancel(order.ID)); err != nil {
		return err
	}
	order.State = OrderStatePendingCancel
	idx := slotIndex(order.Side)
	if m.slots[idx] == order.ID {
		m.slots[idx] = 0
	}
	return nil
}

// OnAccepted moves a pending order to live.
func (m *Manager) OnAccepted(ack schema.OrderAccepted) error {
	o, ok := m.orders[ack.OrderID]
	if !ok {
		return exception.ErrUnknownOrder
	}
	if isTerminal(o.State) {
		return ErrInvalidTransition
	}
	if o.State == OrderStatePendingInsert {
		o.State = OrderStateLive
	}
	return nil
}

// OnFill reduces remaining quantity from an execution.
func (m *Manager) OnFill(fill schema.Fill) error {
	o, ok := m.orders[fill.OrderID]
	if !ok {
		return exception.ErrUnknownOrder
	}
	if isTerminal(o.State) {
		return ErrInvalidTransition
	}
	if fill.Qty <= 0 {
		return ErrInvalidFill
	}

	o.Remaining -= fill.Qty
	if o.Remaining <= 0 {
		o.Remaining = 0
		m.retire(o, OrderStateFilled)
	} else if o.State != OrderStatePendingCancel {
		o.State = OrderStatePartFilled
	}
	return nil
}

// OnStatus applies the gateway's authoritative remaining quantity.
// Remaining zero is terminal regardless of how the order ended.
func (m *Manager) OnStatus(status schema.OrderStatus) error {
	o, ok := m.orders[status.OrderID]
	if !ok {
		return exception.ErrUnknownOrder
	}

	o.Remaining = status.RemainingQty
	if status.RemainingQty == 0 {
		if status.FillQty >= o.Qty && o.Qty > 0 {
			m.retire(o, OrderStateFilled)
		} else {
			m.retire(o, OrderStateCancelled)
		}
		return nil
	}

	if o.State == OrderStatePendingInsert {
		o.State = OrderStateLive
	}
	if status.FillQty > 0 && o.State == OrderStateLive {
		o.State = OrderStatePartFilled
	}
	return nil
}

// OnError handles a gateway error for a tracked order by synthesizing
// a zero-fill, zero-remaining status: the order is terminal and its
// side is freed. Errors without an order id, or for ids the manager
// does not track, change nothing.
func (m *Manager) OnError(ge schema.GatewayError) error {
	if ge.OrderID == 0 {
		return nil
	}
	if _, ok := m.orders[ge.OrderID]; !ok {
		return nil
	}
	return m.OnStatus(schema.OrderStatus{OrderID: ge.OrderID})
}

func (m *Manager) retire(o *RestingOrder, state OrderState) {
	o.State = state
	idx := slotIndex(o.Side)
	if m.slots[idx] == o.ID {
		m.slots[idx] = 0
	}
	delete(m.orders, o.ID)
}

func isTerminal(state OrderState) bool {
	switch state {
	case OrderStateFilled, OrderStateCancelled:
		return true
	default:
		return false
	}
}
