package og

import (
	"errors"
	"testing"

	"main/internal/schema"
	"main/pkg/exception"
)

type sinkRecorder struct {
	commands []schema.Command
	err      error
}

func (s *sinkRecorder) Submit(cmd schema.Command) error {
	if s.err != nil {
		return s.err
	}
	s.commands = append(s.commands, cmd)
	return nil
}

func TestPlaceQuoteAssignsIncreasingIDs(t *testing.T) {
	sink := &sinkRecorder{}
	m := NewManager(sink)

	askID, err := m.PlaceQuote(schema.SideSell, 10200, 25, schema.LifespanGoodForDay)
	if err != nil {
		t.Fatalf("place ask: %v", err)
	}
	bidID, err := m.PlaceQuote(schema.SideBuy, 9900, 25, schema.LifespanGoodForDay)
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}

	if askID != 1 || bidID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", askID, bidID)
	}
	if len(sink.commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(sink.commands))
	}
	if sink.commands[0].Type != schema.CommandInsert || sink.commands[0].Insert.OrderID != askID {
		t.Fatalf("first command = %+v, want insert for %d", sink.commands[0], askID)
	}
}

func TestPlaceQuoteSamePriceIsNoOp(t *testing.T) {
	sink := &sinkRecorder{}
	m := NewManager(sink)

	if _, err := m.PlaceQuote(schema.SideSell, 10200, 25, schema.LifespanGoodForDay); err != nil {
		t.Fatalf("place: %v", err)
	}
	sent := len(sink.commands)

	if _, err := m.PlaceQuote(schema.SideSell, 10200, 25, schema.LifespanGoodForDay); !errors.Is(err, exception.ErrDuplicateQuote) {
		t.Fatalf("got %v, want ErrDuplicateQuote", err)
	}
	if len(sink.commands) != sent {
		t.Fatalf("duplicate quote emitted commands")
	}
}

func TestPlaceQuoteDifferentPriceCancelsThenInserts(t *testing.T) {
	sink := &sinkRecorder{}
	m := NewManager(sink)

	firstID, err := m.PlaceQuote(schema.SideSell, 10200, 25, schema.LifespanGoodForDay)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	secondID, err := m.PlaceQuote(schema.SideSell, 10300, 25, schema.LifespanGoodForDay)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if secondID <= firstID {
		t.Fatalf("replacement id %d not greater than %d", secondID, firstID)
	}

	if len(sink.commands) != 3 {
		t.Fatalf("commands = %d, want insert, cancel, insert", len(sink.commands))
	}
	if sink.commands[1].Type != schema.CommandCancel || sink.commands[1].Cancel.OrderID != firstID {
		t.Fatalf("second command = %+v, want cancel of %d", sink.commands[1], firstID)
	}

	resting, ok := m.Resting(schema.SideSell)
	if !ok || resting.ID != secondID {
		t.Fatalf("slot order = %+v, want id %d", resting, secondID)
	}

	// the cancelled order stays tracked until its terminal status
	if _, ok := m.Order(firstID); !ok {
		t.Fatalf("cancelled order %d dropped before terminal status", firstID)
	}
	if err := m.OnStatus(schema.OrderStatus{OrderID: firstID}); err != nil {
		t.Fatalf("terminal status: %v", err)
	}
	if _, ok := m.Order(firstID); ok {
		t.Fatalf("order %d still tracked after terminal status", firstID)
	}
}

func TestLifecycleAcceptFillStatus(t *testing.T) {
	sink := &sinkRecorder{}
	m := NewManager(sink)

	id, err := m.PlaceQuote(schema.SideBuy, 9900, 30, schema.LifespanGoodForDay)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := m.OnAccepted(schema.OrderAccepted{OrderID: id}); err != nil {
		t.Fatalf("accepted: %v", err)
	}
	o, _ := m.Order(id)
	if o.State != OrderStateLive {
		t.Fatalf("state = %d, want live", o.State)
	}

	if err := m.OnFill(schema.Fill{OrderID: id, Price: 9900, Qty: 10}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if o.State != OrderStatePartFilled || o.Remaining != 20 {
		t.Fatalf("after partial fill: state %d remaining %d", o.State, o.Remaining)
	}

	if err := m.OnStatus(schema.OrderStatus{OrderID: id, FillQty: 30, RemainingQty: 0}); err != nil {
		t.Fatalf("status: %v", err)
	}
	if _, ok := m.Resting(schema.SideBuy); ok {
		t.Fatalf("side not freed after terminal status")
	}
}

func TestGatewayErrorFreesSide(t *testing.T) {
	sink := &sinkRecorder{}
	m := NewManager(sink)

	id, err := m.PlaceQuote(schema.SideSell, 10100, 25, schema.LifespanGoodForDay)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := m.OnError(schema.GatewayError{OrderID: id, Message: "price out of bounds"}); err != nil {
		t.Fatalf("error: %v", err)
	}
	if _, ok := m.Resting(schema.SideSell); ok {
		t.Fatalf("side not freed after gateway error")
	}
	if _, ok := m.Order(id); ok {
		t.Fatalf("order %d still tracked after gateway error", id)
	}

	// a fresh quote can use the side again, with a new id
	next, err := m.PlaceQuote(schema.SideSell, 10100, 25, schema.LifespanGoodForDay)
	if err != nil {
		t.Fatalf("requote: %v", err)
	}
	if next <= id {
		t.Fatalf("id %d reused or not increasing", next)
	}
}

func TestGatewayErrorUntrackedIsIgnored(t *testing.T) {
	m := NewManager(&sinkRecorder{})

	if err := m.OnError(schema.GatewayError{OrderID: 0, Message: "session warning"}); err != nil {
		t.Fatalf("session error: %v", err)
	}
	if err := m.OnError(schema.GatewayError{OrderID: 99, Message: "unknown order"}); err != nil {
		t.Fatalf("untracked error: %v", err)
	}
}

func TestSubmitFailureKeepsSlotFree(t *testing.T) {
	sink := &sinkRecorder{err: exception.ErrOrderQueueFull}
	m := NewManager(sink)

	if _, err := m.PlaceQuote(schema.SideBuy, 9900, 25, schema.LifespanGoodForDay); !errors.Is(err, exception.ErrOrderQueueFull) {
		t.Fatalf("got %v, want ErrOrderQueueFull", err)
	}
	if _, ok := m.Resting(schema.SideBuy); ok {
		t.Fatalf("slot occupied after failed submit")
	}
}
