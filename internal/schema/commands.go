package schema

// CommandType defines the category of an outbound gateway command.
type CommandType uint16

const (
	CommandUnknown CommandType = iota
	CommandInsert
	CommandCancel
	CommandHedge
)

// InsertOrder asks the gateway to rest a new order on the tradable book.
type InsertOrder struct {
	OrderID  uint64
	Side     Side
	Price    Price
	Qty      Quantity
	Lifespan Lifespan
}

// CancelOrder asks the gateway to pull a resting order.
type CancelOrder struct {
	OrderID uint64
}

// HedgeOrder asks the gateway for an immediate offset on the reference book.
type HedgeOrder struct {
	OrderID uint64
	Side    Side
	Price   Price
	Qty     Quantity
}

// Command is the tagged union carried on the outbound queue.
type Command struct {
	Type   CommandType
	Insert InsertOrder
	Cancel CancelOrder
	Hedge  HedgeOrder
}

// NewInsert wraps an insert command.
func NewInsert(order InsertOrder) Command {
	return Command{Type: CommandInsert, Insert: order}
}

// NewCancel wraps a cancel command.
func NewCancel(orderID uint64) Command {
	return Command{Type: CommandCancel, Cancel: CancelOrder{OrderID: orderID}}
}

// NewHedge wraps a hedge command.
func NewHedge(order HedgeOrder) Command {
	return Command{Type: CommandHedge, Hedge: order}
}
