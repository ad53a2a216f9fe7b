package schema

import "strconv"

// Price is an integer in minimum currency units (ticks apply on top).
type Price int64

func (p Price) AppendString(priceScale int, buf []byte) []byte {
	return appendScaledInt(buf, int64(p), priceScale)
}

// Quantity is an integer number of lots.
type Quantity int64

func (q Quantity) AppendString(quantityScale int, buf []byte) []byte {
	return appendScaledInt(buf, int64(q), quantityScale)
}

// Fee is a signed scaled integer fee amount.
type Fee int64

func (f Fee) AppendString(feeScale int, buf []byte) []byte {
	return appendScaledInt(buf, int64(f), feeScale)
}

// Instrument tags one of the two correlated books.
type Instrument uint16

const (
	InstrumentUnknown Instrument = iota
	// InstrumentReference is the liquid leg whose prices drive quoting.
	InstrumentReference
	// InstrumentTradable is the illiquid leg the engine quotes and holds.
	InstrumentTradable
)

func (i Instrument) String() string {
	switch i {
	case InstrumentReference:
		return "reference"
	case InstrumentTradable:
		return "tradable"
	default:
		return "unknown"
	}
}

// Side describes order direction.
type Side uint16

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the other direction.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnknown
	}
}

// Lifespan describes order time-in-force.
type Lifespan uint16

const (
	LifespanUnknown Lifespan = iota
	LifespanGoodForDay
	LifespanFillAndKill
)

// TopLevelCount is the number of book levels carried per update.
// The decision core only reads level 0.
const TopLevelCount = 5

// BookUpdate is the payload for EventBookUpdate and EventTradeTicks.
type BookUpdate struct {
	Instrument Instrument
	Flags      uint16
	Seq        uint64
	AskPrices  [TopLevelCount]Price
	AskVolumes [TopLevelCount]Quantity
	BidPrices  [TopLevelCount]Price
	BidVolumes [TopLevelCount]Quantity
}

// BestAsk returns the level-0 ask. Price 0 means no ask.
func (b BookUpdate) BestAsk() (Price, Quantity) {
	return b.AskPrices[0], b.AskVolumes[0]
}

// BestBid returns the level-0 bid. Price 0 means no bid.
func (b BookUpdate) BestBid() (Price, Quantity) {
	return b.BidPrices[0], b.BidVolumes[0]
}

// OrderAccepted is the payload for EventOrderAccepted.
type OrderAccepted struct {
	OrderID uint64
}

// OrderStatus is the payload for EventOrderStatus.
// RemainingQty 0 is terminal regardless of how the order ended.
type OrderStatus struct {
	OrderID      uint64
	FillQty      Quantity
	RemainingQty Quantity
	Fees         Fee
}

// Fill is the payload for EventOrderFilled and EventHedgeFilled. The
// event type names the book: order fills execute on the tradable book,
// hedge fills on the reference book.
type Fill struct {
	OrderID uint64
	Side    Side
	Price   Price
	Qty     Quantity
}

// GatewayError is the payload for EventGatewayError.
// OrderID 0 means the error is not tied to a specific order.
type GatewayError struct {
	OrderID uint64
	Message string
}

func appendScaledInt(buf []byte, value int64, scale int) []byte {
	if scale <= 0 {
		return strconv.AppendInt(buf, value, 10)
	}

	neg := value < 0
	u := uint64(value)
	if neg {
		u = uint64(^value) + 1
	}

	var tmp [32]byte
	digits := strconv.AppendUint(tmp[:0], u, 10)

	if neg {
		buf = append(buf, '-')
	}

	if len(digits) <= scale {
		buf = append(buf, '0', '.')
		for i := 0; i < scale-len(digits); i++ {
			buf = append(buf, '0')
		}
		buf = append(buf, digits...)
		return buf
	}

	idx := len(digits) - scale
	buf = append(buf, digits[:idx]...)
	buf = append(buf, '.')
	buf = append(buf, digits[idx:]...)
	return buf
}
