package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const (
	OrderAcceptedPayloadSize = 8
	OrderStatusPayloadSize   = 32
)

// EncodeOrderAccepted serializes an order acceptance into a fixed-size payload.
func EncodeOrderAccepted(dst []byte, ack schema.OrderAccepted) []byte {
	if cap(dst) < OrderAcceptedPayloadSize {
		dst = make([]byte, OrderAcceptedPayloadSize)
	} else {
		dst = dst[:OrderAcceptedPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], ack.OrderID)

	return dst
}

// DecodeOrderAccepted parses a fixed-size order acceptance payload.
func DecodeOrderAccepted(src []byte) (schema.OrderAccepted, bool) {
	if len(src) < OrderAcceptedPayloadSize {
		return schema.OrderAccepted{}, false
	}
	return schema.OrderAccepted{
		OrderID: binary.LittleEndian.Uint64(src[0:8]),
	}, true
}

// EncodeOrderStatus serializes an order status into a fixed-size payload.
func EncodeOrderStatus(dst []byte, status schema.OrderStatus) []byte {
	if cap(dst) < OrderStatusPayloadSize {
		dst = make([]byte, OrderStatusPayloadSize)
	} else {
		dst = dst[:OrderStatusPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], status.OrderID)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(status.FillQty))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(status.RemainingQty))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(status.Fees))

	return dst
}

// DecodeOrderStatus parses a fixed-size order status payload.
func DecodeOrderStatus(src []byte) (schema.OrderStatus, bool) {
	if len(src) < OrderStatusPayloadSize {
		return schema.OrderStatus{}, false
	}
	return schema.OrderStatus{
		OrderID:      binary.LittleEndian.Uint64(src[0:8]),
		FillQty:      schema.Quantity(int64(binary.LittleEndian.Uint64(src[8:16]))),
		RemainingQty: schema.Quantity(int64(binary.LittleEndian.Uint64(src[16:24]))),
		Fees:         schema.Fee(int64(binary.LittleEndian.Uint64(src[24:32]))),
	}, true
}
