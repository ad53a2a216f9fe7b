package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const FillPayloadSize = 32

// EncodeFill serializes a fill into a fixed-size payload.
func EncodeFill(dst []byte, fill schema.Fill) []byte {
	if cap(dst) < FillPayloadSize {
		dst = make([]byte, FillPayloadSize)
	} else {
		dst = dst[:FillPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], fill.OrderID)
	binary.LittleEndian.PutUint16(dst[8:10], uint16(fill.Side))
	binary.LittleEndian.PutUint16(dst[10:12], 0)
	binary.LittleEndian.PutUint32(dst[12:16], 0)
	binary.LittleEndian.PutUint64(dst[16:24], uint64(fill.Price))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(fill.Qty))

	return dst
}

// DecodeFill parses a fixed-size fill payload.
func DecodeFill(src []byte) (schema.Fill, bool) {
	if len(src) < FillPayloadSize {
		return schema.Fill{}, false
	}
	return schema.Fill{
		OrderID: binary.LittleEndian.Uint64(src[0:8]),
		Side:    schema.Side(binary.LittleEndian.Uint16(src[8:10])),
		Price:   schema.Price(int64(binary.LittleEndian.Uint64(src[16:24]))),
		Qty:     schema.Quantity(int64(binary.LittleEndian.Uint64(src[24:32]))),
	}, true
}
