package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const CommandPayloadSize = 32

// EncodeCommand serializes an outbound command into a fixed-size payload.
// All three variants share one layout; unused fields stay zero.
func EncodeCommand(dst []byte, cmd schema.Command) []byte {
	if cap(dst) < CommandPayloadSize {
		dst = make([]byte, CommandPayloadSize)
	} else {
		dst = dst[:CommandPayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(cmd.Type))

	switch cmd.Type {
	case schema.CommandInsert:
		binary.LittleEndian.PutUint16(dst[2:4], uint16(cmd.Insert.Side))
		binary.LittleEndian.PutUint16(dst[4:6], uint16(cmd.Insert.Lifespan))
		binary.LittleEndian.PutUint16(dst[6:8], 0)
		binary.LittleEndian.PutUint64(dst[8:16], cmd.Insert.OrderID)
		binary.LittleEndian.PutUint64(dst[16:24], uint64(cmd.Insert.Price))
		binary.LittleEndian.PutUint64(dst[24:32], uint64(cmd.Insert.Qty))
	case schema.CommandCancel:
		binary.LittleEndian.PutUint16(dst[2:4], 0)
		binary.LittleEndian.PutUint16(dst[4:6], 0)
		binary.LittleEndian.PutUint16(dst[6:8], 0)
		binary.LittleEndian.PutUint64(dst[8:16], cmd.Cancel.OrderID)
		binary.LittleEndian.PutUint64(dst[16:24], 0)
		binary.LittleEndian.PutUint64(dst[24:32], 0)
	case schema.CommandHedge:
		binary.LittleEndian.PutUint16(dst[2:4], uint16(cmd.Hedge.Side))
		binary.LittleEndian.PutUint16(dst[4:6], 0)
		binary.LittleEndian.PutUint16(dst[6:8], 0)
		binary.LittleEndian.PutUint64(dst[8:16], cmd.Hedge.OrderID)
		binary.LittleEndian.PutUint64(dst[16:24], uint64(cmd.Hedge.Price))
		binary.LittleEndian.PutUint64(dst[24:32], uint64(cmd.Hedge.Qty))
	}

	return dst
}

// DecodeCommand parses a fixed-size command payload.
func DecodeCommand(src []byte) (schema.Command, bool) {
	if len(src) < CommandPayloadSize {
		return schema.Command{}, false
	}

	cmd := schema.Command{Type: schema.CommandType(binary.LittleEndian.Uint16(src[0:2]))}
	switch cmd.Type {
	case schema.CommandInsert:
		cmd.Insert = schema.InsertOrder{
			Side:     schema.Side(binary.LittleEndian.Uint16(src[2:4])),
			Lifespan: schema.Lifespan(binary.LittleEndian.Uint16(src[4:6])),
			OrderID:  binary.LittleEndian.Uint64(src[8:16]),
			Price:    schema.Price(int64(binary.LittleEndian.Uint64(src[16:24]))),
			Qty:      schema.Quantity(int64(binary.LittleEndian.Uint64(src[24:32]))),
		}
	case schema.CommandCancel:
		cmd.Cancel = schema.CancelOrder{
			OrderID: binary.LittleEndian.Uint64(src[8:16]),
		}
	case schema.CommandHedge:
		cmd.Hedge = schema.HedgeOrder{
			Side:    schema.Side(binary.LittleEndian.Uint16(src[2:4])),
			OrderID: binary.LittleEndian.Uint64(src[8:16]),
			Price:   schema.Price(int64(binary.LittleEndian.Uint64(src[16:24]))),
			Qty:     schema.Quantity(int64(binary.LittleEndian.Uint64(src[24:32]))),
		}
	default:
		return schema.Command{}, false
	}

	return cmd, true
}
