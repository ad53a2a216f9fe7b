package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

// GatewayErrorHeaderSize precedes the variable-length message bytes.
const GatewayErrorHeaderSize = 10

// MaxGatewayErrorMessage bounds the message so records stay small.
const MaxGatewayErrorMessage = 1 << 10

// EncodeGatewayError serializes a gateway error. The message is truncated
// to MaxGatewayErrorMessage bytes.
func EncodeGatewayError(dst []byte, ge schema.GatewayError) []byte {
	msg := ge.Message
	if len(msg) > MaxGatewayErrorMessage {
		msg = msg[:MaxGatewayErrorMessage]
	}

	size := GatewayErrorHeaderSize + len(msg)
	if cap(dst) < size {
		dst = make([]byte, size)
	} else {
		dst = dst[:size]
	}

	binary.LittleEndian.PutUint64(dst[0:8], ge.OrderID)
	binary.LittleEndian.PutUint16(dst[8:10], uint16(len(msg)))
	copy(dst[10:], msg)

	return dst
}

// DecodeGatewayError parses a gateway error payload.
func DecodeGatewayError(src []byte) (schema.GatewayError, bool) {
	if len(src) < GatewayErrorHeaderSize {
		return schema.GatewayError{}, false
	}
	msgLen := int(binary.LittleEndian.Uint16(src[8:10]))
	if len(src) < GatewayErrorHeaderSize+msgLen {
		return schema.GatewayError{}, false
	}
	return schema.GatewayError{
		OrderID: binary.LittleEndian.Uint64(src[0:8]),
		Message: string(src[10 : 10+msgLen]),
	}, true
}
