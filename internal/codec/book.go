package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

// 12-byte prefix plus four arrays of five 8-byte values.
const BookUpdatePayloadSize = 12 + 4*schema.TopLevelCount*8

// EncodeBookUpdate serializes a book update into a fixed-size payload.
func EncodeBookUpdate(dst []byte, book schema.BookUpdate) []byte {
	if cap(dst) < BookUpdatePayloadSize {
		dst = make([]byte, BookUpdatePayloadSize)
	} else {
		dst = dst[:BookUpdatePayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(book.Instrument))
	binary.LittleEndian.PutUint16(dst[2:4], book.Flags)
	binary.LittleEndian.PutUint64(dst[4:12], book.Seq)

	off := 12
	for i := 0; i < schema.TopLevelCount; i++ {
		binary.LittleEndian.PutUint64(dst[off:off+8], uint64(book.AskPrices[i]))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		binary.LittleEndian.PutUint64(dst[off:off+8], uint64(book.AskVolumes[i]))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		binary.LittleEndian.PutUint64(dst[off:off+8], uint64(book.BidPrices[i]))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		binary.LittleEndian.PutUint64(dst[off:off+8], uint64(book.BidVolumes[i]))
		off += 8
	}

	return dst
}

// DecodeBookUpdate parses a fixed-size book update payload.
func DecodeBookUpdate(src []byte) (schema.BookUpdate, bool) {
	if len(src) < BookUpdatePayloadSize {
		return schema.BookUpdate{}, false
	}

	book := schema.BookUpdate{
		Instrument: schema.Instrument(binary.LittleEndian.Uint16(src[0:2])),
		Flags:      binary.LittleEndian.Uint16(src[2:4]),
		Seq:        binary.LittleEndian.Uint64(src[4:12]),
	}

	off := 12
	for i := 0; i < schema.TopLevelCount; i++ {
		book.AskPrices[i] = schema.Price(int64(binary.LittleEndian.Uint64(src[off : off+8])))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		book.AskVolumes[i] = schema.Quantity(int64(binary.LittleEndian.Uint64(src[off : off+8])))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		book.BidPrices[i] = schema.Price(int64(binary.LittleEndian.Uint64(src[off : off+8])))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		book.BidVolumes[i] = schema.Quantity(int64(binary.LittleEndian.Uint64(src[off : off+8])))
		off += 8
	}

	return book, true
}
