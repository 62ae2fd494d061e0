package protocol

import (
	"encoding/binary"
	"math"
)

// Encoder appends protocol primitives to a growing buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with a small preallocated buffer.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 128)}
}

// Bytes returns the encoded bytes. The slice aliases the encoder's buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int { return len(e.buf) }

// Reset clears the buffer for reuse.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// WriteByte appends one byte. It never fails.
func (e *Encoder) WriteByte(b byte) error {
	e.buf = append(e.buf, b)
	return nil
}

// WriteBool appends 0x01 or 0x00.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
		return
	}
	e.buf = append(e.buf, 0)
}

// WriteUvarint appends an unsigned varint.
func (e *Encoder) WriteUvarint(v uint64) {
	e.buf = binary.AppendUvarint(e.buf, v)
}

// WriteSvarint appends a zigzag-encoded signed varint.
func (e *Encoder) WriteSvarint(v int64) {
	e.buf = binary.AppendVarint(e.buf, v)
}

// WriteUint16 appends v in big-endian order.
func (e *Encoder) WriteUint16(v uint16) {
	e.buf = binary.BigEndian.AppendUint16(e.buf, v)
}

// WriteUint64 appends v in big-endian order.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

// WriteFloat64 appends the IEEE 754 bits of v.
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}

// WriteString appends a length-prefixed UTF-8 string.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteInt appends a signed int as a varint.
func (e *Encoder) WriteInt(v int) {
	e.WriteSvarint(int64(v))
}

// WriteInts appends a count followed by each value.
func (e *Encoder) WriteInts(vs []int) {
	e.WriteUvarint(uint64(len(vs)))
	for _, v := range vs {
		e.WriteSvarint(int64(v))
	}
}
