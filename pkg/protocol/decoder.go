package protocol

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// Allocation limits applied while decoding untrusted input.
const (
	// DefaultMaxAllocation bounds any single string allocation.
	DefaultMaxAllocation = 4 * 1024 * 1024

	// MaxCollectionCount bounds list, map and int-slice lengths.
	MaxCollectionCount = 100_000
)

// Decoding errors.
var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrAllocationTooLarge = errors.New("protocol: allocation exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection exceeds limit")
	ErrTrailingBytes      = errors.New("protocol: trailing bytes after message")
)

// Decoder reads protocol primitives from a byte slice.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a decoder over buf. The buffer is not copied.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// EOF reports whether all bytes have been consumed.
func (d *Decoder) EOF() bool { return d.pos >= len(d.buf) }

// Finish returns ErrTrailingBytes if any bytes remain.
func (d *Decoder) Finish() error {
	if !d.EOF() {
		return ErrTrailingBytes
	}
	return nil
}

// ReadByte reads one byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadBool reads a byte and reports whether it is non-zero.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	return b != 0, err
}

// ReadUvarint reads an unsigned varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.pos:])
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	d.pos += n
	return v, nil
}

// ReadSvarint reads a zigzag-encoded signed varint.
func (d *Decoder) ReadSvarint() (int64, error) {
	v, n := binary.Varint(d.buf[d.pos:])
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	d.pos += n
	return v, nil
}

// ReadUint16 reads a big-endian uint16.
func (d *Decoder) ReadUint16() (uint16, error) {
	if d.Remaining() < 2 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v, nil
}

// ReadUint64 reads a big-endian uint64.
func (d *Decoder) ReadUint64() (uint64, error) {
	if d.Remaining() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v, nil
}

// ReadFloat64 reads an IEEE 754 double.
func (d *Decoder) ReadFloat64() (float64, error) {
	bits, err := d.ReadUint64()
	return math.Float64frombits(bits), err
}

// ReadString reads a length-prefixed string.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > DefaultMaxAllocation {
		return "", ErrAllocationTooLarge
	}
	if n > uint64(d.Remaining()) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

// ReadInt reads a signed varint as an int.
func (d *Decoder) ReadInt() (int, error) {
	v, err := d.ReadSvarint()
	return int(v), err
}

// ReadCount reads a collection length and checks it against the limits
// and the bytes left. Every element occupies at least one byte.
func (d *Decoder) ReadCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	if n > uint64(d.Remaining()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(n), nil
}

// ReadInts reads a slice written by Encoder.WriteInts. An empty slice
// decodes as nil.
func (d *Decoder) ReadInts() ([]int, error) {
	n, err := d.ReadCount()
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		if out[i], err = d.ReadInt(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
