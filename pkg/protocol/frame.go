package protocol

import (
	"errors"
	"io"
)

const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the largest payload a frame can carry.
	MaxPayloadSize = 65535
)

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FrameHandshake FrameType = 0x00
	FrameEvent     FrameType = 0x01 // host → server
	FrameCalls     FrameType = 0x02 // server → host
	FrameControl   FrameType = 0x03
	FrameAck       FrameType = 0x04
	FrameError     FrameType = 0x05
)

func (ft FrameType) String() string {
	switch ft {
	case FrameHandshake:
		return "Handshake"
	case FrameEvent:
		return "Event"
	case FrameCalls:
		return "Calls"
	case FrameControl:
		return "Control"
	case FrameAck:
		return "Ack"
	case FrameError:
		return "Error"
	}
	return "Unknown"
}

// Valid reports whether ft is a known frame type.
func (ft FrameType) Valid() bool { return ft <= FrameError }

// FrameFlags modify how a frame is processed.
type FrameFlags uint8

const (
	// FlagReplay marks call frames resent after a resync request.
	FlagReplay FrameFlags = 0x01
)

// Has reports whether flag is set.
func (ff FrameFlags) Has(flag FrameFlags) bool { return ff&flag != 0 }

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a header plus payload.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame builds a frame, rejecting payloads over MaxPayloadSize.
func NewFrame(ft FrameType, flags FrameFlags, payload []byte) (*Frame, error) {
	if len(payload) > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	return &Frame{Type: ft, Flags: flags, Payload: payload}, nil
}

// Encode returns the header followed by the payload.
func (f *Frame) Encode() []byte {
	n := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+n)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(n >> 8)
	buf[3] = byte(n)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// DecodeFrame parses one complete frame. Bytes beyond the declared payload
// are ignored.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	ft := FrameType(data[0])
	if !ft.Valid() {
		return nil, ErrInvalidFrameType
	}
	n := int(data[2])<<8 | int(data[3])
	if len(data) < FrameHeaderSize+n {
		return nil, io.ErrUnexpectedEOF
	}
	payload := make([]byte, n)
	copy(payload, data[FrameHeaderSize:])
	return &Frame{Type: ft, Flags: FrameFlags(data[1]), Payload: payload}, nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	ft := FrameType(header[0])
	if !ft.Valid() {
		return nil, ErrInvalidFrameType
	}
	payload := make([]byte, int(header[2])<<8|int(header[3]))
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &Frame{Type: ft, Flags: FrameFlags(header[1]), Payload: payload}, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
