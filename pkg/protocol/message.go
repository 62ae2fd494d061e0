package protocol

import "fmt"

// Ack reports the highest call sequence the host has applied.
type Ack struct {
	LastSeq uint64
}

// Encode encodes the ack as an Ack frame payload.
func (a *Ack) Encode() []byte {
	e := NewEncoder()
	e.WriteUvarint(a.LastSeq)
	return e.Bytes()
}

// DecodeAck decodes an Ack frame payload.
func DecodeAck(data []byte) (*Ack, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	return &Ack{LastSeq: seq}, d.Finish()
}

// ErrorCode classifies an Error frame.
type ErrorCode uint16

const (
	ErrUnknown         ErrorCode = 0x0000
	ErrInvalidFrame    ErrorCode = 0x0001
	ErrInvalidEvent    ErrorCode = 0x0002
	ErrHostCallFailed  ErrorCode = 0x0003
	ErrSessionExpired  ErrorCode = 0x0004
	ErrNotAcceptable   ErrorCode = 0x0005
	ErrServerError     ErrorCode = 0x0100
	ErrProtocolVersion ErrorCode = 0x0101
)

func (c ErrorCode) String() string {
	switch c {
	case ErrUnknown:
		return "Unknown"
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidEvent:
		return "InvalidEvent"
	case ErrHostCallFailed:
		return "HostCallFailed"
	case ErrSessionExpired:
		return "SessionExpired"
	case ErrNotAcceptable:
		return "NotAcceptable"
	case ErrServerError:
		return "ServerError"
	case ErrProtocolVersion:
		return "ProtocolVersion"
	}
	return fmt.Sprintf("ErrorCode(0x%04x)", uint16(c))
}

// ErrorMessage is sent in an Error frame. Fatal errors are followed by
// the connection closing.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool
}

func (m *ErrorMessage) Error() string {
	return fmt.Sprintf("protocol error %s: %s", m.Code, m.Message)
}

// Encode encodes the message as an Error frame payload.
func (m *ErrorMessage) Encode() []byte {
	e := NewEncoder()
	e.WriteUint16(uint16(m.Code))
	e.WriteString(m.Message)
	e.WriteBool(m.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an Error frame payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	m := &ErrorMessage{Code: ErrorCode(code)}
	if m.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if m.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return m, d.Finish()
}
