package protocol

import "fmt"

// ControlType identifies a control message.
type ControlType uint8

const (
	ControlPing          ControlType = 0x01
	ControlPong          ControlType = 0x02
	ControlResyncRequest ControlType = 0x10
	ControlResyncDone    ControlType = 0x11
	ControlClose         ControlType = 0x20
)

func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlResyncRequest:
		return "ResyncRequest"
	case ControlResyncDone:
		return "ResyncDone"
	case ControlClose:
		return "Close"
	}
	return fmt.Sprintf("ControlType(0x%02x)", uint8(ct))
}

// CloseReason explains a Close control message.
type CloseReason uint8

const (
	CloseNormal        CloseReason = 0x00
	CloseGoingAway     CloseReason = 0x01
	CloseSessionEnded  CloseReason = 0x02
	CloseProtocolError CloseReason = 0x03
)

// Control is a decoded control message. Timestamp is used by ping and
// pong, Seq by resync messages, and Reason and Message by close.
type Control struct {
	Type      ControlType
	Timestamp uint64
	Seq       uint64
	Reason    CloseReason
	Message   string
}

// NewPing returns a ping stamped with ts.
func NewPing(ts uint64) *Control { return &Control{Type: ControlPing, Timestamp: ts} }

// NewPong answers a ping with the same timestamp.
func NewPong(ts uint64) *Control { return &Control{Type: ControlPong, Timestamp: ts} }

// NewResyncRequest asks for every call after lastSeq.
func NewResyncRequest(lastSeq uint64) *Control {
	return &Control{Type: ControlResyncRequest, Seq: lastSeq}
}

// NewResyncDone reports that replay finished at seq.
func NewResyncDone(seq uint64) *Control { return &Control{Type: ControlResyncDone, Seq: seq} }

// NewClose returns a close message.
func NewClose(reason CloseReason, msg string) *Control {
	return &Control{Type: ControlClose, Reason: reason, Message: msg}
}

// Encode encodes the message as a Control frame payload.
func (c *Control) Encode() ([]byte, error) {
	e := NewEncoder()
	e.WriteByte(byte(c.Type))
	switch c.Type {
	case ControlPing, ControlPong:
		e.WriteUint64(c.Timestamp)
	case ControlResyncRequest, ControlResyncDone:
		e.WriteUvarint(c.Seq)
	case ControlClose:
		e.WriteByte(byte(c.Reason))
		e.WriteString(c.Message)
	default:
		return nil, fmt.Errorf("protocol: cannot encode %s", c.Type)
	}
	return e.Bytes(), nil
}

// DecodeControl decodes a Control frame payload.
func DecodeControl(data []byte) (*Control, error) {
	d := NewDecoder(data)
	ct, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	c := &Control{Type: ControlType(ct)}
	switch c.Type {
	case ControlPing, ControlPong:
		c.Timestamp, err = d.ReadUint64()
	case ControlResyncRequest, ControlResyncDone:
		c.Seq, err = d.ReadUvarint()
	case ControlClose:
		var reason byte
		if reason, err = d.ReadByte(); err != nil {
			return nil, err
		}
		c.Reason = CloseReason(reason)
		c.Message, err = d.ReadString()
	default:
		return nil, fmt.Errorf("protocol: unknown control type 0x%02x", ct)
	}
	if err != nil {
		return nil, err
	}
	return c, d.Finish()
}
