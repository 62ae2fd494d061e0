package protocol

import "fmt"

// ProtocolVersion is a major.minor pair. Hosts and servers interoperate
// when the majors match.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the version this package speaks.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether v can talk to other.
func (v ProtocolVersion) Compatible(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// HostHello opens a connection.
type HostHello struct {
	Version  ProtocolVersion
	RootTag  int
	Platform string

	// SessionID and LastSeq are set when a host reconnects and wants the
	// calls it missed replayed.
	SessionID string
	LastSeq   uint64
}

// Encode encodes the hello as a Handshake frame payload.
func (h *HostHello) Encode() []byte {
	e := NewEncoder()
	e.WriteByte(h.Version.Major)
	e.WriteByte(h.Version.Minor)
	e.WriteInt(h.RootTag)
	e.WriteString(h.Platform)
	e.WriteString(h.SessionID)
	e.WriteUvarint(h.LastSeq)
	return e.Bytes()
}

// DecodeHostHello decodes a HostHello payload.
func DecodeHostHello(data []byte) (*HostHello, error) {
	d := NewDecoder(data)
	var h HostHello
	var err error
	if h.Version.Major, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if h.Version.Minor, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if h.RootTag, err = d.ReadInt(); err != nil {
		return nil, err
	}
	if h.Platform, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.LastSeq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	return &h, d.Finish()
}

// HandshakeStatus is the server's verdict on a HostHello.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeInvalidRoot     HandshakeStatus = 0x02
	HandshakeServerBusy      HandshakeStatus = 0x03
	HandshakeInternalError   HandshakeStatus = 0x04
)

func (s HandshakeStatus) String() string {
	switch s {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeInvalidRoot:
		return "InvalidRoot"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeInternalError:
		return "InternalError"
	}
	return fmt.Sprintf("HandshakeStatus(0x%02x)", uint8(s))
}

// ServerHello answers a HostHello.
type ServerHello struct {
	Status     HandshakeStatus
	Version    ProtocolVersion
	SessionID  string
	ServerTime uint64 // Unix milliseconds
}

// Encode encodes the hello as a Handshake frame payload.
func (s *ServerHello) Encode() []byte {
	e := NewEncoder()
	e.WriteByte(byte(s.Status))
	e.WriteByte(s.Version.Major)
	e.WriteByte(s.Version.Minor)
	e.WriteString(s.SessionID)
	e.WriteUint64(s.ServerTime)
	return e.Bytes()
}

// DecodeServerHello decodes a ServerHello payload.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	d := NewDecoder(data)
	var s ServerHello
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	s.Status = HandshakeStatus(status)
	if s.Version.Major, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if s.Version.Minor, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if s.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if s.ServerTime, err = d.ReadUint64(); err != nil {
		return nil, err
	}
	return &s, d.Finish()
}
