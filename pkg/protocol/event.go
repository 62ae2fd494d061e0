package protocol

import "fmt"

// EventKind selects which emitter entry point a host event is routed to.
type EventKind uint8

const (
	EventGeneric EventKind = 0x01
	EventTouches EventKind = 0x02
)

func (k EventKind) String() string {
	switch k {
	case EventGeneric:
		return "Generic"
	case EventTouches:
		return "Touches"
	}
	return fmt.Sprintf("EventKind(0x%02x)", uint8(k))
}

// HostEvent is a native event reported by the host.
type HostEvent struct {
	Kind    EventKind
	RootTag int // generic events only
	Type    string

	// Payload is the native event for generic events. Its "target" entry
	// names the view.
	Payload map[string]any

	// Touches and Changed carry touch events. Changed indexes Touches.
	Touches []map[string]any
	Changed []int
}

// Encode encodes the event as an Event frame payload.
func (ev *HostEvent) Encode() ([]byte, error) {
	e := NewEncoder()
	e.WriteByte(byte(ev.Kind))
	e.WriteString(ev.Type)
	switch ev.Kind {
	case EventGeneric:
		e.WriteInt(ev.RootTag)
		if err := e.WriteProps(ev.Payload); err != nil {
			return nil, err
		}
	case EventTouches:
		e.WriteUvarint(uint64(len(ev.Touches)))
		for _, t := range ev.Touches {
			if err := e.WriteProps(t); err != nil {
				return nil, err
			}
		}
		e.WriteInts(ev.Changed)
	default:
		return nil, fmt.Errorf("protocol: cannot encode event kind %s", ev.Kind)
	}
	return e.Bytes(), nil
}

// DecodeHostEvent decodes an Event frame payload.
func DecodeHostEvent(data []byte) (*HostEvent, error) {
	d := NewDecoder(data)
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev := &HostEvent{Kind: EventKind(kind)}
	if ev.Type, err = d.ReadString(); err != nil {
		return nil, err
	}

	switch ev.Kind {
	case EventGeneric:
		if ev.RootTag, err = d.ReadInt(); err != nil {
			return nil, err
		}
		if ev.Payload, err = d.ReadProps(); err != nil {
			return nil, err
		}
	case EventTouches:
		n, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		ev.Touches = make([]map[string]any, n)
		for i := range ev.Touches {
			if ev.Touches[i], err = d.ReadProps(); err != nil {
				return nil, err
			}
		}
		if ev.Changed, err = d.ReadInts(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("protocol: unknown event kind 0x%02x", kind)
	}
	return ev, d.Finish()
}
