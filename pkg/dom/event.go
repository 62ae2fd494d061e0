package dom

import (
	"strconv"
	"time"
)

// Event types synthesized from host events.
const (
	EventClick  = "Click"
	EventChange = "Change"
	EventFocus  = "Focus"
	EventBlur   = "Blur"
)

// EventPhase is the dispatch phase an event is in.
type EventPhase int

const (
	PhaseNone EventPhase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

func (p EventPhase) String() string {
	switch p {
	case PhaseCapturing:
		return "capturing"
	case PhaseAtTarget:
		return "at-target"
	case PhaseBubbling:
		return "bubbling"
	}
	return "none"
}

// EventInit holds the constructor flags of an Event.
type EventInit struct {
	Bubbles    bool
	Cancelable bool
}

// Event is a single dispatch of a named event. A new Event is created for
// every dispatch.
//
// Bubbles is informational: every dispatch runs the bubble phase unless a
// listener stops propagation. Events synthesized from host events are
// created with Bubbles set.
type Event struct {
	Type       string
	Bubbles    bool
	Cancelable bool

	// Target and CurrentTarget are set by DispatchEvent.
	Target        Node
	CurrentTarget Node
	EventPhase    EventPhase

	DefaultPrevented bool

	// Data carries the event payload, e.g. the new text of a Change event.
	Data any

	// NativeEvent is the host payload of a trusted event.
	NativeEvent NativeEvent

	Timestamp time.Time

	isTrusted         bool
	cancelBubble      bool
	immediateStopped  bool
	inPassiveListener bool
}

// NewEvent creates an untrusted event.
func NewEvent(typ string, init EventInit) *Event {
	return &Event{
		Type:       typ,
		Bubbles:    init.Bubbles,
		Cancelable: init.Cancelable,
		Timestamp:  time.Now(),
	}
}

// IsTrusted reports whether the event originated from the host.
func (e *Event) IsTrusted() bool { return e.isTrusted }

// StopPropagation prevents the bubble phase. Listeners of the phase in
// progress still run.
func (e *Event) StopPropagation() {
	e.cancelBubble = true
}

// StopImmediatePropagation skips the remaining listeners of the current
// node. Other nodes on the path are unaffected; use StopPropagation to
// prevent bubbling.
func (e *Event) StopImmediatePropagation() {
	e.immediateStopped = true
}

// CancelBubble reports whether propagation was stopped.
func (e *Event) CancelBubble() bool { return e.cancelBubble }

// PreventDefault marks the default action as cancelled. It has no effect
// inside a passive listener.
func (e *Event) PreventDefault() {
	if e.inPassiveListener {
		return
	}
	e.DefaultPrevented = true
}

// ReturnValue reports whether the default action should proceed.
func (e *Event) ReturnValue() bool { return !e.DefaultPrevented }

// Host event type names.
const (
	TopTouchEnd   = "topTouchEnd"
	TopFocus      = "topFocus"
	TopBlur       = "topBlur"
	TopEndEditing = "topEndEditing"
)

// NativeEvent is the payload a host attaches to an event.
type NativeEvent map[string]any

// Target returns the numeric "target" field.
func (n NativeEvent) Target() (int, bool) {
	return toInt(n["target"])
}

// Text returns the "text" field, or "" when absent.
func (n NativeEvent) Text() string {
	s, _ := n["text"].(string)
	return s
}

// HostEvent is a host-originated event routed through the bridge.
type HostEvent struct {
	TargetID int
	Type     string
	Native   NativeEvent
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
