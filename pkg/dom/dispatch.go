package dom

import (
	"fmt"
	"runtime/debug"
)

// ListenerPanic is reported to the session error handler when a listener
// panics.
type ListenerPanic struct {
	Type  string
	Node  int
	Value any
	Stack []byte
}

func (p *ListenerPanic) Error() string {
	return fmt.Sprintf("dom: listener for %q on node %d panicked: %v", p.Type, p.Node, p.Value)
}

// AddEventListener registers l for events of type typ.
func (n *node) AddEventListener(typ string, l EventListener, opts ...ListenerOption) ListenerID {
	if l == nil {
		return 0
	}
	return n.listeners.add(typ, l, opts)
}

// RemoveEventListener unregisters the listener with the given id. It
// reports whether a listener was removed.
func (n *node) RemoveEventListener(typ string, id ListenerID) bool {
	return n.listeners.remove(typ, id)
}

// DispatchEvent dispatches e with this node as target. The capture path is
// the ancestor chain at the time of the call; the bubble phase walks the
// parent chain as it is once the target phase has finished. It returns
// false if any listener prevented the default action.
func (n *node) DispatchEvent(e *Event) bool {
	e.Target = n.self

	var path []*node
	for p := n.parent; p != nil; p = p.parent {
		path = append(path, p)
	}

	for i := len(path) - 1; i >= 0; i-- {
		path[i].fire(e, PhaseCapturing)
	}

	n.fire(e, PhaseAtTarget)

	if !e.cancelBubble {
		for p := n.parent; p != nil && !e.cancelBubble; p = p.parent {
			p.fire(e, PhaseBubbling)
		}
	}

	e.EventPhase = PhaseNone
	e.CurrentTarget = nil
	return !e.DefaultPrevented
}

// fire invokes this node's listeners for e in the given phase.
func (n *node) fire(e *Event, phase EventPhase) {
	defer func() { e.immediateStopped = false }()
	for _, rec := range n.listeners.snapshot(e.Type) {
		if e.immediateStopped {
			return
		}
		if rec.removed {
			continue
		}
		if phase == PhaseCapturing && !rec.opts.capture {
			continue
		}
		if phase == PhaseBubbling && rec.opts.capture {
			continue
		}
		if rec.opts.once {
			n.listeners.remove(e.Type, rec.id)
		}

		e.EventPhase = phase
		e.CurrentTarget = n.self
		e.inPassiveListener = rec.opts.passive
		if !n.invoke(rec, e) {
			e.PreventDefault()
		}
		e.inPassiveListener = false
	}
}

// invoke calls one listener. A panic is recovered and reported to the
// session on the next tick; the listener's result then counts as true.
func (n *node) invoke(rec *listenerRecord, e *Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = true
			n.session.reportAsync(&ListenerPanic{
				Type:  e.Type,
				Node:  n.binding.id,
				Value: r,
				Stack: debug.Stack(),
			})
		}
	}()
	return rec.listener.HandleEvent(e)
}
