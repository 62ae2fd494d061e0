package dom

// EventListener handles events. Returning false is equivalent to calling
// PreventDefault.
type EventListener interface {
	HandleEvent(e *Event) bool
}

// ListenerFunc adapts a function to EventListener. It never prevents the
// default action.
type ListenerFunc func(e *Event)

func (f ListenerFunc) HandleEvent(e *Event) bool {
	f(e)
	return true
}

// GuardFunc adapts a function whose result decides the default action.
type GuardFunc func(e *Event) bool

func (f GuardFunc) HandleEvent(e *Event) bool {
	return f(e)
}

// ListenerID identifies a registered listener on its node.
type ListenerID uint64

type listenerOptions struct {
	capture bool
	passive bool
	once    bool
}

// ListenerOption configures AddEventListener.
type ListenerOption func(*listenerOptions)

// WithCapture registers the listener for the capture phase.
func WithCapture() ListenerOption {
	return func(o *listenerOptions) { o.capture = true }
}

// WithPassive makes PreventDefault a no-op inside the listener.
func WithPassive() ListenerOption {
	return func(o *listenerOptions) { o.passive = true }
}

// WithOnce removes the listener after its first invocation.
func WithOnce() ListenerOption {
	return func(o *listenerOptions) { o.once = true }
}

type listenerRecord struct {
	id       ListenerID
	listener EventListener
	opts     listenerOptions
	removed  bool
}

// listenerTable holds a node's listeners by event type, in registration
// order.
type listenerTable struct {
	next   ListenerID
	byType map[string][]*listenerRecord
}

func (t *listenerTable) add(typ string, l EventListener, opts []ListenerOption) ListenerID {
	var o listenerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if t.byType == nil {
		t.byType = make(map[string][]*listenerRecord)
	}
	t.next++
	t.byType[typ] = append(t.byType[typ], &listenerRecord{id: t.next, listener: l, opts: o})
	return t.next
}

func (t *listenerTable) remove(typ string, id ListenerID) bool {
	list := t.byType[typ]
	for i, rec := range list {
		if rec.id == id {
			rec.removed = true
			t.byType[typ] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot returns the current listeners for typ. Records removed after
// the snapshot is taken are flagged and skipped by the caller.
func (t *listenerTable) snapshot(typ string) []*listenerRecord {
	list := t.byType[typ]
	if len(list) == 0 {
		return nil
	}
	return append([]*listenerRecord(nil), list...)
}

func (t *listenerTable) count(typ string) int {
	return len(t.byType[typ])
}
