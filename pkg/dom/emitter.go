package dom

// Emitter receives host event callbacks and queues them on the bridge.
type Emitter struct {
	s *Session
}

// ReceiveEvent handles a generic host event. The target tag is read from
// the payload's "target" field; payloads without one are ignored.
func (e *Emitter) ReceiveEvent(rootTag int, typ string, payload NativeEvent) {
	target, ok := payload.Target()
	if !ok {
		return
	}
	e.enqueue(target, typ, payload)
}

// ReceiveTouches handles a touch event. Only the first touch is routed;
// touches on the root view or without a valid target are ignored.
func (e *Emitter) ReceiveTouches(typ string, touches []NativeEvent, changedIndices []int) {
	if len(touches) == 0 {
		return
	}
	touch := touches[0]
	target, ok := touch.Target()
	if !ok || target < 1 {
		return
	}
	if root, ok := e.s.registry.Root(); ok && target == root {
		return
	}
	e.enqueue(target, typ, touch)
}

func (e *Emitter) enqueue(target int, typ string, payload NativeEvent) {
	if payload == nil {
		payload = NativeEvent{}
	}
	e.s.bridge.Enqueue(Command{
		Method: MethodEvent,
		ID:     target,
		Event:  HostEvent{TargetID: target, Type: typ, Native: payload},
	})
}
