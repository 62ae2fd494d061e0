package dom

import "time"

// Binding is the bridge-facing half of a node. It owns the node's tag and
// prop cache and turns node operations into queued commands.
type Binding struct {
	id        int
	localName string
	props     map[string]any
	node      *node
	session   *Session
	gen       uint64
}

func newBinding(s *Session, n *node) *Binding {
	b := &Binding{
		id:        s.registry.AllocateNewTag(),
		localName: n.localName,
		props:     make(map[string]any),
		node:      n,
		session:   s,
		gen:       s.generation,
	}
	if n.owner != nil && n.owner.binding != nil {
		b.gen = n.owner.binding.gen
	}
	if !b.Stale() {
		s.registry.AddBinding(b)
	}
	return b
}

// ID returns the node's tag.
func (b *Binding) ID() int { return b.id }

// LocalName returns the node's local name.
func (b *Binding) LocalName() string { return b.localName }

// Node returns the node this binding belongs to.
func (b *Binding) Node() Node { return b.node.self }

// Stale reports whether the binding belongs to a document that has since
// been replaced or disposed. Its tag may now name another node, so its
// commands are dropped.
func (b *Binding) Stale() bool { return b.gen != b.session.generation }

func (b *Binding) enqueue(cmd Command) {
	if b.Stale() {
		b.session.logger.Debug("dropping command from replaced document",
			"method", string(cmd.Method),
			"id", b.id)
		return
	}
	b.session.bridge.Enqueue(cmd)
}

// Create queues creation of the host view.
func (b *Binding) Create() {
	b.enqueue(Command{Method: MethodCreate, ID: b.id, Name: b.localName})
}

// Clear runs everything already queued, then queues removal of all host
// children under the root.
func (b *Binding) Clear() {
	b.session.bridge.Flush()
	b.enqueue(Command{Method: MethodClear, ID: b.id})
}

// SetProp caches value under key and queues a host update. Every call
// queues a command, including writes of an unchanged value.
func (b *Binding) SetProp(key string, value any) {
	b.props[key] = value
	b.enqueue(Command{Method: MethodSetProp, ID: b.id, Name: key, Value: value})
}

// Prop returns the cached value for key.
func (b *Binding) Prop(key string) (any, bool) {
	v, ok := b.props[key]
	return v, ok
}

// RemoveProp drops key from the cache and queues a host update that
// clears it. Removing an absent key is a no-op.
func (b *Binding) RemoveProp(key string) {
	if _, ok := b.props[key]; !ok {
		return
	}
	delete(b.props, key)
	b.enqueue(Command{Method: MethodRemoveProp, ID: b.id, Name: key})
}

// Props returns a copy of the prop cache.
func (b *Binding) Props() map[string]any {
	out := make(map[string]any, len(b.props))
	for k, v := range b.props {
		out[k] = v
	}
	return out
}

// UpdateChildren queues a children diff between two snapshots of child
// tags. The slices are copied.
func (b *Binding) UpdateChildren(old, next []int) {
	b.enqueue(Command{
		Method: MethodUpdateChildren,
		ID:     b.id,
		Old:    append([]int(nil), old...),
		New:    append([]int(nil), next...),
	})
}

// DispatchEvent delivers a host event to the node as a trusted Event of
// the given type. Change events carry the native payload's text as Data.
func (b *Binding) DispatchEvent(typ string, native NativeEvent) bool {
	e := NewEvent(typ, EventInit{Bubbles: true})
	e.isTrusted = true
	e.NativeEvent = native
	e.Timestamp = time.Now()
	if typ == EventChange {
		e.Data = native.Text()
	}
	return b.node.self.DispatchEvent(e)
}
