package dom

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/vango-dev/hostdom/pkg/host"
)

// Bridge is the session's command queue. Commands run in FIFO order, one
// per scheduler tick, and are translated into host calls.
type Bridge struct {
	s        *Session
	queue    []Command
	draining bool

	// rootChildren is the number of views the bridge has attached under
	// each root container.
	rootChildren map[int]int
}

func newBridge(s *Session) *Bridge {
	return &Bridge{s: s, rootChildren: make(map[int]int)}
}

// Enqueue appends cmd. A drain is scheduled when cmd is the only queued
// command, no drain is pending and the session has a root.
func (b *Bridge) Enqueue(cmd Command) {
	b.queue = append(b.queue, cmd)
	b.s.observer.CommandEnqueued(cmd.Method, len(b.queue))
	if len(b.queue) == 1 {
		b.kick()
	}
}

// kick schedules a drain if one is needed and allowed.
func (b *Bridge) kick() {
	if b.draining || len(b.queue) == 0 {
		return
	}
	if _, ok := b.s.registry.Root(); !ok {
		return
	}
	b.draining = true
	b.s.sched.Defer(b.step)
}

// step runs one command and schedules the next.
func (b *Bridge) step() {
	if len(b.queue) == 0 {
		b.draining = false
		return
	}
	cmd := b.pop()
	defer b.next()
	b.execute(cmd)
}

func (b *Bridge) next() {
	if len(b.queue) == 0 {
		b.draining = false
		return
	}
	b.s.sched.Defer(b.step)
}

func (b *Bridge) pop() Command {
	cmd := b.queue[0]
	b.queue[0] = Command{}
	b.queue = b.queue[1:]
	return cmd
}

// Flush runs every queued command now, including commands queued while
// flushing.
func (b *Bridge) Flush() {
	for len(b.queue) > 0 {
		b.execute(b.pop())
	}
}

// Len returns the number of queued commands.
func (b *Bridge) Len() int { return len(b.queue) }

// Draining reports whether a drain is scheduled.
func (b *Bridge) Draining() bool { return b.draining }

// Pending returns a copy of the queued commands.
func (b *Bridge) Pending() []Command {
	return append([]Command(nil), b.queue...)
}

// CommandPanic is reported to the session error handler when executing a
// command panics. The command is dropped and the queue keeps draining.
type CommandPanic struct {
	Method Method
	ID     int
	Value  any
	Stack  []byte
}

func (p *CommandPanic) Error() string {
	return fmt.Sprintf("dom: %s on node %d panicked: %v", p.Method, p.ID, p.Value)
}

func (b *Bridge) execute(cmd Command) {
	start := time.Now()
	err := b.safeCall(cmd)
	b.s.observer.CommandExecuted(cmd.Method, time.Since(start), err)
	if err != nil {
		b.s.logger.Debug("host call failed",
			"method", string(cmd.Method),
			"id", cmd.ID,
			"error", err)
	}
}

func (b *Bridge) safeCall(cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p := &CommandPanic{Method: cmd.Method, ID: cmd.ID, Value: r, Stack: debug.Stack()}
			b.s.logger.Error("command panicked",
				"method", string(cmd.Method),
				"id", cmd.ID,
				"panic", r)
			b.s.reportAsync(p)
			err = p
		}
	}()
	return b.call(cmd)
}

func (b *Bridge) call(cmd Command) error {
	switch cmd.Method {
	case MethodClear:
		return b.clear()
	case MethodCreate:
		return b.create(cmd)
	case MethodSetProp, MethodRemoveProp:
		return b.updateProps(cmd)
	case MethodUpdateChildren:
		return b.updateChildren(cmd)
	case MethodEvent:
		b.HandleEvent(cmd.Event)
	}
	return nil
}

func (b *Bridge) root() int {
	root, _ := b.s.registry.Root()
	return root
}

// lookupType resolves a local name, falling back to its lower-case form.
func (b *Bridge) lookupType(localName string) (host.TypeEntry, bool) {
	if e, ok := b.s.types.Lookup(localName); ok {
		return e, true
	}
	return b.s.types.Lookup(strings.ToLower(localName))
}

func (b *Bridge) clear() error {
	root := b.root()
	n := b.rootChildren[root]
	if n == 0 {
		return nil
	}
	b.rootChildren[root] = 0
	removeAt := make([]int, n)
	for i := range removeAt {
		removeAt[i] = i
	}
	return b.s.host.ManageChildren(b.s.ctx, root, nil, nil, nil, nil, removeAt)
}

func (b *Bridge) create(cmd Command) error {
	binding, ok := b.s.registry.Binding(cmd.ID)
	if !ok {
		return nil
	}
	entry, ok := b.lookupType(cmd.Name)
	if !ok {
		b.s.logger.Warn("unknown element type", "tag", cmd.Name, "id", cmd.ID)
		return nil
	}
	if entry.Structural() {
		return nil
	}

	props := host.Props{}
	if cmd.Name == TagText {
		text, _ := binding.Prop("text")
		props["text"] = textOf(text)
	}
	return b.s.host.CreateView(b.s.ctx, cmd.ID, entry.HostType, b.root(), props)
}

func (b *Bridge) updateProps(cmd Command) error {
	binding, ok := b.s.registry.Binding(cmd.ID)
	if !ok {
		return nil
	}
	entry, ok := b.lookupType(binding.localName)
	if !ok || entry.Structural() {
		return nil
	}

	if binding.localName == TagText {
		text, _ := binding.Prop("text")
		err := b.s.host.UpdateView(b.s.ctx, cmd.ID, host.RawText, host.Props{"text": textOf(text)})
		if err != nil {
			return err
		}
	}

	props := binding.Props()
	if cmd.Method == MethodRemoveProp {
		if _, still := props[cmd.Name]; !still {
			props[cmd.Name] = nil
		}
	}
	vc := b.s.views.Lookup(entry.HostType)
	return b.s.host.UpdateView(b.s.ctx, cmd.ID, vc.ClassName, host.ProcessProps(props, vc.ValidAttributes))
}

func (b *Bridge) updateChildren(cmd Command) error {
	binding, ok := b.s.registry.Binding(cmd.ID)
	if !ok {
		return nil
	}

	container := cmd.ID
	if binding.localName == TagDocument {
		container = b.root()
	} else if entry, ok := b.lookupType(binding.localName); ok && entry.Structural() {
		return nil
	}

	old, next := b.viewTags(cmd.Old), b.viewTags(cmd.New)
	d := DiffChildren(old, next, b.s.strategy)
	if binding.localName == TagDocument {
		b.rootChildren[container] = len(next)
	}
	if d.Empty() {
		return nil
	}
	return b.s.host.ManageChildren(b.s.ctx, container, d.MoveFrom, d.MoveTo, d.AddTags, d.AddAt, d.RemoveAt)
}

// viewTags drops tags of structural nodes, which have no host view.
func (b *Bridge) viewTags(tags []int) []int {
	out := tags[:0:0]
	for _, tag := range tags {
		if binding, ok := b.s.registry.Binding(tag); ok {
			if entry, ok := b.lookupType(binding.localName); ok && entry.Structural() {
				continue
			}
		}
		out = append(out, tag)
	}
	return out
}

// HandleEvent routes a host event to its target node. The event type is
// classified independently as a click, keyboard and generic event; each
// matching class dispatches its own DOM event. Events whose target no
// longer exists are dropped.
func (b *Bridge) HandleEvent(ev HostEvent) {
	if ev.Type == TopTouchEnd {
		b.dispatchTo(ev, EventClick)
	}
	if isKeyboardEvent(ev.Type) {
		b.dispatchTo(ev, EventChange)
	}
	switch ev.Type {
	case TopFocus:
		b.dispatchTo(ev, EventFocus)
	case TopBlur:
		b.dispatchTo(ev, EventBlur)
	}
}

func (b *Bridge) dispatchTo(ev HostEvent, typ string) {
	binding, ok := b.s.registry.Binding(ev.TargetID)
	b.s.observer.EventRouted(typ, ok)
	if !ok {
		b.s.logger.Debug("event target gone", "type", typ, "id", ev.TargetID)
		return
	}
	native := ev.Native
	if native == nil {
		native = NativeEvent{}
	}
	binding.DispatchEvent(typ, native)
}

func isKeyboardEvent(typ string) bool {
	return typ == TopFocus || typ == TopEndEditing
}

func textOf(v any) string {
	s, _ := v.(string)
	return s
}
