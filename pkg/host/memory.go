package host

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/hostdom/internal/errors"
)

// Op names recorded by MemoryHost.
const (
	OpCreateView     = "createView"
	OpUpdateView     = "updateView"
	OpManageChildren = "manageChildren"
	OpSetChildren    = "setChildren"
)

// Call is one recorded host call.
type Call struct {
	Op       string
	Tag      int
	Type     string
	Root     int
	Props    Props
	MoveFrom []int
	MoveTo   []int
	AddTags  []int
	AddAt    []int
	RemoveAt []int
	Children []int
}

// String renders the call for logs and test failures.
func (c Call) String() string {
	switch c.Op {
	case OpCreateView:
		return fmt.Sprintf("createView(%d, %s, %d, %v)", c.Tag, c.Type, c.Root, c.Props)
	case OpUpdateView:
		return fmt.Sprintf("updateView(%d, %s, %v)", c.Tag, c.Type, c.Props)
	case OpManageChildren:
		return fmt.Sprintf("manageChildren(%d, from=%v to=%v add=%v at=%v remove=%v)",
			c.Tag, c.MoveFrom, c.MoveTo, c.AddTags, c.AddAt, c.RemoveAt)
	case OpSetChildren:
		return fmt.Sprintf("setChildren(%d, %v)", c.Tag, c.Children)
	}
	return c.Op
}

// MemoryView is a view held by MemoryHost.
type MemoryView struct {
	Tag      int
	Type     string
	Props    Props
	Children []int
	Parent   int
}

// MemoryHost is an in-memory Host that maintains a real view tree.
// ManageChildren removes every index in moveFrom and removeAt (highest
// first), then inserts moved and added views at their destination indices
// in ascending order.
type MemoryHost struct {
	mu    sync.Mutex
	views map[int]*MemoryView
	calls []Call

	// FailOn, if set, is consulted before each call is applied. A non-nil
	// result is returned and the call is not applied.
	FailOn func(c Call) error
}

// NewMemoryHost returns an empty host.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{views: make(map[int]*MemoryView)}
}

func (h *MemoryHost) record(c Call) error {
	h.calls = append(h.calls, c)
	if h.FailOn != nil {
		return h.FailOn(c)
	}
	return nil
}

func (h *MemoryHost) container(tag int) *MemoryView {
	v, ok := h.views[tag]
	if !ok {
		v = &MemoryView{Tag: tag, Type: "root", Props: Props{}}
		h.views[tag] = v
	}
	return v
}

// CreateView implements Host.
func (h *MemoryHost) CreateView(_ context.Context, tag int, hostType string, rootTag int, props Props) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(Call{Op: OpCreateView, Tag: tag, Type: hostType, Root: rootTag, Props: copyProps(props)}); err != nil {
		return err
	}
	h.container(rootTag)
	h.views[tag] = &MemoryView{Tag: tag, Type: hostType, Props: copyProps(props)}
	return nil
}

// UpdateView implements Host.
func (h *MemoryHost) UpdateView(_ context.Context, tag int, viewClass string, props Props) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(Call{Op: OpUpdateView, Tag: tag, Type: viewClass, Props: copyProps(props)}); err != nil {
		return err
	}
	v, ok := h.views[tag]
	if !ok {
		return errors.New("E401").WithDetailf("updateView on tag %d", tag)
	}
	for k, val := range props {
		if val == nil {
			delete(v.Props, k)
			continue
		}
		v.Props[k] = val
	}
	return nil
}

// ManageChildren implements Host.
func (h *MemoryHost) ManageChildren(_ context.Context, container int, moveFrom, moveTo, addTags, addAt, removeAt []int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := h.record(Call{
		Op: OpManageChildren, Tag: container,
		MoveFrom: cloneInts(moveFrom), MoveTo: cloneInts(moveTo),
		AddTags: cloneInts(addTags), AddAt: cloneInts(addAt),
		RemoveAt: cloneInts(removeAt),
	})
	if err != nil {
		return err
	}

	parent, ok := h.views[container]
	if !ok {
		return errors.New("E401").WithDetailf("manageChildren on tag %d", container)
	}
	if len(moveFrom) != len(moveTo) || len(addTags) != len(addAt) {
		return errors.New("E402").WithDetail("parallel index arrays differ in length")
	}

	children := parent.Children
	type placement struct{ index, tag int }
	var inserts []placement
	drop := make(map[int]bool, len(moveFrom)+len(removeAt))

	for i, from := range moveFrom {
		if from < 0 || from >= len(children) {
			return errors.New("E402").WithDetailf("move from %d with %d children", from, len(children))
		}
		drop[from] = true
		inserts = append(inserts, placement{moveTo[i], children[from]})
	}
	var removed []int
	for _, at := range removeAt {
		if at < 0 || at >= len(children) {
			return errors.New("E402").WithDetailf("remove at %d with %d children", at, len(children))
		}
		if !drop[at] {
			removed = append(removed, children[at])
		}
		drop[at] = true
	}
	for i, tag := range addTags {
		if _, ok := h.views[tag]; !ok {
			return errors.New("E401").WithDetailf("add of tag %d", tag)
		}
		inserts = append(inserts, placement{addAt[i], tag})
	}

	next := make([]int, 0, len(children)+len(addTags))
	for i, tag := range children {
		if !drop[i] {
			next = append(next, tag)
		}
	}

	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].index < inserts[j].index })
	for _, p := range inserts {
		if p.index < 0 || p.index > len(next) {
			return errors.New("E402").WithDetailf("insert at %d with %d children", p.index, len(next))
		}
		next = append(next, 0)
		copy(next[p.index+1:], next[p.index:])
		next[p.index] = p.tag
	}

	for _, tag := range removed {
		if v, ok := h.views[tag]; ok {
			v.Parent = 0
		}
	}
	for _, p := range inserts {
		h.reparent(p.tag, container)
	}
	parent.Children = next
	return nil
}

// SetChildren implements Host.
func (h *MemoryHost) SetChildren(_ context.Context, container int, tags []int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(Call{Op: OpSetChildren, Tag: container, Children: cloneInts(tags)}); err != nil {
		return err
	}
	parent := h.container(container)
	for _, tag := range parent.Children {
		if v, ok := h.views[tag]; ok {
			v.Parent = 0
		}
	}
	for _, tag := range tags {
		if _, ok := h.views[tag]; !ok {
			return errors.New("E401").WithDetailf("setChildren with tag %d", tag)
		}
		h.reparent(tag, container)
	}
	parent.Children = cloneInts(tags)
	return nil
}

// reparent detaches tag from a previous container, if any.
func (h *MemoryHost) reparent(tag, container int) {
	v := h.views[tag]
	if v.Parent != 0 && v.Parent != container {
		if old, ok := h.views[v.Parent]; ok {
			for i, c := range old.Children {
				if c == tag {
					old.Children = append(old.Children[:i], old.Children[i+1:]...)
					break
				}
			}
		}
	}
	v.Parent = container
}

// Children returns the child tags of a view.
func (h *MemoryHost) Children(tag int) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.views[tag]; ok {
		return cloneInts(v.Children)
	}
	return nil
}

// View returns a copy of the view with the given tag.
func (h *MemoryHost) View(tag int) (MemoryView, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.views[tag]
	if !ok {
		return MemoryView{}, false
	}
	cp := *v
	cp.Props = copyProps(v.Props)
	cp.Children = cloneInts(v.Children)
	return cp, true
}

// Calls returns the recorded calls.
func (h *MemoryHost) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// ResetCalls drops the recorded calls but keeps the view tree.
func (h *MemoryHost) ResetCalls() {
	h.mu.Lock()
	h.calls = nil
	h.mu.Unlock()
}

// Dump renders the subtree under tag, one view per line.
func (h *MemoryHost) Dump(tag int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var b strings.Builder
	h.dump(&b, tag, 0)
	return b.String()
}

func (h *MemoryHost) dump(b *strings.Builder, tag, depth int) {
	v, ok := h.views[tag]
	if !ok {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "%s#%d", v.Type, v.Tag)
	if text, ok := v.Props["text"].(string); ok {
		fmt.Fprintf(b, " %q", text)
	}
	b.WriteString("\n")
	for _, c := range v.Children {
		h.dump(b, c, depth+1)
	}
}

func copyProps(p Props) Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func cloneInts(s []int) []int {
	if s == nil {
		return nil
	}
	return append([]int(nil), s...)
}
