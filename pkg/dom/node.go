package dom

import (
	"fmt"
	"slices"
	"strings"
)

// NodeType is the DOM node type constant.
type NodeType int

const (
	ElementNode          NodeType = 1
	TextNode             NodeType = 3
	DocumentNode         NodeType = 9
	DocumentFragmentNode NodeType = 11
)

// Node is implemented by *Element, *Text, *Document and *DocumentFragment.
type Node interface {
	// Tag returns the host tag allocated to the node.
	Tag() int
	LocalName() string
	NodeType() NodeType
	Binding() *Binding
	OwnerDocument() *Document

	ParentNode() Node
	ChildNodes() []Node
	FirstChild() Node
	LastChild() Node
	HasChildNodes() bool

	AppendChild(child Node) error
	InsertBefore(child, ref Node) error
	ReplaceChild(newChild, oldChild Node) error
	RemoveChild(child Node) error

	TextContent() string
	SetTextContent(text string) error

	AddEventListener(typ string, l EventListener, opts ...ListenerOption) ListenerID
	RemoveEventListener(typ string, id ListenerID) bool
	DispatchEvent(e *Event) bool

	// Ref and SetRef hold an opaque handle owned by the rendering adapter.
	Ref() any
	SetRef(v any)

	base() *node
}

// node is the state shared by every node kind.
type node struct {
	self      Node
	session   *Session
	owner     *Document
	binding   *Binding
	localName string
	nodeType  NodeType
	parent    *node
	children  []*node
	listeners listenerTable
	ref       any
}

func (n *node) init(self Node, s *Session, owner *Document, localName string, t NodeType) {
	n.self = self
	n.session = s
	n.owner = owner
	n.localName = localName
	n.nodeType = t
	n.binding = newBinding(s, n)
	n.binding.Create()
}

func (n *node) base() *node { return n }
func (n *node) Tag() int { return n.binding.id }
func (n *node) LocalName() string { return n.localName }
func (n *node) NodeType() NodeType { return n.nodeType }
func (n *node) Binding() *Binding { return n.binding }
func (n *node) OwnerDocument() *Document { return n.owner }
func (n *node) Ref() any { return n.ref }
func (n *node) SetRef(v any) { n.ref = v }

func (n *node) String() string {
	return fmt.Sprintf("%s#%d", n.localName, n.binding.id)
}

// ParentNode returns the parent, or nil for a detached node.
func (n *node) ParentNode() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.self
}

// ChildNodes returns a copy of the child list.
func (n *node) ChildNodes() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c.self
	}
	return out
}

func (n *node) FirstChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0].self
}

func (n *node) LastChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1].self
}

func (n *node) HasChildNodes() bool {
	return len(n.children) > 0
}

// childTags snapshots the child list as tags.
func (n *node) childTags() []int {
	tags := make([]int, len(n.children))
	for i, c := range n.children {
		tags[i] = c.binding.id
	}
	return tags
}

// indexOf finds a child by tag.
func (n *node) indexOf(c *node) int {
	id := c.binding.id
	return slices.IndexFunc(n.children, func(x *node) bool { return x.binding.id == id })
}

func (n *node) notify(old []int) {
	n.binding.UpdateChildren(old, n.childTags())
}

// adopt validates child for insertion under n.
func (n *node) adopt(child Node) (*node, error) {
	if child == nil {
		return nil, ErrNilNode
	}
	c := child.base()
	if c.session != n.session {
		return nil, errorf(ErrForeignSession, "%s into %s", c, n)
	}
	if c.binding.gen != n.binding.gen {
		return nil, errorf(ErrForeignSession, "%s and %s belong to different documents", c, n)
	}
	if c.nodeType == DocumentNode {
		return nil, errorf(ErrHierarchy, "a document cannot be a child")
	}
	for p := n; p != nil; p = p.parent {
		if p.binding.id == c.binding.id {
			return nil, errorf(ErrHierarchy, "%s is %s or one of its ancestors", c, n)
		}
	}
	return c, nil
}

// detach removes c from a parent other than n, notifying that parent.
// A child of n is spliced out without notification.
func (n *node) detach(c *node) {
	switch {
	case c.parent == nil:
	case c.parent == n:
		if i := n.indexOf(c); i >= 0 {
			n.children = slices.Delete(n.children, i, i+1)
		}
		c.parent = nil
	default:
		c.parent.removeChild(c)
	}
}

// AppendChild inserts child at the end. A child already under n is moved
// to the end. Appending a fragment moves the fragment's children.
func (n *node) AppendChild(child Node) error {
	c, err := n.adopt(child)
	if err != nil {
		return err
	}
	if c.nodeType == DocumentFragmentNode {
		n.insertFragment(c, nil)
		return nil
	}

	old := n.childTags()
	n.detach(c)
	n.children = append(n.children, c)
	c.parent = n
	n.notify(old)
	return nil
}

// InsertBefore inserts child immediately before ref. A nil ref appends.
func (n *node) InsertBefore(child, ref Node) error {
	if ref == nil {
		return n.AppendChild(child)
	}
	c, err := n.adopt(child)
	if err != nil {
		return err
	}
	r := ref.base()
	if n.indexOf(r) < 0 || r.parent != n {
		return errorf(ErrNotChild, "%s is not a child of %s", r, n)
	}
	if c.nodeType == DocumentFragmentNode {
		n.insertFragment(c, r)
		return nil
	}
	if c.binding.id == r.binding.id {
		return nil
	}

	old := n.childTags()
	n.detach(c)
	i := n.indexOf(r)
	n.children = slices.Insert(n.children, i, c)
	c.parent = n
	n.notify(old)
	return nil
}

// insertFragment moves the children of frag before ref (nil appends).
func (n *node) insertFragment(frag, ref *node) {
	moved := frag.children
	if len(moved) == 0 {
		return
	}
	fragOld := frag.childTags()
	frag.children = nil
	frag.notify(fragOld)

	old := n.childTags()
	for _, c := range moved {
		c.parent = nil
		n.detach(c)
	}
	i := len(n.children)
	if ref != nil {
		i = n.indexOf(ref)
	}
	n.children = slices.Insert(n.children, i, moved...)
	for _, c := range moved {
		c.parent = n
	}
	n.notify(old)
}

// ReplaceChild puts newChild at oldChild's index and detaches oldChild.
func (n *node) ReplaceChild(newChild, oldChild Node) error {
	if oldChild == nil {
		return ErrNilNode
	}
	o := oldChild.base()
	if n.indexOf(o) < 0 || o.parent != n {
		return errorf(ErrNotChild, "%s is not a child of %s", o, n)
	}
	c, err := n.adopt(newChild)
	if err != nil {
		return err
	}
	if c.binding.id == o.binding.id {
		return nil
	}
	if c.nodeType == DocumentFragmentNode {
		n.insertFragment(c, o)
		n.removeChild(o)
		return nil
	}

	if c.parent != nil && c.parent != n {
		c.parent.removeChild(c)
	}
	old := n.childTags()
	if i := n.indexOf(c); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	n.children[n.indexOf(o)] = c
	o.parent = nil
	c.parent = n
	n.notify(old)
	return nil
}

// RemoveChild detaches child. Removing a node that is not a child is a
// no-op.
func (n *node) RemoveChild(child Node) error {
	if child == nil {
		return ErrNilNode
	}
	n.removeChild(child.base())
	return nil
}

func (n *node) removeChild(c *node) {
	i := n.indexOf(c)
	if i < 0 {
		return
	}
	old := n.childTags()
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	n.notify(old)
}

// TextContent returns the concatenated data of all descendant text nodes.
func (n *node) TextContent() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *node) collectText(b *strings.Builder) {
	for _, c := range n.children {
		if t, ok := c.self.(*Text); ok {
			b.WriteString(t.data)
			continue
		}
		c.collectText(b)
	}
}

// SetTextContent replaces the children with a single text node. When the
// only child already is a text node its data is updated in place.
func (n *node) SetTextContent(text string) error {
	if len(n.children) == 1 {
		if t, ok := n.children[0].self.(*Text); ok {
			t.SetData(text)
			return nil
		}
	}

	old := n.childTags()
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	if text != "" {
		t := n.owner.CreateTextNode(text)
		n.children = append(n.children, &t.node)
		t.parent = n
	}
	n.notify(old)
	return nil
}
