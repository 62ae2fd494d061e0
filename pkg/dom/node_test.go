package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tags(nodes []Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.Tag()
	}
	return out
}

func children(f *fixture, n int) (*Element, []*Element) {
	p := f.doc.CreateElement("view")
	var cs []*Element
	for i := 0; i < n; i++ {
		c := f.doc.CreateElement("view")
		p.AppendChild(c)
		cs = append(cs, c)
	}
	f.drain()
	return p, cs
}

func lastCommand(f *fixture) Command {
	pending := f.s.Bridge().Pending()
	return pending[len(pending)-1]
}

func TestAppendChildReappendMovesToEnd(t *testing.T) {
	f := newFixture(t)
	p, cs := children(f, 3)
	a, b, c := cs[0], cs[1], cs[2]

	require.NoError(t, p.AppendChild(a))
	assert.Equal(t, []int{b.Tag(), c.Tag(), a.Tag()}, tags(p.ChildNodes()))
	assert.Equal(t, Node(p), a.ParentNode())

	cmd := lastCommand(f)
	assert.Equal(t, MethodUpdateChildren, cmd.Method)
	assert.Equal(t, []int{a.Tag(), b.Tag(), c.Tag()}, cmd.Old)
	assert.Equal(t, []int{b.Tag(), c.Tag(), a.Tag()}, cmd.New)

	d := DiffChildren(cmd.Old, cmd.New, MinimalMoves)
	assert.Equal(t, ChildrenDiff{MoveFrom: []int{0}, MoveTo: []int{2}}, d)

	f.drain()
	assert.Equal(t, []int{b.Tag(), c.Tag(), a.Tag()}, f.host.Children(p.Tag()))
}

func TestAppendChildReparents(t *testing.T) {
	f := newFixture(t)
	p1, cs := children(f, 2)
	p2 := f.doc.CreateElement("view")
	f.drain()

	require.NoError(t, p2.AppendChild(cs[0]))
	assert.Equal(t, []int{cs[1].Tag()}, tags(p1.ChildNodes()))
	assert.Equal(t, []int{cs[0].Tag()}, tags(p2.ChildNodes()))
	assert.Equal(t, Node(p2), cs[0].ParentNode())

	pending := f.s.Bridge().Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, p1.Tag(), pending[0].ID)
	assert.Equal(t, p2.Tag(), pending[1].ID)

	f.drain()
	assert.Equal(t, []int{cs[1].Tag()}, f.host.Children(p1.Tag()))
	assert.Equal(t, []int{cs[0].Tag()}, f.host.Children(p2.Tag()))
}

func TestInsertBefore(t *testing.T) {
	f := newFixture(t)
	p, cs := children(f, 2)
	a, b := cs[0], cs[1]
	x := f.doc.CreateElement("view")

	require.NoError(t, p.InsertBefore(x, b))
	assert.Equal(t, []int{a.Tag(), x.Tag(), b.Tag()}, tags(p.ChildNodes()))

	// Moving an existing child before another.
	require.NoError(t, p.InsertBefore(b, a))
	assert.Equal(t, []int{b.Tag(), a.Tag(), x.Tag()}, tags(p.ChildNodes()))

	// Inserting a node before itself changes nothing.
	n := f.s.Bridge().Len()
	require.NoError(t, p.InsertBefore(a, a))
	assert.Equal(t, n, f.s.Bridge().Len())

	f.drain()
	assert.Equal(t, []int{b.Tag(), a.Tag(), x.Tag()}, f.host.Children(p.Tag()))
}

// A nil reference node appends. Some adapters expect a prepend here; the
// append fallback is kept on purpose.
func TestInsertBeforeNilRefAppends(t *testing.T) {
	f := newFixture(t)
	p, cs := children(f, 2)
	x := f.doc.CreateElement("view")

	require.NoError(t, p.InsertBefore(x, nil))
	assert.Equal(t, []int{cs[0].Tag(), cs[1].Tag(), x.Tag()}, tags(p.ChildNodes()))
}

func TestInsertBeforeUnknownRef(t *testing.T) {
	f := newFixture(t)
	p, _ := children(f, 1)
	stranger := f.doc.CreateElement("view")

	err := p.InsertBefore(f.doc.CreateElement("view"), stranger)
	assert.ErrorIs(t, err, ErrNotChild)
}

func TestReplaceChild(t *testing.T) {
	f := newFixture(t)
	p, cs := children(f, 3)
	x := f.doc.CreateElement("view")

	require.NoError(t, p.ReplaceChild(x, cs[1]))
	assert.Equal(t, []int{cs[0].Tag(), x.Tag(), cs[2].Tag()}, tags(p.ChildNodes()))
	assert.Nil(t, cs[1].ParentNode())

	// Replacing with a sibling moves the sibling.
	require.NoError(t, p.ReplaceChild(cs[2], cs[0]))
	assert.Equal(t, []int{cs[2].Tag(), x.Tag()}, tags(p.ChildNodes()))

	assert.ErrorIs(t, p.ReplaceChild(x, cs[1]), ErrNotChild)
	assert.ErrorIs(t, p.ReplaceChild(x, nil), ErrNilNode)

	f.drain()
	assert.Equal(t, []int{cs[2].Tag(), x.Tag()}, f.host.Children(p.Tag()))
}

func TestRemoveChild(t *testing.T) {
	f := newFixture(t)
	p, cs := children(f, 2)

	require.NoError(t, p.RemoveChild(cs[0]))
	assert.Equal(t, []int{cs[1].Tag()}, tags(p.ChildNodes()))
	assert.Nil(t, cs[0].ParentNode())

	n := f.s.Bridge().Len()
	require.NoError(t, p.RemoveChild(cs[0]), "removing a non-child is a no-op")
	assert.Equal(t, n, f.s.Bridge().Len())
	assert.ErrorIs(t, p.RemoveChild(nil), ErrNilNode)

	f.drain()
	assert.Equal(t, []int{cs[1].Tag()}, f.host.Children(p.Tag()))
}

func TestHierarchyErrors(t *testing.T) {
	f := newFixture(t)
	p, cs := children(f, 1)

	assert.ErrorIs(t, p.AppendChild(p), ErrHierarchy)
	assert.ErrorIs(t, cs[0].AppendChild(p), ErrHierarchy)
	assert.ErrorIs(t, p.AppendChild(nil), ErrNilNode)
	assert.ErrorIs(t, p.AppendChild(f.doc), ErrHierarchy)

	txt := f.doc.CreateTextNode("x")
	assert.ErrorIs(t, txt.AppendChild(f.doc.CreateElement("view")), ErrHierarchy)
}

func TestTreeAccessors(t *testing.T) {
	f := newFixture(t)
	p, cs := children(f, 3)

	assert.True(t, p.HasChildNodes())
	assert.Equal(t, cs[0].Tag(), p.FirstChild().Tag())
	assert.Equal(t, cs[2].Tag(), p.LastChild().Tag())
	assert.Equal(t, ElementNode, p.NodeType())
	assert.Equal(t, DocumentNode, f.doc.NodeType())
	assert.Same(t, f.doc, p.OwnerDocument())

	empty := f.doc.CreateElement("view")
	assert.False(t, empty.HasChildNodes())
	assert.Nil(t, empty.FirstChild())
	assert.Nil(t, empty.LastChild())
	assert.Nil(t, empty.ParentNode())

	empty.SetRef("native-handle")
	assert.Equal(t, "native-handle", empty.Ref())
}

func TestDocumentFragment(t *testing.T) {
	f := newFixture(t)
	p, cs := children(f, 1)
	frag := f.doc.CreateDocumentFragment()
	x, y := f.doc.CreateElement("view"), f.doc.CreateElement("view")
	require.NoError(t, frag.AppendChild(x))
	require.NoError(t, frag.AppendChild(y))

	require.NoError(t, p.InsertBefore(frag, cs[0]))
	assert.Equal(t, []int{x.Tag(), y.Tag(), cs[0].Tag()}, tags(p.ChildNodes()))
	assert.False(t, frag.HasChildNodes())
	assert.Equal(t, Node(p), x.ParentNode())

	f.drain()
	assert.Equal(t, []int{x.Tag(), y.Tag(), cs[0].Tag()}, f.host.Children(p.Tag()))
	_, ok := f.host.View(frag.Tag())
	assert.False(t, ok, "fragments have no host view")
}

func TestTextContent(t *testing.T) {
	f := newFixture(t)
	el := f.doc.CreateElement("text")
	require.NoError(t, el.SetTextContent("hello"))
	assert.Equal(t, "hello", el.TextContent())
	require.Len(t, el.ChildNodes(), 1)
	first := el.FirstChild().(*Text)

	require.NoError(t, el.SetTextContent("again"))
	assert.Same(t, first, el.FirstChild(), "single text child is reused")
	assert.Equal(t, "again", first.Data())

	require.NoError(t, el.AppendChild(f.doc.CreateTextNode(" world")))
	assert.Equal(t, "again world", el.TextContent())

	require.NoError(t, el.SetTextContent(""))
	assert.False(t, el.HasChildNodes())

	assert.ErrorIs(t, f.doc.SetTextContent("x"), ErrNotSupported)
	assert.ErrorIs(t, f.doc.CreateDocumentFragment().SetTextContent("x"), ErrNotSupported)

	f.drain()
	assert.Empty(t, f.host.Children(el.Tag()))
}

func TestAttributes(t *testing.T) {
	f := newFixture(t)
	el := f.doc.CreateElement("view")
	require.NoError(t, f.doc.AppendChild(el))

	el.SetAttribute("id", "x")
	assert.Equal(t, "x", el.GetAttribute("id"))
	assert.Equal(t, "x", el.ID())
	assert.True(t, el.HasAttribute("id"))
	assert.Same(t, el, f.doc.GetElementByID("x"))
	assert.Nil(t, f.doc.GetElementByID("y"))

	el.RemoveAttribute("id")
	assert.Nil(t, el.GetAttribute("id"))
	assert.False(t, el.HasAttribute("id"))
	assert.Nil(t, f.doc.GetElementByID("x"))
}

func TestGetElementByIDDepthFirst(t *testing.T) {
	f := newFixture(t)
	root := f.doc.CreateElement("view")
	inner := f.doc.CreateElement("view")
	deep := f.doc.CreateElement("view")
	sibling := f.doc.CreateElement("view")
	root.AppendChild(inner)
	inner.AppendChild(deep)
	root.AppendChild(sibling)
	deep.SetID("target")
	sibling.SetID("target")

	assert.Same(t, deep, root.GetElementByID("target"))
	root.SetID("target")
	assert.Same(t, root, root.GetElementByID("target"))
}

func TestSVGElement(t *testing.T) {
	f := newFixture(t)
	svg := f.doc.CreateElementNS(SVGNamespace, "svg")
	g := f.doc.CreateElementNS(SVGNamespace, "g")
	path := f.doc.CreateElementNS(SVGNamespace, "path")
	svg.AppendChild(g)
	g.AppendChild(path)

	assert.True(t, path.IsSVG())
	assert.Same(t, svg, path.OwnerSVGElement())
	assert.Nil(t, svg.OwnerSVGElement())
	assert.Nil(t, f.doc.CreateElement("view").OwnerSVGElement())
	assert.Nil(t, svg.QuerySelector("g"))
}
