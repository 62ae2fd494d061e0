package dom

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/loop"
)

const testRoot = 1

type fixture struct {
	s    *Session
	host *host.MemoryHost
	m    *loop.Manual
	doc  *Document
	errs []error
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{host: host.NewMemoryHost(), m: loop.NewManual()}
	opts = append([]Option{WithErrorHandler(func(err error) { f.errs = append(f.errs, err) })}, opts...)
	f.s = NewSession(f.host, f.m, opts...)
	f.doc = f.s.CreateDocument(testRoot)
	return f
}

// drain runs the scheduler until idle.
func (f *fixture) drain() int {
	return f.m.RunUntilIdle(0)
}

func (f *fixture) pending() []string {
	var out []string
	for _, c := range f.s.Bridge().Pending() {
		out = append(out, c.String())
	}
	return out
}

type recordingObserver struct {
	enqueued []Method
	executed []Method
	failed   []Method
	routed   []string
}

func (o *recordingObserver) CommandEnqueued(m Method, _ int) { o.enqueued = append(o.enqueued, m) }

func (o *recordingObserver) CommandExecuted(m Method, _ time.Duration, err error) {
	o.executed = append(o.executed, m)
	if err != nil {
		o.failed = append(o.failed, m)
	}
}

func (o *recordingObserver) EventRouted(typ string, delivered bool) {
	o.routed = append(o.routed, fmt.Sprintf("%s:%v", typ, delivered))
}

func TestCreateDocumentSchedulesDrain(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, 2, f.doc.Tag(), "root tag 1 is skipped")
	assert.Equal(t, []string{"create(2, #document)"}, f.pending())
	assert.True(t, f.s.Bridge().Draining())
	assert.Equal(t, 1, f.m.Len())

	assert.Equal(t, 1, f.drain())
	assert.False(t, f.s.Bridge().Draining())
	assert.Empty(t, f.host.Calls(), "documents have no host view")
}

func TestScenarioQueueOrder(t *testing.T) {
	f := newFixture(t)
	f.drain()

	el := f.doc.CreateElement("View")
	txt := f.doc.CreateTextNode("hi")
	require.NoError(t, el.AppendChild(txt))
	require.NoError(t, f.doc.AppendChild(el))

	assert.Equal(t, []string{
		"create(3, View)",
		"create(4, #text)",
		"setProp(4, text, hi)",
		"updateChildren(3, [], [4])",
		"updateChildren(2, [], [3])",
	}, f.pending())

	assert.Equal(t, 5, f.drain())
	assert.Equal(t, []int{3}, f.host.Children(testRoot))
	assert.Equal(t, []int{4}, f.host.Children(3))

	v, ok := f.host.View(4)
	require.True(t, ok)
	assert.Equal(t, host.RawText, v.Type)
	assert.Equal(t, "hi", v.Props["text"])

	v, ok = f.host.View(3)
	require.True(t, ok)
	assert.Equal(t, host.View, v.Type)
}

func TestDrainOneCommandPerTick(t *testing.T) {
	f := newFixture(t)
	f.drain()

	f.doc.CreateElement("view")
	f.doc.CreateElement("view")
	require.Equal(t, 2, f.s.Bridge().Len())
	require.Equal(t, 1, f.m.Len())

	require.True(t, f.m.Step())
	assert.Len(t, f.host.Calls(), 1)
	assert.Equal(t, 1, f.s.Bridge().Len())

	require.True(t, f.m.Step())
	assert.Len(t, f.host.Calls(), 2)
	assert.False(t, f.s.Bridge().Draining())
	assert.False(t, f.m.Step())
}

func TestNoDrainWithoutRoot(t *testing.T) {
	m := loop.NewManual()
	h := host.NewMemoryHost()
	s := NewSession(h, m)
	s.Bridge().Enqueue(Command{Method: MethodCreate, ID: 5, Name: "view"})
	assert.Equal(t, 0, m.Len())
	assert.False(t, s.Bridge().Draining())

	s.CreateDocument(testRoot)
	assert.Equal(t, []Command{{Method: MethodCreate, ID: 2, Name: TagDocument}}, s.Bridge().Pending(),
		"commands queued before the root are run when the document is created")
	assert.Equal(t, 1, m.Len())
	assert.Empty(t, h.Calls(), "tag 5 has no binding")
}

func TestCreateDocumentClearsPreviousRoot(t *testing.T) {
	f := newFixture(t)
	f.doc.AppendChild(f.doc.CreateElement("view"))
	f.doc.AppendChild(f.doc.CreateElement("view"))
	f.drain()
	require.Len(t, f.host.Children(testRoot), 2)

	f.doc.CreateElement("view")

	doc2 := f.s.CreateDocument(testRoot)
	assert.NotSame(t, f.doc, doc2)
	assert.Equal(t, []string{"clear(2)"}, f.pending())

	f.host.ResetCalls()
	f.drain()
	assert.Empty(t, f.host.Children(testRoot))

	calls := f.host.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []int{0, 1}, calls[0].RemoveAt)
	assert.Equal(t, 1, f.s.Registry().Count())
}

func TestNodesOfReplacedDocumentAreInert(t *testing.T) {
	f := newFixture(t)
	old := f.doc.CreateElement("view")
	require.NoError(t, f.doc.AppendChild(old))
	f.drain()

	doc2 := f.s.CreateDocument(testRoot)
	fresh := doc2.CreateElement("view")
	require.NoError(t, doc2.AppendChild(fresh))
	f.drain()
	require.Equal(t, old.Tag(), fresh.Tag(), "tags are reissued after a reset")
	assert.True(t, old.Binding().Stale())
	assert.False(t, fresh.Binding().Stale())

	old.SetAttribute("testID", "stale")
	require.NoError(t, old.AppendChild(f.doc.CreateElement("view")))
	assert.Empty(t, f.pending())
	assert.ErrorIs(t, fresh.AppendChild(old), ErrForeignSession)
	assert.Equal(t, 2, f.s.Registry().Count(), "nodes of the old document are not registered")

	v, ok := f.host.View(fresh.Tag())
	require.True(t, ok)
	assert.NotContains(t, v.Props, "testID")
	assert.Empty(t, f.host.Children(fresh.Tag()))
}

func TestDisposeMakesNodesInert(t *testing.T) {
	f := newFixture(t)
	el := f.doc.CreateElement("view")
	f.s.Dispose()

	assert.True(t, el.Binding().Stale())
	el.SetAttribute("testID", "late")
	assert.Zero(t, f.s.Bridge().Len())
}

func TestCreateDocumentWithoutPreviousBindingsDoesNotClear(t *testing.T) {
	m := loop.NewManual()
	s := NewSession(host.NewMemoryHost(), m)
	s.CreateDocument(testRoot)
	for _, c := range s.Bridge().Pending() {
		assert.NotEqual(t, MethodClear, c.Method)
	}
}

func TestHostErrorsAreSwallowed(t *testing.T) {
	obs := &recordingObserver{}
	f := newFixture(t, WithObserver(obs))
	f.host.FailOn = func(c host.Call) error {
		if c.Op == host.OpCreateView {
			return fmt.Errorf("host down")
		}
		return nil
	}

	el := f.doc.CreateElement("view")
	el.SetAttribute("testID", "x")
	f.drain()

	// The update fails too: the host never created the view.
	assert.Equal(t, []Method{MethodCreate, MethodSetProp}, obs.failed)
	assert.Contains(t, obs.executed, MethodSetProp)
	assert.Empty(t, f.errs)
}

func TestHostPanicDoesNotStallQueue(t *testing.T) {
	obs := &recordingObserver{}
	f := newFixture(t, WithObserver(obs))
	panicked := false
	f.host.FailOn = func(c host.Call) error {
		if c.Op == host.OpCreateView && !panicked {
			panicked = true
			panic("host exploded")
		}
		return nil
	}

	first := f.doc.CreateElement("view")
	require.NoError(t, f.doc.AppendChild(first))
	f.drain()
	require.True(t, panicked)

	second := f.doc.CreateElement("text")
	require.NoError(t, f.doc.AppendChild(second))
	assert.Positive(t, f.drain())

	assert.Zero(t, f.s.Bridge().Len())
	assert.False(t, f.s.Bridge().Draining())
	_, ok := f.host.View(second.Tag())
	assert.True(t, ok, "commands after the panic reach the host")
	assert.Contains(t, obs.failed, MethodCreate)

	var cp *CommandPanic
	require.Len(t, f.errs, 1)
	require.ErrorAs(t, f.errs[0], &cp)
	assert.Equal(t, MethodCreate, cp.Method)
	assert.Equal(t, first.Tag(), cp.ID)
}

func TestRegisterHostElement(t *testing.T) {
	f := newFixture(t)
	f.s.RegisterHostElement("MapView", "AIRMap", HostElementOptions{NativeHost: true})
	f.s.RegisterHostElement("card", host.View, HostElementOptions{})

	f.doc.CreateElement("MapView")
	f.doc.CreateElement("card")
	f.doc.CreateElement("unknown-thing")
	f.drain()

	var types []string
	for _, c := range f.host.Calls() {
		if c.Op == host.OpCreateView {
			types = append(types, c.Type)
		}
	}
	assert.Equal(t, []string{"MapView", host.View}, types)
}

func TestDispose(t *testing.T) {
	f := newFixture(t)
	f.doc.CreateElement("view")
	f.s.Dispose()

	assert.Nil(t, f.s.Document())
	assert.Equal(t, 0, f.s.Registry().Count())
	assert.Equal(t, 0, f.s.Bridge().Len())
}

func TestIndependentSessions(t *testing.T) {
	a := newFixture(t)
	b := newFixture(t)

	elA := a.doc.CreateElement("view")
	elB := b.doc.CreateElement("view")
	assert.Equal(t, elA.Tag(), elB.Tag())

	err := a.doc.AppendChild(elB)
	assert.ErrorIs(t, err, ErrForeignSession)
}
