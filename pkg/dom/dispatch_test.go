package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds A > B > C and returns them.
func chain(t *testing.T, f *fixture) (a, b, c *Element) {
	t.Helper()
	a, b, c = f.doc.CreateElement("view"), f.doc.CreateElement("view"), f.doc.CreateElement("view")
	require.NoError(t, a.AppendChild(b))
	require.NoError(t, b.AppendChild(c))
	return a, b, c
}

func record(log *[]string, name string) ListenerFunc {
	return func(*Event) { *log = append(*log, name) }
}

func TestDispatchOrder(t *testing.T) {
	f := newFixture(t)
	a, b, c := chain(t, f)

	var log []string
	for _, n := range []struct {
		el   *Element
		name string
	}{{a, "A"}, {b, "B"}, {c, "C"}} {
		n.el.AddEventListener("ping", record(&log, n.name+"-capture"), WithCapture())
		n.el.AddEventListener("ping", record(&log, n.name+"-bubble"))
	}

	ok := c.DispatchEvent(NewEvent("ping", EventInit{Bubbles: true}))
	assert.True(t, ok)
	assert.Equal(t, []string{
		"A-capture", "B-capture",
		"C-capture", "C-bubble",
		"B-bubble", "A-bubble",
	}, log)
}

func TestDispatchPhasesAndTargets(t *testing.T) {
	f := newFixture(t)
	a, _, c := chain(t, f)

	var phases []EventPhase
	var current []Node
	l := ListenerFunc(func(e *Event) {
		phases = append(phases, e.EventPhase)
		current = append(current, e.CurrentTarget)
		assert.Equal(t, Node(c), e.Target)
	})
	a.AddEventListener("x", l, WithCapture())
	c.AddEventListener("x", l)
	a.AddEventListener("x", l)

	e := NewEvent("x", EventInit{})
	c.DispatchEvent(e)

	assert.Equal(t, []EventPhase{PhaseCapturing, PhaseAtTarget, PhaseBubbling}, phases)
	assert.Equal(t, []Node{a, c, a}, current)
	assert.Equal(t, PhaseNone, e.EventPhase)
	assert.False(t, e.IsTrusted())
}

func TestStopPropagationDuringCapture(t *testing.T) {
	f := newFixture(t)
	a, b, c := chain(t, f)

	var log []string
	a.AddEventListener("x", record(&log, "A-capture"), WithCapture())
	b.AddEventListener("x", ListenerFunc(func(e *Event) {
		log = append(log, "B-capture")
		e.StopPropagation()
	}), WithCapture())
	c.AddEventListener("x", record(&log, "C-target"))
	b.AddEventListener("x", record(&log, "B-bubble"))
	a.AddEventListener("x", record(&log, "A-bubble"))

	c.DispatchEvent(NewEvent("x", EventInit{Bubbles: true}))
	assert.Equal(t, []string{"A-capture", "B-capture", "C-target"}, log)
}

func TestStopImmediatePropagation(t *testing.T) {
	f := newFixture(t)
	a, _, c := chain(t, f)

	var log []string
	c.AddEventListener("x", ListenerFunc(func(e *Event) {
		log = append(log, "first")
		e.StopImmediatePropagation()
	}))
	c.AddEventListener("x", record(&log, "second"))
	a.AddEventListener("x", record(&log, "A-bubble"))

	e := NewEvent("x", EventInit{Bubbles: true})
	c.DispatchEvent(e)
	assert.Equal(t, []string{"first", "A-bubble"}, log, "only the rest of the current node is skipped")
	assert.False(t, e.CancelBubble())
}

func TestStopImmediatePropagationDuringCapture(t *testing.T) {
	f := newFixture(t)
	a, b, c := chain(t, f)

	var log []string
	a.AddEventListener("x", ListenerFunc(func(e *Event) {
		log = append(log, "A-capture-1")
		e.StopImmediatePropagation()
	}), WithCapture())
	a.AddEventListener("x", record(&log, "A-capture-2"), WithCapture())
	b.AddEventListener("x", record(&log, "B-capture"), WithCapture())
	c.AddEventListener("x", record(&log, "C-target"))

	c.DispatchEvent(NewEvent("x", EventInit{Bubbles: true}))
	assert.Equal(t, []string{"A-capture-1", "B-capture", "C-target"}, log)
}

func TestStopPropagationAfterStopImmediate(t *testing.T) {
	f := newFixture(t)
	a, b, c := chain(t, f)

	var log []string
	b.AddEventListener("x", ListenerFunc(func(e *Event) {
		log = append(log, "B-bubble-1")
		e.StopImmediatePropagation()
		e.StopPropagation()
	}))
	b.AddEventListener("x", record(&log, "B-bubble-2"))
	a.AddEventListener("x", record(&log, "A-bubble"))

	c.DispatchEvent(NewEvent("x", EventInit{Bubbles: true}))
	assert.Equal(t, []string{"B-bubble-1"}, log)
}

func TestPreventDefault(t *testing.T) {
	f := newFixture(t)
	_, b, c := chain(t, f)

	b.AddEventListener("x", GuardFunc(func(*Event) bool { return false }))
	assert.False(t, c.DispatchEvent(NewEvent("x", EventInit{})), "returning false prevents the default")

	c.AddEventListener("y", ListenerFunc(func(e *Event) { e.PreventDefault() }))
	e := NewEvent("y", EventInit{})
	assert.False(t, c.DispatchEvent(e))
	assert.True(t, e.DefaultPrevented)
	assert.False(t, e.ReturnValue())
}

func TestPassiveListenerCannotPreventDefault(t *testing.T) {
	f := newFixture(t)
	el := f.doc.CreateElement("view")

	el.AddEventListener("x", ListenerFunc(func(e *Event) { e.PreventDefault() }), WithPassive())
	el.AddEventListener("x", GuardFunc(func(*Event) bool { return false }), WithPassive())
	assert.True(t, el.DispatchEvent(NewEvent("x", EventInit{})))
}

func TestOnceListener(t *testing.T) {
	f := newFixture(t)
	el := f.doc.CreateElement("view")

	calls := 0
	el.AddEventListener("x", ListenerFunc(func(*Event) { calls++ }), WithOnce())
	el.DispatchEvent(NewEvent("x", EventInit{}))
	el.DispatchEvent(NewEvent("x", EventInit{}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, el.listeners.count("x"))
}

func TestRemoveEventListener(t *testing.T) {
	f := newFixture(t)
	el := f.doc.CreateElement("view")

	var log []string
	var second ListenerID
	el.AddEventListener("x", ListenerFunc(func(*Event) {
		log = append(log, "first")
		el.RemoveEventListener("x", second)
	}))
	second = el.AddEventListener("x", record(&log, "second"))

	el.DispatchEvent(NewEvent("x", EventInit{}))
	assert.Equal(t, []string{"first"}, log, "a listener removed mid-dispatch does not run")
	assert.False(t, el.RemoveEventListener("x", second))
	assert.Equal(t, ListenerID(0), el.AddEventListener("x", nil))
}

func TestListenerPanicIsReportedNextTick(t *testing.T) {
	f := newFixture(t)
	f.drain()
	el := f.doc.CreateElement("view")
	f.drain()

	var ran bool
	el.AddEventListener("x", ListenerFunc(func(*Event) { panic("kaboom") }))
	el.AddEventListener("x", ListenerFunc(func(*Event) { ran = true }))

	assert.True(t, el.DispatchEvent(NewEvent("x", EventInit{})))
	assert.True(t, ran, "later listeners still run")
	assert.Empty(t, f.errs, "report is deferred")

	f.drain()
	require.Len(t, f.errs, 1)
	var p *ListenerPanic
	require.ErrorAs(t, f.errs[0], &p)
	assert.Equal(t, "kaboom", p.Value)
	assert.Equal(t, el.Tag(), p.Node)
	assert.NotEmpty(t, p.Stack)
}

func TestBubbleFollowsLiveParentChain(t *testing.T) {
	f := newFixture(t)
	a, b, c := chain(t, f)

	var log []string
	b.AddEventListener("x", record(&log, "B-capture"), WithCapture())
	c.AddEventListener("x", ListenerFunc(func(*Event) {
		log = append(log, "C-target")
		require.NoError(t, a.AppendChild(c))
	}))
	b.AddEventListener("x", record(&log, "B-bubble"))
	a.AddEventListener("x", record(&log, "A-bubble"))

	c.DispatchEvent(NewEvent("x", EventInit{}))
	assert.Equal(t, []string{"B-capture", "C-target", "A-bubble"}, log)
}
