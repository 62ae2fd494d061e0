package hostdom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/hostdom/pkg/dom"
	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/protocol"
)

func startRuntime(t *testing.T, h host.Host, opts ...Option) *Runtime {
	t.Helper()
	rt := New(h, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go rt.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-rt.Done()
	})
	return rt
}

func TestRuntime_MountDrainsToHost(t *testing.T) {
	mem := host.NewMemoryHost()
	rt := startRuntime(t, mem)

	doc, err := rt.Mount(context.Background(), 1, func(doc *dom.Document) error {
		view := doc.CreateElement("view")
		if err := view.AppendChild(doc.CreateTextNode("hello")); err != nil {
			return err
		}
		return doc.AppendChild(view)
	})
	require.NoError(t, err)
	require.NotNil(t, doc)

	want := "root#1\n  RCTView#3\n    RCTRawText#4 \"hello\"\n"
	require.Eventually(t, func() bool { return mem.Dump(1) == want }, time.Second, 5*time.Millisecond)
}

func TestRuntime_MountReturnsAppError(t *testing.T) {
	rt := startRuntime(t, host.NewMemoryHost())
	boom := errors.New("boom")
	_, err := rt.Mount(context.Background(), 1, func(*dom.Document) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRuntime_EventsReachListeners(t *testing.T) {
	mem := host.NewMemoryHost()
	rt := startRuntime(t, mem)
	clicks := make(chan string, 4)

	var target int
	_, err := rt.Mount(context.Background(), 1, func(doc *dom.Document) error {
		button := doc.CreateElement("view")
		button.AddEventListener(dom.EventClick, dom.ListenerFunc(func(e *dom.Event) {
			clicks <- e.Type
		}))
		target = button.Tag()
		return doc.AppendChild(button)
	})
	require.NoError(t, err)

	rt.ReceiveTouches(dom.TopTouchEnd, []map[string]any{{"target": target}}, []int{0})
	select {
	case typ := <-clicks:
		assert.Equal(t, dom.EventClick, typ)
	case <-time.After(time.Second):
		t.Fatal("click listener was not called")
	}

	rt.HandleHostEvent(&protocol.HostEvent{
		Kind:    protocol.EventTouches,
		Type:    dom.TopTouchEnd,
		Touches: []map[string]any{{"target": target}},
		Changed: []int{0},
	})
	select {
	case <-clicks:
	case <-time.After(time.Second):
		t.Fatal("wire event was not routed")
	}
}

func TestRuntime_DoAndClose(t *testing.T) {
	mem := host.NewMemoryHost()
	rt := startRuntime(t, mem)

	_, err := rt.Mount(context.Background(), 1, nil)
	require.NoError(t, err)

	var count int
	require.NoError(t, rt.Do(context.Background(), func(s *dom.Session) error {
		s.Document().CreateElement("view")
		count = s.Registry().Count()
		return nil
	}))
	assert.Equal(t, 2, count, "document and view")

	require.NoError(t, rt.Close(context.Background()))
	require.NoError(t, rt.Do(context.Background(), func(s *dom.Session) error {
		count = s.Registry().Count()
		return nil
	}))
	assert.Equal(t, 0, count)
}

func TestRuntime_DoAfterStop(t *testing.T) {
	rt := New(host.NewMemoryHost())
	ctx, cancel := context.WithCancel(context.Background())
	go rt.Run(ctx)
	cancel()
	<-rt.Done()

	err := rt.Do(context.Background(), func(*dom.Session) error { return nil })
	assert.Error(t, err)
}
