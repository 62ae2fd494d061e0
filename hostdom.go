// Package hostdom runs a browser-style document against a native view host.
//
// A Runtime owns one event loop and one dom.Session. All document access
// happens on the loop goroutine; Mount and Do hand work to it and wait, and
// host events delivered from other goroutines are queued onto it.
//
//	h := host.NewMemoryHost()
//	rt := hostdom.New(h)
//	go rt.Run(ctx)
//
//	_, err := rt.Mount(ctx, 1, func(doc *dom.Document) error {
//	    view := doc.CreateElement("view")
//	    view.AppendChild(doc.CreateTextNode("hello"))
//	    return doc.AppendChild(view)
//	})
package hostdom

import (
	"context"
	"log/slog"

	"github.com/vango-dev/hostdom/pkg/dom"
	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/loop"
	"github.com/vango-dev/hostdom/pkg/protocol"
)

// App builds the initial document.
type App func(doc *dom.Document) error

// Runtime couples a session with the loop that drives it.
type Runtime struct {
	loop    *loop.Loop
	session *dom.Session
	logger  *slog.Logger
}

type options struct {
	logger  *slog.Logger
	session []dom.Option
}

// Option configures a Runtime.
type Option func(*options)

// WithLogger sets the logger for the runtime, its loop and its session.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSessionOptions passes options through to dom.NewSession.
func WithSessionOptions(opts ...dom.Option) Option {
	return func(o *options) { o.session = append(o.session, opts...) }
}

// New creates a runtime sending host calls to h. Nothing runs until Run.
func New(h host.Host, opts ...Option) *Runtime {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	lp := loop.New(loop.WithLogger(o.logger.With("component", "loop")))
	sessionOpts := append([]dom.Option{dom.WithLogger(o.logger.With("component", "dom"))}, o.session...)
	return &Runtime{
		loop:    lp,
		session: dom.NewSession(h, lp, sessionOpts...),
		logger:  o.logger.With("component", "runtime"),
	}
}

// Run drives the loop until ctx ends and returns ctx.Err(). Call Close
// first to flush pending host calls.
func (r *Runtime) Run(ctx context.Context) error {
	return r.loop.Run(ctx)
}

// Done is closed when Run returns.
func (r *Runtime) Done() <-chan struct{} { return r.loop.Done() }

// Session returns the session. Use it only from the loop goroutine.
func (r *Runtime) Session() *dom.Session { return r.session }

// Loop returns the runtime's loop.
func (r *Runtime) Loop() *loop.Loop { return r.loop }

// Do runs fn on the loop and waits for it.
func (r *Runtime) Do(ctx context.Context, fn func(s *dom.Session) error) error {
	return r.loop.Do(ctx, func() error { return fn(r.session) })
}

// Mount creates a document on rootTag and runs app against it on the
// loop. The host calls app produces are drained afterwards, one per tick.
func (r *Runtime) Mount(ctx context.Context, rootTag int, app App) (*dom.Document, error) {
	var doc *dom.Document
	err := r.Do(ctx, func(s *dom.Session) error {
		doc = s.CreateDocument(rootTag)
		if app == nil {
			return nil
		}
		return app(doc)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("document mounted", "root", rootTag)
	return doc, nil
}

// ReceiveEvent queues a generic host event. Safe from any goroutine.
func (r *Runtime) ReceiveEvent(rootTag int, typ string, payload map[string]any) {
	r.loop.Dispatch(func() {
		r.session.Emitter().ReceiveEvent(rootTag, typ, dom.NativeEvent(payload))
	})
}

// ReceiveTouches queues a touch event. Safe from any goroutine.
func (r *Runtime) ReceiveTouches(typ string, touches []map[string]any, changedIndices []int) {
	native := make([]dom.NativeEvent, len(touches))
	for i, t := range touches {
		native[i] = dom.NativeEvent(t)
	}
	r.loop.Dispatch(func() {
		r.session.Emitter().ReceiveTouches(typ, native, changedIndices)
	})
}

// HandleHostEvent routes a decoded wire event to ReceiveEvent or
// ReceiveTouches.
func (r *Runtime) HandleHostEvent(ev *protocol.HostEvent) {
	switch ev.Kind {
	case protocol.EventTouches:
		r.ReceiveTouches(ev.Type, ev.Touches, ev.Changed)
	default:
		r.ReceiveEvent(ev.RootTag, ev.Type, ev.Payload)
	}
}

// Close flushes and disposes the session on the loop.
func (r *Runtime) Close(ctx context.Context) error {
	return r.Do(ctx, func(s *dom.Session) error {
		s.Dispose()
		return nil
	})
}
