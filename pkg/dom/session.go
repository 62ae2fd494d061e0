package dom

import (
	"context"
	"log/slog"

	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/loop"
)

// Reserved local names.
const (
	TagText     = host.TagText
	TagDocument = host.TagDocument
	TagFragment = host.TagFragment
	TagTemplate = host.TagTemplate
)

// Session owns one document lifecycle: tag allocation, the command queue
// and the current Document.
type Session struct {
	ctx      context.Context
	host     host.Host
	sched    loop.Scheduler
	registry *Registry
	bridge   *Bridge
	emitter  *Emitter
	types    *host.TypeTable
	views    *host.ViewConfigs
	logger   *slog.Logger
	observer Observer
	onError  func(error)
	strategy DiffStrategy
	doc      *Document

	// generation counts registry resets. Bindings from an earlier
	// generation no longer own their tags.
	generation uint64
}

// Option configures a Session.
type Option func(*Session)

// WithContext sets the context passed to host calls.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithObserver installs an observer for bridge activity.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithErrorHandler sets the handler for errors raised outside any caller,
// such as listener panics. It runs on a later scheduler tick.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Session) { s.onError = fn }
}

// WithDiffStrategy selects the children diff strategy.
func WithDiffStrategy(d DiffStrategy) Option {
	return func(s *Session) { s.strategy = d }
}

// WithTypeTable replaces the default component type table.
func WithTypeTable(t *host.TypeTable) Option {
	return func(s *Session) { s.types = t }
}

// WithViewConfigs replaces the default view configs.
func WithViewConfigs(vc *host.ViewConfigs) Option {
	return func(s *Session) { s.views = vc }
}

// NewSession creates a session that sends view commands to h and drains
// its queue on sched.
func NewSession(h host.Host, sched loop.Scheduler, opts ...Option) *Session {
	s := &Session{
		ctx:      context.Background(),
		host:     h,
		sched:    sched,
		registry: NewRegistry(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "dom")
	}
	if s.types == nil {
		s.types = host.NewTypeTable()
	}
	if s.views == nil {
		s.views = host.NewViewConfigs()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.onError == nil {
		s.onError = func(err error) {
			attrs := []any{"error", err}
			if p, ok := err.(*ListenerPanic); ok {
				attrs = append(attrs, "stack", string(p.Stack))
			}
			s.logger.Error("event listener failed", attrs...)
		}
	}
	s.bridge = newBridge(s)
	s.emitter = &Emitter{s: s}
	return s
}

// CreateDocument starts a new document attached to the host root rootTag.
// Pending commands of the previous document are run first. If the previous
// document had nodes, the host root is cleared before the new document's
// first structural change reaches it.
func (s *Session) CreateDocument(rootTag int) *Document {
	s.bridge.Flush()
	hadBindings := s.registry.Count() > 0

	s.registry.Reset()
	s.generation++
	s.registry.SetRoot(rootTag)
	doc := newDocument(s)
	s.doc = doc
	if hadBindings {
		doc.binding.Clear()
	}
	s.bridge.kick()
	return doc
}

// HostElementOptions configures RegisterHostElement.
type HostElementOptions struct {
	// NativeHost marks component as a host primitive rendered under the
	// tag's own name.
	NativeHost bool
}

// RegisterHostElement maps tag to a host component.
func (s *Session) RegisterHostElement(tag, component string, opts HostElementOptions) {
	s.types.Register(tag, component, opts.NativeHost)
}

// Document returns the current document, or nil before CreateDocument.
func (s *Session) Document() *Document { return s.doc }

// Registry returns the session's tag registry.
func (s *Session) Registry() *Registry { return s.registry }

// Bridge returns the session's command queue.
func (s *Session) Bridge() *Bridge { return s.bridge }

// Emitter returns the entry point for host event callbacks.
func (s *Session) Emitter() *Emitter { return s.emitter }

// Types returns the component type table.
func (s *Session) Types() *host.TypeTable { return s.types }

// Dispose runs pending commands and drops the document and all bindings.
func (s *Session) Dispose() {
	s.bridge.Flush()
	s.registry.Reset()
	s.generation++
	s.doc = nil
}

// reportAsync hands err to the error handler on the next tick.
func (s *Session) reportAsync(err error) {
	s.sched.Defer(func() { s.onError(err) })
}
