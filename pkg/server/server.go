package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hostdom"
	hderrors "github.com/vango-dev/hostdom/internal/errors"
	"github.com/vango-dev/hostdom/pkg/dom"
	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/journal"
	"github.com/vango-dev/hostdom/pkg/protocol"
	"github.com/vango-dev/hostdom/pkg/telemetry"
)

// Server accepts host connections and serves one document per session.
type Server struct {
	config   *Config
	app      hostdom.App
	upgrader websocket.Upgrader
	router   chi.Router
	logger   *slog.Logger

	metrics     *telemetry.Metrics
	gatherer    prometheus.Gatherer
	tracer      trace.Tracer
	sink        journal.Sink
	types       *host.TypeTable
	strategy    dom.DiffStrategy
	sessionOpts []dom.Option

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	sessions   map[string]*Session
	closed     bool
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics records session and connection metrics and serves them on
// /metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithGatherer sets where /metrics reads from. It defaults to the
// Prometheus default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithTracer wraps each session's host in a span per host call.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithArchiveSink archives each session's journal when it closes.
func WithArchiveSink(sink journal.Sink) Option {
	return func(s *Server) { s.sink = sink }
}

// WithTypeTable sets the component table for every session.
func WithTypeTable(t *host.TypeTable) Option {
	return func(s *Server) { s.types = t }
}

// WithDiffStrategy sets the children diff strategy for every session.
func WithDiffStrategy(d dom.DiffStrategy) Option {
	return func(s *Server) { s.strategy = d }
}

// WithSessionOptions passes extra options to every dom.Session.
func WithSessionOptions(opts ...dom.Option) Option {
	return func(s *Server) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

// New creates a server that runs app for every new session. Unset config
// fields take their defaults.
func New(config *Config, app hostdom.App, opts ...Option) *Server {
	config = config.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:   config,
		app:      app,
		strategy: dom.MinimalMoves,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "server")
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}

	r := chi.NewRouter()
	r.Get(config.Path, s.HandleWebSocket)
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		if s.gatherer == nil {
			s.gatherer = prometheus.DefaultGatherer
		}
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Config returns the effective configuration.
func (s *Server) Config() *Config { return s.config }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// Session returns the live session with id.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// HandleWebSocket upgrades the request and runs the host protocol on it.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	s.wg.Add(1)
	defer s.wg.Done()

	if s.metrics != nil {
		s.metrics.ConnectionOpened()
		defer s.metrics.ConnectionClosed()
	}

	hello, err := s.readHello(conn)
	if err != nil {
		s.logger.Warn("handshake failed", "remote", r.RemoteAddr, "error", err)
		s.sendHandshakeError(conn, protocol.HandshakeInternalError)
		conn.Close()
		return
	}
	if !protocol.CurrentVersion.Compatible(hello.Version) {
		s.logger.Warn("protocol version mismatch", "host", hello.Version, "server", protocol.CurrentVersion)
		s.sendHandshakeError(conn, protocol.HandshakeVersionMismatch)
		conn.Close()
		return
	}
	if hello.RootTag < 0 {
		s.sendHandshakeError(conn, protocol.HandshakeInvalidRoot)
		conn.Close()
		return
	}

	sess, resumed, status := s.sessionFor(hello)
	if status != protocol.HandshakeOK {
		s.sendHandshakeError(conn, status)
		conn.Close()
		return
	}
	if err := s.sendServerHello(conn, sess.ID); err != nil {
		s.logger.Error("server hello failed", "error", err)
		conn.Close()
		if !resumed {
			s.closeSession(sess)
		}
		return
	}

	if resumed {
		n, err := sess.remote.Resume(conn, sess.fetchSince(hello.LastSeq))
		if err != nil {
			sess.logger.Warn("resume failed", "last_seq", hello.LastSeq, "error", err)
			sess.remote.Detach(conn)
			s.sendError(sess, conn, err)
			conn.Close()
			s.closeSession(sess)
			return
		}
		sess.logger.Info("session resumed", "last_seq", hello.LastSeq, "replayed", n)
	} else {
		sess.remote.Attach(conn)
		if _, err := sess.runtime.Mount(s.ctx, sess.RootTag, s.app); err != nil {
			sess.logger.Error("mount failed", "error", err)
			sess.remote.Detach(conn)
			s.sendError(sess, conn, err)
			conn.Close()
			s.closeSession(sess)
			return
		}
		sess.logger.Info("session started", "root", sess.RootTag, "platform", sess.Platform)
	}

	c := newConn(s, sess, conn)
	c.serve()
	s.detach(sess, conn)
}

// readHello reads the Handshake frame that opens every connection.
func (s *Server) readHello(conn *websocket.Conn) (*protocol.HostHello, error) {
	if err := conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout)); err != nil {
		return nil, err
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, hderrors.New("E301").Wrap(err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		return nil, hderrors.New("E300").Wrap(err)
	}
	if f.Type != protocol.FrameHandshake {
		return nil, hderrors.New("E301").WithDetailf("first frame is %s, want %s", f.Type, protocol.FrameHandshake)
	}
	hello, err := protocol.DecodeHostHello(f.Payload)
	if err != nil {
		return nil, hderrors.New("E300").Wrap(err)
	}
	return hello, nil
}

// sessionFor returns the session named in hello if it can be resumed, or
// a new one.
func (s *Server) sessionFor(hello *protocol.HostHello) (*Session, bool, protocol.HandshakeStatus) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false, protocol.HandshakeServerBusy
	}
	if hello.SessionID != "" {
		if sess, ok := s.sessions[hello.SessionID]; ok && !sess.Connected() {
			s.mu.Unlock()
			sess.cancelExpiry()
			return sess, true, protocol.HandshakeOK
		}
	}
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		return nil, false, protocol.HandshakeServerBusy
	}
	s.mu.Unlock()

	rootTag := hello.RootTag
	if rootTag == 0 {
		rootTag = s.config.RootTag
	}
	sess := s.newSession(rootTag, hello.Platform)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, false, protocol.HandshakeOK
}

// newSession builds the host chain for one session and starts its loop:
//
//	Runtime -> TracedHost -> Journal -> RemoteHost
func (s *Server) newSession(rootTag int, platform string) *Session {
	id := generateSessionID()
	logger := s.logger.With("session_id", id)

	var frames FrameObserver
	if s.metrics != nil {
		frames = s.metrics
	}
	remote := NewRemoteHost(s.config.WriteTimeout, frames)
	jr := journal.New(remote,
		journal.WithCapacity(s.config.HistorySize),
		journal.WithLogger(logger.With("component", "journal")))

	var h host.Host = jr
	if s.tracer != nil {
		h = telemetry.TraceHost(jr, s.tracer)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	opts := append(s.defaultSessionOptions(logger), dom.WithContext(ctx))
	rt := hostdom.New(h,
		hostdom.WithLogger(logger),
		hostdom.WithSessionOptions(opts...))

	sess := &Session{
		ID:        id,
		RootTag:   rootTag,
		Platform:  platform,
		CreatedAt: time.Now(),
		runtime:   rt,
		journal:   jr,
		remote:    remote,
		cancel:    cancel,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go func() {
		if err := rt.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("loop stopped", "error", err)
		}
	}()
	return sess
}

// detach runs when a connection ends. The session waits ResumeWindow for
// the host to come back.
func (s *Server) detach(sess *Session, conn *websocket.Conn) {
	sess.remote.Detach(conn)
	if sess.Connected() {
		return
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.config.ResumeWindow <= 0 {
		s.closeSession(sess)
		return
	}

	sess.logger.Debug("session detached", "resume_window", s.config.ResumeWindow)
	sess.scheduleExpiry(s.config.ResumeWindow, func() {
		if !sess.Connected() {
			sess.logger.Info("session expired")
			s.closeSession(sess)
		}
	})
}

func (s *Server) closeSession(sess *Session) {
	s.mu.Lock()
	if s.sessions[sess.ID] == sess {
		delete(s.sessions, sess.ID)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	sess.close(ctx, s.sink)
}

func (s *Server) sendHandshakeError(conn *websocket.Conn, status protocol.HandshakeStatus) {
	hello := &protocol.ServerHello{Status: status, Version: protocol.CurrentVersion}
	s.writeRaw(conn, protocol.FrameHandshake, hello.Encode())
}

func (s *Server) sendServerHello(conn *websocket.Conn, id string) error {
	hello := &protocol.ServerHello{
		Status:     protocol.HandshakeOK,
		Version:    protocol.CurrentVersion,
		SessionID:  id,
		ServerTime: uint64(time.Now().UnixMilli()),
	}
	return s.writeRaw(conn, protocol.FrameHandshake, hello.Encode())
}

// sendError writes an Error frame describing err before the connection
// is attached or after it failed.
func (s *Server) sendError(sess *Session, conn *websocket.Conn, err error) {
	code := protocol.ErrServerError
	if hderrors.HasCode(err, "E303") {
		code = protocol.ErrSessionExpired
	}
	msg := &protocol.ErrorMessage{Code: code, Message: err.Error(), Fatal: true}
	if werr := s.writeRaw(conn, protocol.FrameError, msg.Encode()); werr != nil {
		sess.logger.Debug("error frame not sent", "error", werr)
	}
}

// writeRaw writes a frame to a connection no RemoteHost owns yet.
func (s *Server) writeRaw(conn *websocket.Conn, ft protocol.FrameType, payload []byte) error {
	f, err := protocol.NewFrame(ft, 0, payload)
	if err != nil {
		return err
	}
	data := f.Encode()
	if err := conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.FrameSent(ft.String(), len(data))
	}
	return nil
}

// Run listens on the configured address and serves until ctx ends, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String(), "path", s.config.Path)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting connections, closes every session and waits
// for the connection handlers to return.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.httpServer
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		if serr := srv.Shutdown(ctx); serr != nil {
			s.logger.Error("shutdown error", "error", serr)
			err = serr
		}
	}

	for _, sess := range sessions {
		sess.remote.goingAway()
		s.closeSession(sess)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	s.cancel()

	s.logger.Info("server shutdown complete")
	return err
}
