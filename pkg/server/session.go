package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/hostdom"
	"github.com/vango-dev/hostdom/pkg/dom"
	"github.com/vango-dev/hostdom/pkg/journal"
	"github.com/vango-dev/hostdom/pkg/protocol"
)

// Session is one document served to one host. It survives a dropped
// connection for the server's ResumeWindow.
type Session struct {
	ID        string
	RootTag   int
	Platform  string
	CreatedAt time.Time

	runtime *hostdom.Runtime
	journal *journal.Journal
	remote  *RemoteHost
	cancel  context.CancelFunc
	logger  *slog.Logger

	ackSeq    atomic.Uint64
	eventsIn  atomic.Uint64
	closeOnce sync.Once
	done      chan struct{}

	mu          sync.Mutex
	expireTimer *time.Timer
}

// generateSessionID returns a random 128-bit hex ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// Runtime returns the session's runtime.
func (s *Session) Runtime() *hostdom.Runtime { return s.runtime }

// Journal returns the session's call journal.
func (s *Session) Journal() *journal.Journal { return s.journal }

// AckSeq returns the last sequence number the host acknowledged.
func (s *Session) AckSeq() uint64 { return s.ackSeq.Load() }

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Connected reports whether a host connection is attached.
func (s *Session) Connected() bool { return s.remote.Attached() }

// fetchSince returns the journal entries after lastSeq for a resync.
func (s *Session) fetchSince(lastSeq uint64) Fetch {
	return func() ([]*protocol.HostCall, uint64, error) {
		calls, err := s.journal.Since(lastSeq)
		if err != nil {
			return nil, 0, err
		}
		last := lastSeq
		if n := len(calls); n > 0 {
			last = calls[n-1].Seq
		}
		return calls, last, nil
	}
}

// scheduleExpiry closes the session after d unless it is resumed first.
func (s *Session) scheduleExpiry(d time.Duration, expire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expireTimer != nil {
		s.expireTimer.Stop()
	}
	s.expireTimer = time.AfterFunc(d, expire)
}

func (s *Session) cancelExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expireTimer != nil {
		s.expireTimer.Stop()
		s.expireTimer = nil
	}
}

// close disposes the document, archives the journal if sink is set and
// stops the runtime. It is safe to call more than once.
func (s *Session) close(ctx context.Context, sink journal.Sink) {
	s.closeOnce.Do(func() {
		s.cancelExpiry()
		if err := s.runtime.Close(ctx); err != nil {
			s.logger.Debug("dispose failed", "error", err)
		}
		if sink != nil {
			name := s.ID + ".hdj"
			if err := s.journal.Archive(ctx, sink, name); err != nil {
				s.logger.Error("journal archive failed", "error", err)
			}
		}
		s.cancel()
		<-s.runtime.Done()
		close(s.done)

		s.logger.Info("session closed",
			"calls", s.journal.LastSeq(),
			"acked", s.ackSeq.Load(),
			"events", s.eventsIn.Load(),
			"lifetime", time.Since(s.CreatedAt).Round(time.Millisecond))
	})
}

// defaultSessionOptions returns the dom options every session gets.
func (srv *Server) defaultSessionOptions(logger *slog.Logger) []dom.Option {
	opts := []dom.Option{
		dom.WithErrorHandler(func(err error) {
			logger.Warn("session error", "error", err)
		}),
	}
	if srv.metrics != nil {
		opts = append(opts, dom.WithObserver(srv.metrics))
	}
	if srv.types != nil {
		opts = append(opts, dom.WithTypeTable(srv.types))
	}
	opts = append(opts, dom.WithDiffStrategy(srv.strategy))
	return append(opts, srv.sessionOpts...)
}
