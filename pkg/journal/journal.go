// Package journal records host calls so they can be replayed to a host
// that reconnects, or archived for later inspection.
//
// A Journal is a host.Host decorator. Each call gets the next sequence
// number, is encoded with the protocol package and kept in a bounded
// History, and is then forwarded to the wrapped host.
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/hostdom/internal/errors"
	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/protocol"
)

// CallSender is implemented by hosts that transmit calls themselves and
// want the journal's sequence number. A Journal forwards through
// SendCall when the wrapped host implements it.
type CallSender interface {
	SendCall(ctx context.Context, call *protocol.HostCall) error
}

// Journal is a recording host.Host decorator.
type Journal struct {
	next    host.Host
	history *History
	logger  *slog.Logger

	mu  sync.Mutex
	seq uint64
}

// Option configures a Journal.
type Option func(*Journal)

// WithCapacity sets how many calls are retained.
func WithCapacity(n int) Option {
	return func(j *Journal) { j.history = NewHistory(n) }
}

// WithLogger sets the journal's logger.
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) { j.logger = l }
}

// New wraps next.
func New(next host.Host, opts ...Option) *Journal {
	j := &Journal{next: next}
	for _, opt := range opts {
		opt(j)
	}
	if j.history == nil {
		j.history = NewHistory(DefaultCapacity)
	}
	if j.logger == nil {
		j.logger = slog.Default().With("component", "journal")
	}
	return j
}

// History returns the retained calls.
func (j *Journal) History() *History { return j.history }

// LastSeq returns the sequence number of the most recent call.
func (j *Journal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

// CreateView implements host.Host.
func (j *Journal) CreateView(ctx context.Context, tag int, hostType string, rootTag int, props host.Props) error {
	return j.record(ctx, &protocol.HostCall{Op: protocol.OpCreateView, Tag: tag, Class: hostType, Root: rootTag, Props: props})
}

// UpdateView implements host.Host.
func (j *Journal) UpdateView(ctx context.Context, tag int, viewClass string, props host.Props) error {
	return j.record(ctx, &protocol.HostCall{Op: protocol.OpUpdateView, Tag: tag, Class: viewClass, Props: props})
}

// ManageChildren implements host.Host.
func (j *Journal) ManageChildren(ctx context.Context, container int, moveFrom, moveTo, addTags, addAt, removeAt []int) error {
	return j.record(ctx, &protocol.HostCall{
		Op:       protocol.OpManageChildren,
		Tag:      container,
		MoveFrom: moveFrom,
		MoveTo:   moveTo,
		AddTags:  addTags,
		AddAt:    addAt,
		RemoveAt: removeAt,
	})
}

// SetChildren implements host.Host.
func (j *Journal) SetChildren(ctx context.Context, container int, tags []int) error {
	return j.record(ctx, &protocol.HostCall{Op: protocol.OpSetChildren, Tag: container, Children: tags})
}

// record stores the call before forwarding it, so a call that fails to
// reach the host can still be replayed.
func (j *Journal) record(ctx context.Context, call *protocol.HostCall) error {
	e := protocol.NewEncoder()

	j.mu.Lock()
	j.seq++
	call.Seq = j.seq
	if err := call.Encode(e); err != nil {
		j.seq--
		j.mu.Unlock()
		return errors.New("E400").WithDetailf("encode %s for tag %d", call.Op, call.Tag).Wrap(err)
	}
	j.history.Add(call.Seq, e.Bytes())
	j.mu.Unlock()

	if s, ok := j.next.(CallSender); ok {
		return s.SendCall(ctx, call)
	}
	return call.Apply(ctx, j.next)
}

// Since decodes every retained call after seq. It fails with E303 when
// the calls are no longer all retained.
func (j *Journal) Since(seq uint64) ([]*protocol.HostCall, error) {
	entries, ok := j.history.Since(seq)
	if !ok {
		return nil, errors.New("E303").WithDetailf("calls after %d are no longer retained (oldest %d, newest %d)",
			seq, j.history.MinSeq(), j.history.MaxSeq())
	}
	return decodeEntries(entries)
}

// Calls decodes every retained call, oldest first.
func (j *Journal) Calls() ([]*protocol.HostCall, error) {
	return decodeEntries(j.history.Entries())
}

func decodeEntries(entries []Entry) ([]*protocol.HostCall, error) {
	calls := make([]*protocol.HostCall, 0, len(entries))
	for _, e := range entries {
		c, err := protocol.DecodeHostCall(protocol.NewDecoder(e.Call))
		if err != nil {
			return nil, errors.New("E302").WithDetailf("entry %d", e.Seq).Wrap(err)
		}
		calls = append(calls, c)
	}
	return calls, nil
}

// Replay applies calls to h in order and stops at the first failure.
func Replay(ctx context.Context, h host.Host, calls []*protocol.HostCall) error {
	for _, c := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Apply(ctx, h); err != nil {
			return fmt.Errorf("replay seq %d (%s): %w", c.Seq, c.Op, err)
		}
	}
	return nil
}
