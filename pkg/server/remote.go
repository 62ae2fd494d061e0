package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/protocol"
)

// ErrDetached is returned by Resync when no connection is attached.
var ErrDetached = errors.New("server: remote host is detached")

// FrameObserver is notified of every frame a RemoteHost writes.
type FrameObserver interface {
	FrameSent(frameType string, n int)
}

// RemoteHost is a host.Host that encodes each call as a Calls frame and
// writes it to the attached WebSocket connection. Writes are serialized.
//
// While detached, calls are dropped; the journal in front of the
// RemoteHost keeps them for the resync that follows a reconnect.
type RemoteHost struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
	frames       FrameObserver

	// sent is the highest sequence number written to the current
	// connection. Calls at or below it are skipped.
	sent uint64
}

// NewRemoteHost returns a detached RemoteHost.
func NewRemoteHost(writeTimeout time.Duration, frames FrameObserver) *RemoteHost {
	return &RemoteHost{writeTimeout: writeTimeout, frames: frames}
}

// Attach directs subsequent calls to conn.
func (r *RemoteHost) Attach(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conn = conn
	r.sent = 0
}

// Detach drops the connection if it is still conn.
func (r *RemoteHost) Detach(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == conn {
		r.conn = nil
	}
}

// Attached reports whether a connection is attached.
func (r *RemoteHost) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// SendCall writes call as a Calls frame. It implements journal.CallSender.
func (r *RemoteHost) SendCall(_ context.Context, call *protocol.HostCall) error {
	payload, err := protocol.EncodeCalls([]*protocol.HostCall{call})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	if call.Seq != 0 && call.Seq <= r.sent {
		return nil
	}
	if err := r.writeLocked(protocol.FrameCalls, 0, payload); err != nil {
		return err
	}
	if call.Seq > r.sent {
		r.sent = call.Seq
	}
	return nil
}

// Fetch returns the calls a host is missing and the sequence number the
// host will be at once it has applied them.
type Fetch func() (calls []*protocol.HostCall, last uint64, err error)

// Resync writes the calls fetch returns with the replay flag, followed by
// a ResyncDone control. Calls produced while the replay runs wait for it.
func (r *RemoteHost) Resync(fetch Fetch) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return 0, ErrDetached
	}
	return r.resyncLocked(fetch)
}

// Resume attaches conn and resyncs it in one step, so no live call can
// overtake the replay.
func (r *RemoteHost) Resume(conn *websocket.Conn, fetch Fetch) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conn = conn
	r.sent = 0
	return r.resyncLocked(fetch)
}

func (r *RemoteHost) resyncLocked(fetch Fetch) (int, error) {
	calls, last, err := fetch()
	if err != nil {
		return 0, err
	}
	for _, c := range calls {
		payload, err := protocol.EncodeCalls([]*protocol.HostCall{c})
		if err != nil {
			return 0, err
		}
		if err := r.writeLocked(protocol.FrameCalls, protocol.FlagReplay, payload); err != nil {
			return 0, err
		}
	}
	if last > r.sent {
		r.sent = last
	}

	payload, err := protocol.NewResyncDone(last).Encode()
	if err != nil {
		return 0, err
	}
	return len(calls), r.writeLocked(protocol.FrameControl, 0, payload)
}

// WriteFrame writes a single frame to the attached connection.
func (r *RemoteHost) WriteFrame(ft protocol.FrameType, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return ErrDetached
	}
	return r.writeLocked(ft, 0, payload)
}

func (r *RemoteHost) writeLocked(ft protocol.FrameType, flags protocol.FrameFlags, payload []byte) error {
	f, err := protocol.NewFrame(ft, flags, payload)
	if err != nil {
		return err
	}
	data := f.Encode()
	if err := r.conn.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
		return err
	}
	if err := r.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	if r.frames != nil {
		r.frames.FrameSent(ft.String(), len(data))
	}
	return nil
}

// CreateView implements host.Host.
func (r *RemoteHost) CreateView(ctx context.Context, tag int, hostType string, rootTag int, props host.Props) error {
	return r.SendCall(ctx, &protocol.HostCall{Op: protocol.OpCreateView, Tag: tag, Class: hostType, Root: rootTag, Props: props})
}

// UpdateView implements host.Host.
func (r *RemoteHost) UpdateView(ctx context.Context, tag int, viewClass string, props host.Props) error {
	return r.SendCall(ctx, &protocol.HostCall{Op: protocol.OpUpdateView, Tag: tag, Class: viewClass, Props: props})
}

// ManageChildren implements host.Host.
func (r *RemoteHost) ManageChildren(ctx context.Context, container int, moveFrom, moveTo, addTags, addAt, removeAt []int) error {
	return r.SendCall(ctx, &protocol.HostCall{
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
func (r *RemoteHost) SetChildren(ctx context.Context, container int, tags []int) error {
	return r.SendCall(ctx, &protocol.HostCall{Op: protocol.OpSetChildren, Tag: container, Children: tags})
}

// goingAway tells the attached host the server is shutting down and
// closes the connection.
func (r *RemoteHost) goingAway() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return
	}
	if payload, err := protocol.NewClose(protocol.CloseGoingAway, "server shutting down").Encode(); err == nil {
		_ = r.writeLocked(protocol.FrameControl, 0, payload)
	}
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(time.Second))
	r.conn.Close()
	r.conn = nil
}
