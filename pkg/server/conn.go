package server

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"

	hderrors "github.com/vango-dev/hostdom/internal/errors"
	"github.com/vango-dev/hostdom/pkg/protocol"
)

// conn runs the read loop and heartbeat for one attached connection.
type conn struct {
	srv  *Server
	sess *Session
	ws   *websocket.Conn
	done chan struct{}
}

func newConn(srv *Server, sess *Session, ws *websocket.Conn) *conn {
	return &conn{srv: srv, sess: sess, ws: ws, done: make(chan struct{})}
}

// serve blocks until the connection ends.
func (c *conn) serve() {
	go c.writeLoop()
	c.readLoop()
	close(c.done)
	c.ws.Close()
}

// readLoop decodes frames until the connection fails or the host closes.
func (c *conn) readLoop() {
	cfg := c.srv.config
	for {
		if err := c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout)); err != nil {
			return
		}
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.sess.logger.Warn("read error", "error", err)
			}
			return
		}

		f, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.sess.logger.Warn("frame decode error", "error", err)
			c.sendError(protocol.ErrInvalidFrame, err.Error(), false)
			continue
		}
		if c.srv.metrics != nil {
			c.srv.metrics.FrameReceived(f.Type.String())
		}

		switch f.Type {
		case protocol.FrameEvent:
			c.handleEvent(f.Payload)
		case protocol.FrameControl:
			if !c.handleControl(f.Payload) {
				return
			}
		case protocol.FrameAck:
			c.handleAck(f.Payload)
		default:
			c.sess.logger.Warn("unexpected frame type", "type", f.Type)
			c.sendError(protocol.ErrNotAcceptable, "unexpected "+f.Type.String()+" frame", false)
		}
	}
}

// handleEvent hands a host event to the session's loop.
func (c *conn) handleEvent(payload []byte) {
	ev, err := protocol.DecodeHostEvent(payload)
	if err != nil {
		c.sess.logger.Warn("event decode error", "error", err)
		c.sendError(protocol.ErrInvalidEvent, "invalid event format", false)
		return
	}
	c.sess.eventsIn.Add(1)
	c.sess.runtime.HandleHostEvent(ev)
}

// handleControl reports whether the read loop should continue.
func (c *conn) handleControl(payload []byte) bool {
	ctl, err := protocol.DecodeControl(payload)
	if err != nil {
		c.sess.logger.Warn("control decode error", "error", err)
		return true
	}

	switch ctl.Type {
	case protocol.ControlPing:
		c.sendControl(protocol.NewPong(ctl.Timestamp))
	case protocol.ControlPong:
		c.sess.logger.Debug("received pong",
			"rtt", time.Since(time.UnixMilli(int64(ctl.Timestamp))).Round(time.Millisecond))
	case protocol.ControlResyncRequest:
		c.handleResync(ctl.Seq)
	case protocol.ControlClose:
		c.sess.logger.Info("host closing", "reason", ctl.Reason, "message", ctl.Message)
		return false
	default:
		c.sess.logger.Debug("ignoring control", "type", ctl.Type)
	}
	return true
}

func (c *conn) handleAck(payload []byte) {
	ack, err := protocol.DecodeAck(payload)
	if err != nil {
		c.sess.logger.Warn("ack decode error", "error", err)
		return
	}
	c.sess.ackSeq.Store(ack.LastSeq)
}

// handleResync replays the journal after lastSeq. When the journal no
// longer covers the gap the host is told its session expired.
func (c *conn) handleResync(lastSeq uint64) {
	c.sess.logger.Info("resync requested", "last_seq", lastSeq)
	n, err := c.sess.remote.Resync(c.sess.fetchSince(lastSeq))
	switch {
	case err == nil:
		c.sess.logger.Debug("resync complete", "replayed", n)
	case hderrors.HasCode(err, "E303"):
		c.sess.logger.Warn("resync not possible", "last_seq", lastSeq, "error", err)
		c.sendError(protocol.ErrSessionExpired, err.Error(), true)
	case errors.Is(err, ErrDetached):
	default:
		c.sess.logger.Error("resync failed", "error", err)
	}
}

// writeLoop sends heartbeat pings until the connection ends.
func (c *conn) writeLoop() {
	ticker := time.NewTicker(c.srv.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.sendControl(protocol.NewPing(uint64(time.Now().UnixMilli()))); err != nil {
				return
			}
		case <-c.done:
			return
		case <-c.sess.done:
			return
		}
	}
}

func (c *conn) sendControl(ctl *protocol.Control) error {
	payload, err := ctl.Encode()
	if err != nil {
		return err
	}
	if err := c.sess.remote.WriteFrame(protocol.FrameControl, payload); err != nil {
		if !errors.Is(err, ErrDetached) {
			c.sess.logger.Debug("control write failed", "type", ctl.Type, "error", err)
		}
		return err
	}
	return nil
}

func (c *conn) sendError(code protocol.ErrorCode, message string, fatal bool) {
	msg := &protocol.ErrorMessage{Code: code, Message: message, Fatal: fatal}
	if err := c.sess.remote.WriteFrame(protocol.FrameError, msg.Encode()); err != nil {
		c.sess.logger.Debug("error frame not sent", "code", code, "error", err)
	}
}
