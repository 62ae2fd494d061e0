package server

import (
	"net/http"
	"net/url"
	"time"
)

// Config configures the host endpoint.
type Config struct {
	// Address is the listen address for Run (default: ":7878").
	Address string

	// Path is the WebSocket endpoint hosts connect to (default: "/host").
	Path string

	ReadBufferSize  int
	WriteBufferSize int

	// MaxMessageSize bounds a single inbound WebSocket message.
	MaxMessageSize int64

	// HandshakeTimeout bounds the wait for the HostHello frame.
	HandshakeTimeout time.Duration

	// WriteTimeout is the deadline applied to every outbound frame.
	WriteTimeout time.Duration

	// ReadTimeout is how long a connection may stay silent. It should be
	// larger than HeartbeatInterval since pongs keep the connection alive.
	ReadTimeout time.Duration

	// HeartbeatInterval is the ping period.
	HeartbeatInterval time.Duration

	// ResumeWindow is how long a session outlives its connection while
	// waiting for the host to reconnect. Zero closes the session with the
	// connection.
	ResumeWindow time.Duration

	// HistorySize is the number of host calls kept for resync.
	HistorySize int

	// RootTag is used when the HostHello names no root.
	RootTag int

	// MaxSessions limits concurrent sessions. Zero means no limit.
	MaxSessions int

	// CheckOrigin validates the Origin header on upgrade.
	CheckOrigin func(r *http.Request) bool

	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":7878",
		Path:              "/host",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		MaxMessageSize:    64 * 1024,
		HandshakeTimeout:  10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadTimeout:       90 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		ResumeWindow:      30 * time.Second,
		HistorySize:       1024,
		RootTag:           1,
		CheckOrigin:       SameOriginCheck,
		ShutdownTimeout:   30 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig. ResumeWindow and
// MaxSessions keep their zero values.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.Path == "" {
		out.Path = d.Path
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.HandshakeTimeout == 0 {
		out.HandshakeTimeout = d.HandshakeTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.HeartbeatInterval == 0 {
		out.HeartbeatInterval = d.HeartbeatInterval
	}
	if out.HistorySize == 0 {
		out.HistorySize = d.HistorySize
	}
	if out.RootTag == 0 {
		out.RootTag = d.RootTag
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	return &out
}

// SameOriginCheck accepts requests without an Origin header and requests
// whose Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return u.Host == r.Host
}

// AllowOrigins returns a CheckOrigin func accepting same-origin requests
// and the listed origins.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		_, ok := allowed[r.Header.Get("Origin")]
		return ok
	}
}

// WithAddress sets the listen address and returns the config for chaining.
func (c *Config) WithAddress(addr string) *Config {
	c.Address = addr
	return c
}

// WithPath sets the endpoint path and returns the config for chaining.
func (c *Config) WithPath(path string) *Config {
	c.Path = path
	return c
}

// WithHeartbeat sets the ping period and returns the config for chaining.
func (c *Config) WithHeartbeat(d time.Duration) *Config {
	c.HeartbeatInterval = d
	return c
}

// WithResumeWindow sets the resume window and returns the config for
// chaining.
func (c *Config) WithResumeWindow(d time.Duration) *Config {
	c.ResumeWindow = d
	return c
}
