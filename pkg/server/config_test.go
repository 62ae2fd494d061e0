package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/hostdom/pkg/protocol"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := (&Config{Address: ":9999", HeartbeatInterval: time.Second}).withDefaults()

	assert.Equal(t, ":9999", cfg.Address)
	assert.Equal(t, time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, "/host", cfg.Path)
	assert.Equal(t, 1024, cfg.HistorySize)
	assert.Equal(t, 1, cfg.RootTag)
	assert.Equal(t, time.Duration(0), cfg.ResumeWindow)
	assert.NotNil(t, cfg.CheckOrigin)

	var nilCfg *Config
	assert.Equal(t, 30*time.Second, nilCfg.withDefaults().ResumeWindow)
}

func TestConfig_Chaining(t *testing.T) {
	cfg := DefaultConfig().
		WithAddress(":1").
		WithPath("/native").
		WithHeartbeat(time.Minute).
		WithResumeWindow(0)

	assert.Equal(t, ":1", cfg.Address)
	assert.Equal(t, "/native", cfg.Path)
	assert.Equal(t, time.Minute, cfg.HeartbeatInterval)
	assert.Zero(t, cfg.ResumeWindow)
}

func TestSameOriginCheck(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin", "", true},
		{"same host", "http://example.com", true},
		{"other host", "http://evil.com", false},
		{"other port", "http://example.com:8080", false},
		{"unparseable", "://", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "http://example.com/host", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, SameOriginCheck(r))
		})
	}
}

func TestAllowOrigins(t *testing.T) {
	check := AllowOrigins("https://app.example")

	r := httptest.NewRequest("GET", "http://example.com/host", nil)
	r.Header.Set("Origin", "https://app.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://other.example")
	assert.False(t, check(r))
}

func TestRemoteHost_Detached(t *testing.T) {
	r := NewRemoteHost(time.Second, nil)
	assert.False(t, r.Attached())

	require.NoError(t, r.CreateView(context.Background(), 2, "RCTView", 1, nil))
	require.NoError(t, r.SetChildren(context.Background(), 1, []int{2}))

	assert.ErrorIs(t, r.WriteFrame(protocol.FrameControl, nil), ErrDetached)
	_, err := r.Resync(func() ([]*protocol.HostCall, uint64, error) { return nil, 0, nil })
	assert.ErrorIs(t, err, ErrDetached)
}
