package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/hostdom/internal/errors"
	"github.com/vango-dev/hostdom/pkg/dom"
	"github.com/vango-dev/hostdom/pkg/host"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hostdom.json"

	// DefaultHost is the default listen host.
	DefaultHost = "localhost"

	// DefaultPort is the default listen port.
	DefaultPort = 7878

	// DefaultPath is the default WebSocket endpoint for hosts.
	DefaultPath = "/host"

	// DefaultRootTag is the root container tag used when a host does not
	// name one.
	DefaultRootTag = 1

	// DefaultHistorySize is the number of host calls kept for resync.
	DefaultHistorySize = 1024
)

// Config represents hostdom.json.
type Config struct {
	// Name identifies the application in logs and metrics labels.
	Name string `json:"name,omitempty"`

	Server    ServerConfig    `json:"server,omitempty"`
	Session   SessionConfig   `json:"session,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	Journal   JournalConfig   `json:"journal,omitempty"`

	// Types is the path to a YAML component table, relative to the
	// config file. Empty means the built-in table.
	Types string `json:"types,omitempty"`

	configPath string
}

// ServerConfig configures the remote host endpoint.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// Path is the WebSocket endpoint (default: "/host").
	Path string `json:"path,omitempty"`

	ReadBufferSize  int `json:"readBufferSize,omitempty"`
	WriteBufferSize int `json:"writeBufferSize,omitempty"`

	// Durations use time.ParseDuration syntax, for example "10s".
	HandshakeTimeout  string `json:"handshakeTimeout,omitempty"`
	WriteTimeout      string `json:"writeTimeout,omitempty"`
	HeartbeatInterval string `json:"heartbeatInterval,omitempty"`

	// AllowedOrigins lists the Origin values accepted on upgrade. Empty
	// accepts same-origin requests and requests without an Origin header.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// SessionConfig configures each document session.
type SessionConfig struct {
	// DiffStrategy is "minimal" or "positional".
	DiffStrategy string `json:"diffStrategy,omitempty"`

	RootTag     int `json:"rootTag,omitempty"`
	HistorySize int `json:"historySize,omitempty"`
}

// TelemetryConfig toggles metrics and tracing.
type TelemetryConfig struct {
	Metrics    bool   `json:"metrics,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
	Tracing    bool   `json:"tracing,omitempty"`
	TracerName string `json:"tracerName,omitempty"`
}

// JournalConfig says where journals are archived when a session ends.
type JournalConfig struct {
	Dir            string `json:"dir,omitempty"`
	S3Bucket       string `json:"s3Bucket,omitempty"`
	S3Prefix       string `json:"s3Prefix,omitempty"`
	ArchiveOnClose bool   `json:"archiveOnClose,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{
		Telemetry: TelemetryConfig{Metrics: true},
	}
	c.applyDefaults()
	return c
}

// Load reads hostdom.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E203").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("E200").Wrap(err)
	}

	cfg := &Config{Telemetry: TelemetryConfig{Metrics: true}}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E200").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E200").Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E200").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.configPath }

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = 4096
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = 4096
	}
	if c.Server.HandshakeTimeout == "" {
		c.Server.HandshakeTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.HeartbeatInterval == "" {
		c.Server.HeartbeatInterval = "30s"
	}

	if c.Session.DiffStrategy == "" {
		c.Session.DiffStrategy = dom.MinimalMoves.String()
	}
	if c.Session.RootTag == 0 {
		c.Session.RootTag = DefaultRootTag
	}
	if c.Session.HistorySize == 0 {
		c.Session.HistorySize = DefaultHistorySize
	}

	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = "hostdom"
	}
	if c.Telemetry.TracerName == "" {
		c.Telemetry.TracerName = "hostdom"
	}
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E201").WithDetail("server.port must be between 0 and 65535")
	}
	if c.Server.Path == "" || c.Server.Path[0] != '/' {
		return errors.New("E201").WithDetailf("server.path %q must start with /", c.Server.Path)
	}
	for name, v := range map[string]string{
		"server.handshakeTimeout":  c.Server.HandshakeTimeout,
		"server.writeTimeout":      c.Server.WriteTimeout,
		"server.heartbeatInterval": c.Server.HeartbeatInterval,
	} {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return errors.New("E201").WithDetailf("%s %q is not a positive duration", name, v)
		}
	}
	if _, ok := dom.ParseDiffStrategy(c.Session.DiffStrategy); !ok {
		return errors.New("E201").
			WithDetailf("session.diffStrategy %q is not recognized", c.Session.DiffStrategy).
			WithSuggestion(`Use "minimal" or "positional"`)
	}
	if c.Session.RootTag < 1 {
		return errors.New("E201").WithDetail("session.rootTag must be positive")
	}
	if c.Session.HistorySize < 0 {
		return errors.New("E201").WithDetail("session.historySize must not be negative")
	}
	if c.Journal.ArchiveOnClose && c.Journal.Dir == "" && c.Journal.S3Bucket == "" {
		return errors.New("E201").
			WithDetail("journal.archiveOnClose is set but neither journal.dir nor journal.s3Bucket is")
	}
	return nil
}

// Address returns host:port for the listener.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// HandshakeTimeout returns the parsed handshake timeout.
func (c *Config) HandshakeTimeout() time.Duration {
	return parseDuration(c.Server.HandshakeTimeout, 10*time.Second)
}

// WriteTimeout returns the parsed write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 10*time.Second)
}

// HeartbeatInterval returns the parsed heartbeat interval.
func (c *Config) HeartbeatInterval() time.Duration {
	return parseDuration(c.Server.HeartbeatInterval, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// DiffStrategy returns the configured strategy, or MinimalMoves if the
// value is not recognized.
func (c *Config) DiffStrategy() dom.DiffStrategy {
	s, _ := dom.ParseDiffStrategy(c.Session.DiffStrategy)
	return s
}

// TypesPath resolves Types against the config directory.
func (c *Config) TypesPath() string {
	if c.Types == "" || filepath.IsAbs(c.Types) {
		return c.Types
	}
	return filepath.Join(c.Dir(), c.Types)
}

// LoadTypes returns the component table named by Types, or the built-in
// table when Types is empty.
func (c *Config) LoadTypes() (*host.TypeTable, error) {
	path := c.TypesPath()
	if path == "" {
		return host.NewTypeTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("E202").WithDetailf("open %s", path).Wrap(err)
	}
	defer f.Close()
	return host.LoadTypeTable(f)
}
