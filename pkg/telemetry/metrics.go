// Package telemetry exports Prometheus metrics and OpenTelemetry spans for
// hostdom sessions and the host calls they make.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/hostdom/pkg/dom"
)

// MetricsConfig configures Metrics.
type MetricsConfig struct {
	// Namespace prefixes every metric name (default: "hostdom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for command duration.
	Buckets []float64

	// Registry receives the collectors (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// MetricsOption configures Metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registerer.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "hostdom",
		Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a dom.Observer backed by Prometheus collectors. One Metrics
// may be shared by many sessions.
type Metrics struct {
	commandsEnqueued *prometheus.CounterVec
	commandsExecuted *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	queueDepth       prometheus.Gauge
	eventsRouted     *prometheus.CounterVec

	connections prometheus.Gauge
	framesIn    *prometheus.CounterVec
	framesOut   *prometheus.CounterVec
	bytesOut    prometheus.Counter
}

var _ dom.Observer = (*Metrics)(nil)

// NewMetrics registers the collectors and returns the observer.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		commandsEnqueued: counter("commands_enqueued_total",
			"Bridge commands queued, by method", "method"),
		commandsExecuted: counter("commands_executed_total",
			"Bridge commands executed, by method and result", "method", "status"),
		commandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "command_duration_seconds",
			Help:        "Time spent executing a bridge command, host call included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),
		queueDepth: gauge("queue_depth",
			"Bridge commands queued and not yet executed"),
		eventsRouted: counter("events_routed_total",
			"DOM events synthesized from host events, by type and outcome", "type", "status"),

		connections: gauge("host_connections",
			"Open remote host connections"),
		framesIn: counter("frames_received_total",
			"Frames received from remote hosts, by frame type", "type"),
		framesOut: counter("frames_sent_total",
			"Frames sent to remote hosts, by frame type", "type"),
		bytesOut: counter("bytes_sent_total",
			"Bytes sent to remote hosts").WithLabelValues(),
	}
}

// CommandEnqueued implements dom.Observer.
func (m *Metrics) CommandEnqueued(method dom.Method, _ int) {
	m.commandsEnqueued.WithLabelValues(string(method)).Inc()
	m.queueDepth.Inc()
}

// CommandExecuted implements dom.Observer.
func (m *Metrics) CommandExecuted(method dom.Method, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.commandsExecuted.WithLabelValues(string(method), status).Inc()
	m.commandDuration.WithLabelValues(string(method)).Observe(d.Seconds())
	m.queueDepth.Dec()
}

// EventRouted implements dom.Observer.
func (m *Metrics) EventRouted(eventType string, delivered bool) {
	status := "delivered"
	if !delivered {
		status = "dropped"
	}
	m.eventsRouted.WithLabelValues(eventType, status).Inc()
}

// ConnectionOpened records a new remote host connection.
func (m *Metrics) ConnectionOpened() { m.connections.Inc() }

// ConnectionClosed records a closed remote host connection.
func (m *Metrics) ConnectionClosed() { m.connections.Dec() }

// FrameReceived records an inbound frame.
func (m *Metrics) FrameReceived(frameType string) {
	m.framesIn.WithLabelValues(frameType).Inc()
}

// FrameSent records an outbound frame of n bytes.
func (m *Metrics) FrameSent(frameType string, n int) {
	m.framesOut.WithLabelValues(frameType).Inc()
	m.bytesOut.Add(float64(n))
}
