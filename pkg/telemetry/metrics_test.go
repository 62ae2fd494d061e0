package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/hostdom/pkg/dom"
	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/loop"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	require.True(t, ok, "observer %T does not implement prometheus.Metric", o)
	var m dto.Metric
	require.NoError(t, metric.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestMetrics_Observer(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.CommandEnqueued(dom.MethodCreate, 1)
	m.CommandEnqueued(dom.MethodSetProp, 2)
	assert.Equal(t, 2.0, gaugeValue(t, m.queueDepth))

	m.CommandExecuted(dom.MethodCreate, time.Millisecond, nil)
	m.CommandExecuted(dom.MethodSetProp, time.Millisecond, errors.New("boom"))
	assert.Equal(t, 0.0, gaugeValue(t, m.queueDepth))

	assert.Equal(t, 1.0, counterValue(t, m.commandsEnqueued.WithLabelValues("create")))
	assert.Equal(t, 1.0, counterValue(t, m.commandsExecuted.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, counterValue(t, m.commandsExecuted.WithLabelValues("setProp", "error")))
	assert.Equal(t, uint64(1), histogramCount(t, m.commandDuration.WithLabelValues("setProp")))

	m.EventRouted(dom.EventClick, true)
	m.EventRouted(dom.EventClick, false)
	m.EventRouted(dom.EventClick, false)
	assert.Equal(t, 1.0, counterValue(t, m.eventsRouted.WithLabelValues("Click", "delivered")))
	assert.Equal(t, 2.0, counterValue(t, m.eventsRouted.WithLabelValues("Click", "dropped")))
}

func TestMetrics_Transport(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	assert.Equal(t, 1.0, gaugeValue(t, m.connections))

	m.FrameReceived("Event")
	m.FrameSent("Calls", 10)
	m.FrameSent("Calls", 5)
	assert.Equal(t, 1.0, counterValue(t, m.framesIn.WithLabelValues("Event")))
	assert.Equal(t, 2.0, counterValue(t, m.framesOut.WithLabelValues("Calls")))
	assert.Equal(t, 15.0, counterValue(t, m.bytesOut))
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))
	assert.Panics(t, func() { NewMetrics(WithRegistry(reg)) })
}

func TestMetrics_SessionDrainBalancesQueueDepth(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	sched := loop.NewManual()
	s := dom.NewSession(host.NewMemoryHost(), sched, dom.WithObserver(m))

	doc := s.CreateDocument(1)
	view := doc.CreateElement("view")
	require.NoError(t, view.AppendChild(doc.CreateTextNode("hi")))
	require.NoError(t, doc.AppendChild(view))

	assert.Greater(t, gaugeValue(t, m.queueDepth), 0.0)
	sched.RunUntilIdle(1000)
	assert.Equal(t, 0.0, gaugeValue(t, m.queueDepth))
	assert.Equal(t,
		counterValue(t, m.commandsEnqueued.WithLabelValues("create")),
		counterValue(t, m.commandsExecuted.WithLabelValues("create", "ok")))
}
