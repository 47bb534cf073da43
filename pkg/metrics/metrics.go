// Package metrics exposes session and device activity as Prometheus
// metrics. A *Metrics is a session.Observer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// Namespace prefixes every metric name.
const Namespace = "tsmeter"

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	ActiveSessions *prometheus.GaugeVec
	SessionsTotal  *prometheus.CounterVec
	Operations     *prometheus.CounterVec
	Errors         *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	LastReading    *prometheus.GaugeVec
}

// New creates the collectors on a fresh registry. When withRuntime is set
// the Go runtime and process collectors are registered too.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ActiveSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_sessions",
			Help:      "Number of connected sessions.",
		}, []string{"device_type"}),

		SessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sessions_total",
			Help:      "Sessions opened since start.",
		}, []string{"device_type"}),

		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Device operations by outcome.",
		}, []string{"op", "device_type", "result"}),

		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Failed device operations by error kind.",
		}, []string{"op", "kind"}),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Device operation latency.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op", "device_type"}),

		LastReading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_reading",
			Help:      "Most recent measurement value per session.",
		}, []string{"session_id", "unit"}),
	}

	m.registry.MustRegister(
		m.ActiveSessions,
		m.SessionsTotal,
		m.Operations,
		m.Errors,
		m.Duration,
		m.LastReading,
	)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionOpened counts a new session.
func (m *Metrics) SessionOpened(_ string, deviceType meter.DeviceType) {
	m.ActiveSessions.WithLabelValues(deviceType.String()).Inc()
	m.SessionsTotal.WithLabelValues(deviceType.String()).Inc()
}

// SessionClosed decrements the active gauge and drops the session's
// last reading.
func (m *Metrics) SessionClosed(id string, deviceType meter.DeviceType) {
	m.ActiveSessions.WithLabelValues(deviceType.String()).Dec()
	m.LastReading.DeletePartialMatch(prometheus.Labels{"session_id": id})
}

// OperationDone records the outcome and latency of one device call.
func (m *Metrics) OperationDone(op string, deviceType meter.DeviceType, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		m.Errors.WithLabelValues(op, meter.Kind(err)).Inc()
	}
	m.Operations.WithLabelValues(op, deviceType.String(), result).Inc()
	m.Duration.WithLabelValues(op, deviceType.String()).Observe(elapsed.Seconds())
}

// MeasurementTaken replaces the session's last reading. The unit label
// changes with the meter's function, so the old series is removed first.
func (m *Metrics) MeasurementTaken(id string, _ meter.DeviceType, reading meter.Measurement) {
	m.LastReading.DeletePartialMatch(prometheus.Labels{"session_id": id})
	m.LastReading.WithLabelValues(id, reading.Unit.String()).Set(reading.Value)
}
