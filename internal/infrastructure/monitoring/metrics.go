package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prepare results
const (
	PrepareCompiled = "compiled"
	PrepareCached   = "cached"
	PrepareError    = "error"
)

// Init outcomes
const (
	OutcomeSuspended = "suspended"
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Metrics holds all Prometheus metrics.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Sandbox metrics
	PrepareTotal *prometheus.CounterVec

	// Bridge metrics
	InitTotal    *prometheus.CounterVec
	InitDuration *prometheus.HistogramVec
	LoadTotal    *prometheus.CounterVec
	BridgesReady prometheus.Gauge
}

// NewMetrics creates a metrics collector registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PrepareTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terp_sandbox_prepare_total",
				Help: "Total number of sandbox preparations by result",
			},
			[]string{"result"},
		),
		InitTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terp_bridge_init_total",
				Help: "Total number of bridge initializations by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		InitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "terp_bridge_init_duration_seconds",
				Help:    "Bridge initialization duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"mode"},
		),
		LoadTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terp_bridge_load_total",
				Help: "Total number of project loads by status",
			},
			[]string{"status"},
		),
		BridgesReady: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "terp_bridges_ready",
				Help: "Number of bridges holding a loader",
			},
		),
	}
}

// RecordPrepare records a sandbox preparation
func (m *Metrics) RecordPrepare(result string) {
	if m == nil {
		return
	}
	m.PrepareTotal.WithLabelValues(result).Inc()
}

// RecordInit records a bridge initialization
func (m *Metrics) RecordInit(mode, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.InitTotal.WithLabelValues(mode, outcome).Inc()
	m.InitDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordLoad records a project load
func (m *Metrics) RecordLoad(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.LoadTotal.WithLabelValues(status).Inc()
}

// IncBridgesReady increments the ready bridges gauge
func (m *Metrics) IncBridgesReady() {
	if m == nil {
		return
	}
	m.BridgesReady.Inc()
}

// DecBridgesReady decrements the ready bridges gauge
func (m *Metrics) DecBridgesReady() {
	if m == nil {
		return
	}
	m.BridgesReady.Dec()
}

// Timer measures operation duration
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
