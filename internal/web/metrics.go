package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the counters exposed at /metrics. Each Metrics owns
// its own registry so multiple instances can coexist in tests.
type Metrics struct {
	registry       *prometheus.Registry
	queueBuilds    *prometheus.CounterVec
	buildSeconds   prometheus.Histogram
	plays          prometheus.Counter
	playFailures   prometheus.Counter
	activeSessions prometheus.Gauge
}

// NewMetrics creates and registers the full metric set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queueBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minutemix_queue_builds_total",
				Help: "Total number of queues built, by selection mode",
			},
			[]string{"mode"},
		),
		buildSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "minutemix_queue_build_duration_seconds",
				Help:    "Time spent fetching tracks and building a queue",
				Buckets: prometheus.DefBuckets,
			},
		),
		plays: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "minutemix_plays_total",
				Help: "Total number of queues handed to a playback device",
			},
		),
		playFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "minutemix_play_failures_total",
				Help: "Total number of playback attempts that failed",
			},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "minutemix_active_sessions",
				Help: "Number of logged-in sessions",
			},
		),
	}

	m.registry.MustRegister(
		m.queueBuilds,
		m.buildSeconds,
		m.plays,
		m.playFailures,
		m.activeSessions,
	)

	return m
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordBuild counts one queue build and observes its latency.
func (m *Metrics) RecordBuild(mode string, elapsed time.Duration) {
	m.queueBuilds.WithLabelValues(mode).Inc()
	m.buildSeconds.Observe(elapsed.Seconds())
}

// RecordPlay counts one successful playback handoff.
func (m *Metrics) RecordPlay() {
	m.plays.Inc()
}

// RecordPlayFailure counts one failed playback attempt.
func (m *Metrics) RecordPlayFailure() {
	m.playFailures.Inc()
}

// SessionOpened tracks a new login.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed tracks a logout or purged session.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}
