package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SyncMetrics counts order sync outcomes. It satisfies the sync service's
// recorder interface.
type SyncMetrics struct {
	registry *prometheus.Registry
	attempts prometheus.Counter
	success  prometheus.Counter
	failures *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// NewSyncMetrics creates and registers the sync counters on a fresh
// registry.
func NewSyncMetrics() *SyncMetrics {
	registry := prometheus.NewRegistry()

	m := &SyncMetrics{
		registry: registry,
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keycrm_sync_attempts_total",
			Help: "Sync attempts that passed the eligibility gate.",
		}),
		success: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keycrm_sync_success_total",
			Help: "Orders delivered to KeyCRM.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keycrm_sync_failures_total",
			Help: "Failed sync attempts by failure kind.",
		}, []string{"reason"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keycrm_sync_skipped_total",
			Help: "Triggers that ended without a delivery attempt.",
		}, []string{"reason"}),
	}

	registry.MustRegister(m.attempts, m.success, m.failures, m.skipped)
	return m
}

func (m *SyncMetrics) RecordAttempt() { m.attempts.Inc() }

func (m *SyncMetrics) RecordSuccess() { m.success.Inc() }

func (m *SyncMetrics) RecordFailure(reason string) { m.failures.WithLabelValues(reason).Inc() }

func (m *SyncMetrics) RecordSkip(reason string) { m.skipped.WithLabelValues(reason).Inc() }

// Handler exposes the registry in Prometheus text format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
