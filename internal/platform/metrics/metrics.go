package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the service. A nil *Metrics is
// valid everywhere; the helper methods no-op so unit tests can skip wiring.
type Metrics struct {
	DeclarationsCreated prometheus.Counter
	TransitionsTotal    *prometheus.CounterVec
	SafetyOverrides     *prometheus.CounterVec
	AuditFailures       prometheus.Counter
	HTTPDuration        *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		DeclarationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcycle_declarations_created_total",
			Help: "Total number of medicine declarations accepted.",
		}),
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medcycle_status_transitions_total",
			Help: "Workflow transitions applied, labeled by resulting status.",
		}, []string{"to_status"}),
		SafetyOverrides: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medcycle_safety_overrides_total",
			Help: "Regulatory decisions forcibly rejected by a safety rule.",
		}, []string{"reason"}),
		AuditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medcycle_audit_append_failures_total",
			Help: "Audit events that could not be persisted.",
		}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medcycle_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (m *Metrics) IncDeclarations() {
	if m == nil {
		return
	}
	m.DeclarationsCreated.Inc()
}

func (m *Metrics) IncTransition(toStatus string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(toStatus).Inc()
}

func (m *Metrics) IncOverride(reason string) {
	if m == nil {
		return
	}
	m.SafetyOverrides.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncAuditFailure() {
	if m == nil {
		return
	}
	m.AuditFailures.Inc()
}

func (m *Metrics) ObserveHTTP(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(route, method, status).Observe(seconds)
}
