package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Logins                 *prometheus.CounterVec
	RecordsCreated         *prometheus.CounterVec
	RecordsUpdated         *prometheus.CounterVec
	RecordsDeleted         *prometheus.CounterVec
	RecomputeEnqueueFailed prometheus.Counter
	BroadcastFailed        prometheus.Counter
	PrincipalsDeactivated  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulseboard_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		RecordsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulseboard_records_created_total",
			Help: "Sector records created.",
		}, []string{"sector"}),
		RecordsUpdated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulseboard_records_updated_total",
			Help: "Sector records updated.",
		}, []string{"sector"}),
		RecordsDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulseboard_records_deleted_total",
			Help: "Sector records deleted.",
		}, []string{"sector"}),
		RecomputeEnqueueFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulseboard_recompute_enqueue_failures_total",
			Help: "Recompute job enqueue attempts that failed (swallowed).",
		}),
		BroadcastFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulseboard_kpi_broadcast_failures_total",
			Help: "KPI update broadcasts that failed (swallowed).",
		}),
		PrincipalsDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulseboard_principals_deactivated_total",
			Help: "Principals soft-deleted by a director.",
		}),
	}
}

// IncrementLogin records a login attempt outcome ("success" or "failure").
func (m *Metrics) IncrementLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// IncrementCreated records a successful record creation for a sector.
func (m *Metrics) IncrementCreated(sector string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(sector).Inc()
}

// IncrementUpdated records a successful record update for a sector.
func (m *Metrics) IncrementUpdated(sector string) {
	if m == nil {
		return
	}
	m.RecordsUpdated.WithLabelValues(sector).Inc()
}

// IncrementDeleted records a successful record deletion for a sector.
func (m *Metrics) IncrementDeleted(sector string) {
	if m == nil {
		return
	}
	m.RecordsDeleted.WithLabelValues(sector).Inc()
}

// IncrementEnqueueFailed counts a swallowed recompute enqueue failure.
func (m *Metrics) IncrementEnqueueFailed() {
	if m == nil {
		return
	}
	m.RecomputeEnqueueFailed.Inc()
}

// IncrementBroadcastFailed counts a swallowed KPI broadcast failure.
func (m *Metrics) IncrementBroadcastFailed() {
	if m == nil {
		return
	}
	m.BroadcastFailed.Inc()
}

// IncrementDeactivated counts a principal deactivation.
func (m *Metrics) IncrementDeactivated() {
	if m == nil {
		return
	}
	m.PrincipalsDeactivated.Inc()
}
