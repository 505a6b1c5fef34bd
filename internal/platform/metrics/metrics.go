package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated         prometheus.Counter
	RegistrationFailures *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all metrics against reg. Production wiring
// passes prometheus.DefaultRegisterer; tests pass a fresh registry so
// parallel suites don't collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "enroll_users_created_total",
			Help: "Total number of users created in the system",
		}),
		RegistrationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_registration_failures_total",
			Help: "Total number of rejected registrations by reason",
		}, []string{"reason"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enroll_http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// IncrementRegistrationFailure counts one rejected registration. Reason is
// the error code ("validation_failed", "conflict", "internal_error", ...).
func (m *Metrics) IncrementRegistrationFailure(reason string) {
	if m == nil {
		return
	}
	m.RegistrationFailures.WithLabelValues(reason).Inc()
}

// ObserveRequest records one request's latency.
func (m *Metrics) ObserveRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}
