// Package metrics defines the Prometheus collectors exported by the server.
// Every recording method is safe to call on a nil *Metrics, which records
// nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes used as label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"

	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationDropped = "dropped"
)

// Metrics contains custom Prometheus metrics for credvault.
type Metrics struct {
	AuthOperations  *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	PurgedTokens    prometheus.Counter
	DatabaseHealthy prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credvault_auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credvault_notifications_total",
				Help: "Total number of password reset notifications by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credvault_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credvault_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		PurgedTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credvault_reset_tokens_purged_total",
			Help: "Total number of expired reset tokens deleted by the janitor",
		}),
		DatabaseHealthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credvault_database_healthy",
			Help: "1 when the last database ping succeeded, 0 otherwise",
		}),
	}

	reg.MustRegister(m.AuthOperations)
	reg.MustRegister(m.Notifications)
	reg.MustRegister(m.HTTPRequests)
	reg.MustRegister(m.HTTPDuration)
	reg.MustRegister(m.PurgedTokens)
	reg.MustRegister(m.DatabaseHealthy)

	return m
}

// NewWithRegistry creates a private registry carrying the Go and process
// collectors plus the credvault metrics. Handler serves that registry.
func NewWithRegistry() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := New(registry)
	m.gatherer = registry
	return m
}

// Handler exposes the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// AuthOperation counts one auth operation.
func (m *Metrics) AuthOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthOperations.WithLabelValues(operation, outcome).Inc()
}

// Notification counts one notification outcome.
func (m *Metrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(outcome).Inc()
}

// HTTPRequest records a served request.
func (m *Metrics) HTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// TokensPurged adds n to the purge counter.
func (m *Metrics) TokensPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.PurgedTokens.Add(float64(n))
}

// SetDatabaseHealthy records the outcome of the last database ping.
func (m *Metrics) SetDatabaseHealthy(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.DatabaseHealthy.Set(1)
	} else {
		m.DatabaseHealthy.Set(0)
	}
}
