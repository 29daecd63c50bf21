package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "stayora", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stayora", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	PlanExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "stayora", Name: "plan_executions_total", Help: "Mutation plan outcomes."},
		[]string{"plan", "outcome"}, // outcome: ok|rollback
	)
	LifecycleEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "stayora", Name: "lifecycle_events_total", Help: "Published lifecycle events."},
		[]string{"kind", "outcome"}, // outcome: published|dropped
	)
)

// InitRegistry registers all collectors on a fresh registry. Using a
// private registry keeps test binaries from tripping over duplicate
// registration.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, PlanExecutions, LifecycleEvents)
	return reg
}
