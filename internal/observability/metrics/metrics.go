package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tweeter_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	operationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_operation_errors_total",
		Help: "Failed operations by error kind",
	}, []string{"kind"})

	engagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_engagement_events_total",
		Help: "Successful social actions such as tweet, reply, like and follow",
	}, []string{"action"})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveOperationError counts a failed operation by its error kind.
func ObserveOperationError(kind string) {
	operationErrors.WithLabelValues(kind).Inc()
}

func ObserveEngagement(action string) {
	engagementEvents.WithLabelValues(action).Inc()
}
