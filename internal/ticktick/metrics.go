package ticktick

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transport metrics, registered on the default Prometheus registry and
// exposed by the metrics server.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticktick",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "API requests by method and response status.",
	}, []string{"method", "status"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticktick",
		Subsystem: "api",
		Name:      "retries_total",
		Help:      "Transport-level retries by triggering status code.",
	}, []string{"status"})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticktick",
		Subsystem: "api",
		Name:      "token_refresh_total",
		Help:      "Access token refresh attempts by outcome.",
	}, []string{"outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ticktick",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "API request latency by method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)
