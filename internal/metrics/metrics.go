// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckIns counts successful check-ins.
	CheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "workforce",
		Subsystem: "attendance",
		Name:      "checkins_total",
		Help:      "Total number of successful check-ins.",
	})

	// CheckOuts counts successful check-outs.
	CheckOuts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "workforce",
		Subsystem: "attendance",
		Name:      "checkouts_total",
		Help:      "Total number of successful check-outs.",
	})

	// HTTPRequests counts requests by method, route, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workforce",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests partitioned by method, route, and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workforce",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Histogram of HTTP request latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
