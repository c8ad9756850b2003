package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_http_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// UpstreamRequests counts provider calls by outcome (ok, error).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_upstream_requests_total",
		Help: "Total calls made to the upstream provider.",
	}, []string{"provider", "outcome"})

	// UpstreamDuration tracks provider call latency.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_upstream_duration_seconds",
		Help:    "Time spent waiting on the upstream provider.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	// UpstreamInFlight is the number of provider calls currently outstanding.
	UpstreamInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chat_upstream_in_flight",
		Help: "Upstream provider calls in progress.",
	}, []string{"provider"})
)
