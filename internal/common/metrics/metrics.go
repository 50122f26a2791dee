package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_requests_total",
			Help: "Total number of pipeline requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_request_duration_seconds",
			Help: "Duration of pipeline request handling in seconds",
		},
		[]string{"operation"},
	)

	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_upstream_attempts_total",
			Help: "Total attempts against the text-generation endpoint by result",
		},
		[]string{"result"},
	)

	FallbackActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_fallback_activations_total",
			Help: "Times the deterministic fallback replaced an absent model field",
		},
		[]string{"field"},
	)
)
