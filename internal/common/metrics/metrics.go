// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InferenceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Total number of inference calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	InferenceRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_retries_total",
			Help: "Total number of inference retries by endpoint and reason",
		},
		[]string{"endpoint", "reason"},
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "inference_request_duration_seconds",
			Help: "Duration of inference calls in seconds, including retries",
		},
		[]string{"endpoint"},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of analysis requests by status",
		},
		[]string{"status"},
	)

	AnalysesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyses_active",
			Help: "Number of analysis requests currently in flight",
		},
	)
)
