// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration is a histogram for HTTP request latencies
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of response latency (seconds) of HTTP requests handled by the server.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"route", "code"},
	)

	// RequestBatchSize is a histogram for tracking input batch sizes
	RequestBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "request_batch_size",
			Help:    "Histogram of input batch sizes for predict and certify requests.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		},
	)

	// SmoothingLatencySeconds is a histogram for smoothing-only latency
	SmoothingLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smoothing_latency_seconds",
			Help:    "Histogram of smoothing computation latency (seconds) excluding HTTP overhead.",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// SmoothingSampleCount is a histogram of noise draws per input
	SmoothingSampleCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smoothing_sample_count",
			Help:    "Histogram of Monte-Carlo noise draws used per input.",
			Buckets: prometheus.ExponentialBuckets(16, 2, 10),
		},
	)

	// PredictionsAbstained counts smoothed predictions that abstained
	PredictionsAbstained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "predictions_abstained_total",
			Help: "Total number of smoothed predictions that abstained.",
		},
	)

	// CertifiedRadius is a histogram of certified l2 radii (certified inputs only)
	CertifiedRadius = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "certified_radius",
			Help:    "Histogram of certified l2 radii for inputs that received a certificate.",
			Buckets: prometheus.LinearBuckets(0, 0.25, 12),
		},
	)

	// HealthStatus is a gauge indicating the health status of the service
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_status",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy).",
		},
	)
)

// RecordHTTPLatency records the latency of an HTTP request
func RecordHTTPLatency(route, code string, seconds float64) {
	HTTPRequestDuration.WithLabelValues(route, code).Observe(seconds)
}

// RecordBatchSize records the input batch size of a request
func RecordBatchSize(size int) {
	RequestBatchSize.Observe(float64(size))
}

// RecordSmoothingLatency records the latency of a smoothing computation
func RecordSmoothingLatency(seconds float64) {
	SmoothingLatencySeconds.Observe(seconds)
}

// RecordSampleCount records the number of noise draws used for one input
func RecordSampleCount(n int) {
	SmoothingSampleCount.Observe(float64(n))
}

// AddAbstentions adds to the abstention counter
func AddAbstentions(n int) {
	PredictionsAbstained.Add(float64(n))
}

// ObserveCertifiedRadius records a certified radius
func ObserveCertifiedRadius(r float64) {
	CertifiedRadius.Observe(r)
}

// SetHealthy sets the health status to healthy
func SetHealthy() {
	HealthStatus.Set(1)
}

// SetUnhealthy sets the health status to unhealthy
func SetUnhealthy() {
	HealthStatus.Set(0)
}
