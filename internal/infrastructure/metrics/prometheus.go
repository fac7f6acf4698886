package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	// Poll metrics
	pollCycles         prometheus.Counter
	pollCoalesced      prometheus.Counter
	pollFailures       prometheus.Counter
	pollDuration       prometheus.Histogram
	watermarkRollbacks prometheus.Counter
}

// NewPrometheusExporter creates a new Prometheus exporter registered on reg.
// Pass prometheus.DefaultRegisterer in production.
func NewPrometheusExporter(reg prometheus.Registerer) *PrometheusExporter {
	factory := promauto.With(reg)

	return &PrometheusExporter{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tomodachi_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tomodachi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tomodachi_http_errors_total",
			Help: "Total number of HTTP responses with status >= 400",
		}, []string{"method", "path"}),
		pollCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "tomodachi_poll_cycles_total",
			Help: "Total number of activity poll cycles executed",
		}),
		pollCoalesced: factory.NewCounter(prometheus.CounterOpts{
			Name: "tomodachi_poll_cycles_coalesced_total",
			Help: "Total number of poll ticks skipped because a cycle was in flight",
		}),
		pollFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tomodachi_poll_cycles_failed_total",
			Help: "Total number of poll cycles that ended in a transport error",
		}),
		pollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tomodachi_poll_cycle_duration_seconds",
			Help:    "Activity poll cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		watermarkRollbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "tomodachi_watermark_rollbacks_total",
			Help: "Total number of optimistic clears reverted after a failed watermark advance",
		}),
	}
}

// RecordRequest records an HTTP request.
func (e *PrometheusExporter) RecordRequest(method, path string) {
	e.httpRequests.WithLabelValues(method, path).Inc()
}

// RecordDuration records the duration of an HTTP request in seconds.
func (e *PrometheusExporter) RecordDuration(method, path string, durationSeconds float64) {
	e.httpDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

// RecordError records an HTTP error response.
func (e *PrometheusExporter) RecordError(method, path string) {
	e.httpErrors.WithLabelValues(method, path).Inc()
}

// RecordPollCycle records one executed poll cycle and its duration.
func (e *PrometheusExporter) RecordPollCycle(durationSeconds float64) {
	e.pollCycles.Inc()
	e.pollDuration.Observe(durationSeconds)
}

// RecordPollCoalesced records a tick skipped due to an in-flight cycle.
func (e *PrometheusExporter) RecordPollCoalesced() {
	e.pollCoalesced.Inc()
}

// RecordPollFailure records a poll cycle that failed.
func (e *PrometheusExporter) RecordPollFailure() {
	e.pollFailures.Inc()
}

// RecordWatermarkRollback records an optimistic clear that had to be reverted.
func (e *PrometheusExporter) RecordWatermarkRollback() {
	e.watermarkRollbacks.Inc()
}
