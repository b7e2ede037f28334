package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the enhancement service.
type Metrics struct {
	RequestTotal      *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	RateLimitTotal    *prometheus.CounterVec
	CacheOpsTotal     *prometheus.CounterVec
	BackendCallTotal  *prometheus.CounterVec
	BackendCallMs     *prometheus.HistogramVec
	TaskTransitions   *prometheus.CounterVec
	TaskQueueDepth    prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prism_enhance_request_total",
			Help: "Total number of enhancement requests processed.",
		}, []string{"style", "tone", "method", "status"}),

		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prism_enhance_request_duration_ms",
			Help:    "Enhancement request duration in milliseconds (including backend latency).",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000, 60000},
		}, []string{"method"}),

		RateLimitTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prism_rate_limit_rejections_total",
			Help: "Total requests rejected by the sliding-window rate limiter.",
		}, []string{"tier"}),

		CacheOpsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prism_enhance_cache_ops_total",
			Help: "Enhancement cache lookups by result.",
		}, []string{"result"}),

		BackendCallTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prism_backend_call_total",
			Help: "Generative backend calls by outcome.",
		}, []string{"backend", "outcome"}),

		BackendCallMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prism_backend_call_duration_ms",
			Help:    "Generative backend call duration in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
		}, []string{"backend"}),

		TaskTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prism_task_transitions_total",
			Help: "Async task state transitions.",
		}, []string{"status"}),

		TaskQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "prism_task_queue_depth",
			Help: "Number of async tasks waiting for a worker.",
		}),
	}
}

// RecordRequest records metrics for a completed enhancement request.
func (m *Metrics) RecordRequest(labels RequestLabels) {
	m.RequestTotal.WithLabelValues(
		labels.Style, labels.Tone, labels.Method, labels.Status,
	).Inc()

	m.RequestDurationMs.WithLabelValues(labels.Method).Observe(labels.DurationMs)
}

// RecordRateLimitHit records a rejected admission for the caller tier.
func (m *Metrics) RecordRateLimitHit(tier string) {
	m.RateLimitTotal.WithLabelValues(tier).Inc()
}

// RecordCacheOp records one cache lookup result: hit, miss or error.
func (m *Metrics) RecordCacheOp(result string) {
	m.CacheOpsTotal.WithLabelValues(result).Inc()
}

// RecordBackendCall records one generative call: ok, rejected (output failed
// acceptance) or error.
func (m *Metrics) RecordBackendCall(backend, outcome string, durationMs float64) {
	m.BackendCallTotal.WithLabelValues(backend, outcome).Inc()
	m.BackendCallMs.WithLabelValues(backend).Observe(durationMs)
}

// RecordTaskTransition records a task entering the given state.
func (m *Metrics) RecordTaskTransition(status string) {
	m.TaskTransitions.WithLabelValues(status).Inc()
}

// SetTaskQueueDepth reports how many submitted tasks are awaiting a worker.
func (m *Metrics) SetTaskQueueDepth(depth int) {
	m.TaskQueueDepth.Set(float64(depth))
}

// RequestLabels holds the label values for recording a request.
type RequestLabels struct {
	Style      string
	Tone       string
	Method     string
	Status     string
	DurationMs float64
}
