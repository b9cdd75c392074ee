package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkerMetrics records metadata for the outbox dispatch loop.
type WorkerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewWorkerMetrics registers the worker metrics on the provided registerer.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		return &WorkerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox dispatch batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"consumer"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox events dispatched successfully.",
	}, []string{"consumer"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed",
		Help: "Outbox events that failed dispatch.",
	}, []string{"consumer"})
	reg.MustRegister(duration, success, failure)
	return &WorkerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveBatch records the duration for one dispatch batch.
func (w *WorkerMetrics) ObserveBatch(consumer string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(consumer)).Observe(duration.Seconds())
}

// IncPublished increments the published counter for the named consumer.
func (w *WorkerMetrics) IncPublished(consumer string) {
	if w == nil || w.success == nil {
		return
	}
	w.success.WithLabelValues(normalizeLabel(consumer)).Inc()
}

// IncFailed increments the failure counter for the named consumer.
func (w *WorkerMetrics) IncFailed(consumer string) {
	if w == nil || w.failure == nil {
		return
	}
	w.failure.WithLabelValues(normalizeLabel(consumer)).Inc()
}
