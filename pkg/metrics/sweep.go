package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics records runs of the stale-order archive sweep.
type SweepMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	archived prometheus.Counter
}

// NewSweepMetrics registers the sweep metrics on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of maintenance sweeps in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"sweep"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_success_total",
		Help:      "Successful maintenance sweeps.",
	}, []string{"sweep"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_failure_total",
		Help:      "Failed maintenance sweeps.",
	}, []string{"sweep"})
	archived := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_archived_total",
		Help:      "Orders flagged archived by the stale-order sweep.",
	})
	reg.MustRegister(duration, success, failure, archived)
	return &SweepMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		archived: archived,
	}
}

// ObserveDuration records the duration for the named sweep.
func (s *SweepMetrics) ObserveDuration(sweep string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(sweep)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter and adds the archived row count.
func (s *SweepMetrics) IncSuccess(sweep string, archived int64) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(sweep)).Inc()
	if archived > 0 {
		s.archived.Add(float64(archived))
	}
}

// IncFailure increments the failure counter for the named sweep.
func (s *SweepMetrics) IncFailure(sweep string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(sweep)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
