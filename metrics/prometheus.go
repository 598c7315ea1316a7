package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports authorize counters and latency histograms.
type PrometheusRecorder struct {
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder and registers its collectors on
// the given registerer. Pass prometheus.DefaultRegisterer for the default.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tollgate",
			Name:      "authorize_total",
			Help:      "Gatekeeping decisions by rail and outcome",
		},
		[]string{"rail", "outcome"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tollgate",
			Name:      "authorize_duration_seconds",
			Help:      "Authorize call latency by rail",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"rail"},
	)

	reg.MustRegister(decisions, duration)
	return &PrometheusRecorder{decisions: decisions, duration: duration}
}

func (r *PrometheusRecorder) RecordAuthorize(rail, outcome string, d time.Duration) {
	r.decisions.WithLabelValues(rail, outcome).Inc()
	r.duration.WithLabelValues(rail).Observe(d.Seconds())
}

var _ Recorder = (*PrometheusRecorder)(nil)
