package mapper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts leaf outcomes and times store calls per operator.
type Metrics struct {
	leavesTotal      *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec
}

// NewMetrics registers the mapper metrics with registerer, or with the
// default registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		leavesTotal: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "dj_transfer_leaves_total",
			Help: "Number of transfer field leaves processed, by operator and outcome",
		}, []string{"operator", "outcome"}),
		transferDuration: promauto.With(registerer).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dj_transfer_duration_seconds",
			Help:    "Duration of object store calls made for a leaf",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		}, []string{"operator", "outcome"}),
	}
}

func (m *Metrics) observe(operator string, o Outcome) {
	if m == nil {
		return
	}
	m.leavesTotal.WithLabelValues(operator, o.String()).Inc()
}

func (m *Metrics) observeTransfer(operator string, o Outcome, start time.Time) {
	if m == nil {
		return
	}
	m.transferDuration.WithLabelValues(operator, o.String()).Observe(time.Since(start).Seconds())
}
