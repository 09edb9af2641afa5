package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes gateway call counters and latencies.
type Metrics struct {
	requestsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewMetrics builds and registers the gateway metrics. Pass
// prometheus.DefaultRegisterer unless the caller manages its own registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sagepay_requests_total",
			Help: "Total count of gateway requests by transaction type and outcome status.",
		}, []string{"tx_type", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sagepay_request_duration_seconds",
			Help:    "Histogram of gateway request durations by transaction type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tx_type"}),
	}

	reg.MustRegister(m.requestsTotal, m.duration)

	return m
}

func (m *Metrics) observe(tx TxType, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(string(tx), status).Inc()
	m.duration.WithLabelValues(string(tx)).Observe(elapsed.Seconds())
}
