package astrora

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects solver statistics. A nil *Metrics records nothing.
type Metrics struct {
	solves        *prometheus.CounterVec
	iterations    *prometheus.HistogramVec
	batchDuration *prometheus.HistogramVec
	batchSize     *prometheus.CounterVec
}

// NewMetrics creates the solver metrics and registers them with reg, which defaults to
// prometheus.DefaultRegisterer when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lambert_solves_total",
				Help: "Lambert problems solved, by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		iterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lambert_iterations",
				Help:    "Iterations spent per Lambert problem",
				Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 15, 20, 30, 50, 100},
			},
			[]string{"method"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lambert_batch_duration_seconds",
				Help:    "Time spent solving a batch",
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 12),
			},
			[]string{"mode"},
		),
		batchSize: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lambert_batch_entries_total",
				Help: "Entries submitted through the batch layer",
			},
			[]string{"mode"},
		),
	}
	for _, c := range []prometheus.Collector{m.solves, m.iterations, m.batchDuration, m.batchSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeSolve(method string, iterations int, err error) {
	if m == nil {
		return
	}
	m.solves.WithLabelValues(method, errorKind(err)).Inc()
	if iterations > 0 {
		m.iterations.WithLabelValues(method).Observe(float64(iterations))
	}
}

func (m *Metrics) observeBatch(mode string, entries int, duration time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.batchSize.WithLabelValues(mode).Add(float64(entries))
}
