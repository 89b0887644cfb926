package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutation and reconciliation outcomes.
type CartMetrics struct {
	duration   *prometheus.HistogramVec
	mutations  *prometheus.CounterVec
	staleLines prometheus.Counter
	rejections *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_op_duration_seconds",
		Help:    "Duration of cart operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Successful cart mutations.",
	}, []string{"op"})
	staleLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_stale_lines_total",
		Help: "Cart lines flagged stale during reconciliation.",
	})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_rejections_total",
		Help: "Cart mutations rejected by validation, by error code.",
	}, []string{"code"})
	reg.MustRegister(duration, mutations, staleLines, rejections)
	return &CartMetrics{
		duration:   duration,
		mutations:  mutations,
		staleLines: staleLines,
		rejections: rejections,
	}
}

// ObserveDuration records the duration for the named operation.
func (c *CartMetrics) ObserveDuration(op string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncMutation increments the mutation counter for the named operation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// AddStaleLines counts lines demoted to stale in a reconciliation pass.
func (c *CartMetrics) AddStaleLines(n int) {
	if c == nil || c.staleLines == nil || n <= 0 {
		return
	}
	c.staleLines.Add(float64(n))
}

// IncRejection increments the rejection counter for the given error code.
func (c *CartMetrics) IncRejection(code string) {
	if c == nil || c.rejections == nil {
		return
	}
	c.rejections.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
