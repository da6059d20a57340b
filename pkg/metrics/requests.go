package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics records API request latency and outcomes per operation.
type RequestMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewRequestMetrics registers the request metrics under foodbank_<subsystem>_*.
// A nil registerer yields a no-op recorder.
func NewRequestMetrics(reg prometheus.Registerer, subsystem string) *RequestMetrics {
	if reg == nil {
		return &RequestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "foodbank",
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Duration of API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodbank",
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "API requests by operation and outcome.",
	}, []string{"op", "outcome"})
	reg.MustRegister(duration, total)
	return &RequestMetrics{
		duration: duration,
		total:    total,
	}
}

// Observe records one finished request.
func (m *RequestMetrics) Observe(op, outcome string, elapsed time.Duration) {
	if m == nil || m.duration == nil || m.total == nil {
		return
	}
	op = normalizeLabel(op)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.total.WithLabelValues(op, normalizeLabel(outcome)).Inc()
}

// FamilySummary is a compact view of one gathered metric family.
type FamilySummary struct {
	Name    string
	Samples int
}

// Summarize gathers g and returns one summary per family, sorted by name.
func Summarize(g prometheus.Gatherer) ([]FamilySummary, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, err
	}
	out := make([]FamilySummary, 0, len(mfs))
	for _, mf := range mfs {
		out = append(out, FamilySummary{Name: mf.GetName(), Samples: len(mf.GetMetric())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
