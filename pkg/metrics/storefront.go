package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart and filter activity.
type StorefrontMetrics struct {
	cartMutations   *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	filterDuration  prometheus.Histogram
	filterResults   prometheus.Histogram
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart writes to durable storage that failed, by operation.",
	}, []string{"op"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_filter_duration_seconds",
		Help:    "Time spent filtering and sorting the product grid.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
	results := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_filter_results",
		Help:    "Number of products returned by a filter pass.",
		Buckets: prometheus.LinearBuckets(0, 10, 10),
	})
	reg.MustRegister(mutations, failures, duration, results)
	return &StorefrontMetrics{
		cartMutations:   mutations,
		persistFailures: failures,
		filterDuration:  duration,
		filterResults:   results,
	}
}

// IncCartMutation counts one applied cart operation.
func (m *StorefrontMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncPersistFailure counts one failed cart write.
func (m *StorefrontMetrics) IncPersistFailure(op string) {
	if m == nil || m.persistFailures == nil {
		return
	}
	m.persistFailures.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveFilter records a filter pass.
func (m *StorefrontMetrics) ObserveFilter(duration time.Duration, results int) {
	if m == nil || m.filterDuration == nil {
		return
	}
	m.filterDuration.Observe(duration.Seconds())
	m.filterResults.Observe(float64(results))
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
