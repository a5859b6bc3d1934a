package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Product run outcomes.
const (
	OutcomeSuccess = "successful"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// PricingMetrics records per-product pricing run outcomes.
type PricingMetrics struct {
	duration *prometheus.HistogramVec
	products *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_product_duration_seconds",
		Help:    "Duration of per-product pricing runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	products := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_products_total",
		Help: "Products processed by the pricing pipeline, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, products)
	return &PricingMetrics{duration: duration, products: products}
}

// RecordProduct records one processed product.
func (m *PricingMetrics) RecordProduct(outcome string, duration time.Duration) {
	if m == nil || m.products == nil {
		return
	}
	label := normalizeOutcome(outcome)
	m.products.WithLabelValues(label).Inc()
	m.duration.WithLabelValues(label).Observe(duration.Seconds())
}

func normalizeOutcome(outcome string) string {
	switch outcome {
	case OutcomeSuccess, OutcomeFailed, OutcomeSkipped:
		return outcome
	default:
		return "unknown"
	}
}
