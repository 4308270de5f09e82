package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the order and payment pipeline.
type CheckoutMetrics struct {
	ordersCreated  prometheus.Counter
	payments       *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	cartSaveErrors prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created through checkout.",
	})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_results_total",
		Help: "Payment callback outcomes by result.",
	}, []string{"result"})
	gatewayLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Latency of payment gateway calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	cartSaveErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_save_failures_total",
		Help: "Cart snapshot writes that failed.",
	})
	reg.MustRegister(ordersCreated, payments, gatewayLatency, cartSaveErrors)
	return &CheckoutMetrics{
		ordersCreated:  ordersCreated,
		payments:       payments,
		gatewayLatency: gatewayLatency,
		cartSaveErrors: cartSaveErrors,
	}
}

// IncOrderCreated increments the created-orders counter.
func (m *CheckoutMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncPaymentResult records a payment outcome ("verified", "failed", "rejected").
func (m *CheckoutMetrics) IncPaymentResult(result string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveGatewayLatency records the duration of a gateway call.
func (m *CheckoutMetrics) ObserveGatewayLatency(operation string, duration time.Duration) {
	if m == nil || m.gatewayLatency == nil {
		return
	}
	m.gatewayLatency.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncCartSaveFailure increments the cart snapshot failure counter.
func (m *CheckoutMetrics) IncCartSaveFailure() {
	if m == nil || m.cartSaveErrors == nil {
		return
	}
	m.cartSaveErrors.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
