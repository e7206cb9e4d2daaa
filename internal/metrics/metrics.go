package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_total",
			Help: "Checkout attempts by result",
		},
		[]string{"result"},
	)

	checkoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Duration of checkout transactions",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	stockAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_stock_adjustments_total",
			Help: "Stock changes recorded in the inventory ledger",
		},
		[]string{"type"},
	)

	lowStockAlerts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_low_stock_alerts_total",
			Help: "Products observed at or below their minimum stock level",
		},
	)

	operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_operations_total",
			Help: "Total number of storefront operations",
		},
		[]string{"operation", "status"},
	)
)

// RecordCheckout counts a checkout under its result label ("success", "empty_cart", ...).
func RecordCheckout(result string, seconds float64) {
	checkoutsTotal.WithLabelValues(result).Inc()
	checkoutDuration.Observe(seconds)
}

func RecordStockAdjustment(txnType string) {
	stockAdjustments.WithLabelValues(txnType).Inc()
}

func RecordLowStockAlert() {
	lowStockAlerts.Inc()
}

func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	operations.WithLabelValues(operation, status).Inc()
}
