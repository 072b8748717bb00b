// Package observability exposes Prometheus metrics for the payment
// lifecycle plus the health and metrics HTTP endpoints.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_total",
		Help: "Total number of payment processing attempts",
	}, []string{
		"payment_method", // credit_card, debit, pix, boleto
		"status",         // approved, declined, pending, failed
	})

	paymentAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_amount_total",
		Help: "Total processed payment amount by method and currency",
	}, []string{
		"payment_method",
		"currency",
	})

	paymentProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_processing_duration_seconds",
		Help:    "End-to-end payment processing time",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"payment_method",
		"status",
	})

	rateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_rate_limit_rejections_total",
		Help: "Requests rejected by the per-customer rate limiter",
	})

	duplicateTransactions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_duplicate_transactions_total",
		Help: "Requests rejected because the transaction id already exists",
	})

	// Event delivery is best effort: a failure here with a successful
	// state change is exactly the drift a reconciliation pass needs to
	// find, so failures are counted per destination.
	eventPublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_event_publishes_total",
		Help: "Domain event publish attempts by destination and outcome",
	}, []string{
		"event_type",
		"destination", // stream, queue
		"outcome",     // success, failure
	})

	webhookUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_updates_total",
		Help: "Webhook status updates by outcome",
	}, []string{
		"outcome", // applied, idempotent, rejected, not_found
	})
)

// RecordPayment counts a processing attempt and its amount.
func RecordPayment(method, status, currency string, amount float64, duration time.Duration) {
	paymentsTotal.WithLabelValues(method, status).Inc()
	paymentAmount.WithLabelValues(method, currency).Add(amount)
	paymentProcessingDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// RecordRateLimitRejection counts a rate-limited request.
func RecordRateLimitRejection() {
	rateLimitRejections.Inc()
}

// RecordDuplicateTransaction counts a duplicate transaction id.
func RecordDuplicateTransaction() {
	duplicateTransactions.Inc()
}

// RecordEventPublish counts a publish attempt per destination.
func RecordEventPublish(eventType, destination string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	eventPublishesTotal.WithLabelValues(eventType, destination, outcome).Inc()
}

// RecordWebhookUpdate counts a webhook application outcome.
func RecordWebhookUpdate(outcome string) {
	webhookUpdatesTotal.WithLabelValues(outcome).Inc()
}
