package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_bookings_total",
			Help: "Total number of session bookings",
		},
		[]string{"kind", "payment"},
	)

	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_cancellations_total",
			Help: "Total number of cancellation attempts by scope and outcome",
		},
		[]string{"scope", "outcome"},
	)

	RefundedCredits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_refunded_credits_total",
			Help: "Credits returned to wallets by cancellations",
		},
	)

	RefundedTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_refunded_tokens_total",
			Help: "Tokens returned to wallets by cancellations",
		},
		[]string{"currency"},
	)

	LoyaltyPenaltiesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_loyalty_penalties_total",
			Help: "Number of cancellations that clawed back a punch-card reward",
		},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_purchases_total",
			Help: "Total number of purchases by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	WalletAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_wallet_adjustments_total",
			Help: "Admin wallet adjustments by kind",
		},
		[]string{"kind"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_notifications_total",
			Help: "Cancellation notifications by audience and status",
		},
		[]string{"audience", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studio_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(kind, payment string) {
	BookingsTotal.WithLabelValues(kind, payment).Inc()
}

func RecordCancellation(scope, outcome string) {
	CancellationsTotal.WithLabelValues(scope, outcome).Inc()
}

func RecordRefund(credits float64, currency string, tokens int, penalized bool) {
	if credits > 0 {
		RefundedCredits.Add(credits)
	}
	if tokens > 0 && currency != "" {
		RefundedTokens.WithLabelValues(currency).Add(float64(tokens))
	}
	if penalized {
		LoyaltyPenaltiesTotal.Inc()
	}
}

func RecordPurchase(kind, outcome string) {
	PurchasesTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordWalletAdjustment(kind string) {
	WalletAdjustmentsTotal.WithLabelValues(kind).Inc()
}

func RecordNotification(audience, status string) {
	NotificationsTotal.WithLabelValues(audience, status).Inc()
}
