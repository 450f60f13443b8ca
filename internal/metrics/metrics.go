// Package metrics registers the prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "divvy_http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// PaymentsTotal counts settled shares by outcome (on_time, late).
	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "divvy_payments_total",
			Help: "Completed share payments.",
		},
		[]string{"timing"},
	)

	// CreditsAwarded accumulates credits granted via payment rewards.
	CreditsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "divvy_credits_awarded_total",
			Help: "Total credits awarded as payment rewards.",
		},
	)

	// PenaltiesApplied accumulates credits deducted as late penalties.
	PenaltiesApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "divvy_penalties_applied_total",
			Help: "Total credits deducted as late-payment penalties.",
		},
	)

	// GiftCardsRedeemed counts gift card redemptions by brand.
	GiftCardsRedeemed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "divvy_gift_cards_redeemed_total",
			Help: "Gift cards redeemed.",
		},
		[]string{"brand"},
	)
)

// ObserveRequest records one HTTP request in the latency histogram.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
