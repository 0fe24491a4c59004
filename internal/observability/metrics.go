package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridehail", Name: "ride_transitions_total", Help: "Committed ride status transitions"},
		[]string{"from", "to"},
	)
	RideGuardRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridehail", Name: "ride_guard_rejections_total", Help: "Ride operations refused by a role, ownership or state guard"},
		[]string{"operation", "kind"},
	)
	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridehail", Name: "payments_total", Help: "Payment status changes by resulting status and actor role"},
		[]string{"status", "role"},
	)
	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridehail", Name: "notification_failures_total", Help: "Ride event deliveries that failed"},
		[]string{"channel"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridehail", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridehail",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
