package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API client metrics
var (
	// APIRequestsTotal counts client calls by final outcome
	// (ok, http_error, network_error, auth_expired).
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopadmin_api_requests_total",
			Help: "Authenticated API client calls by outcome",
		},
		[]string{"outcome"},
	)

	APIRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopadmin_api_request_duration_seconds",
			Help:    "End-to-end duration of API client calls including refresh and retry",
			Buckets: prometheus.DefBuckets,
		},
	)

	// TokenRefreshTotal counts refresh attempts by result (success, failure, reused).
	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopadmin_token_refresh_total",
			Help: "Access token refreshes by result",
		},
		[]string{"result"},
	)

	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shopadmin_api_retries_total",
			Help: "Requests resent once after a 401 and a refresh",
		},
	)
)

// Overlay metrics
var (
	OverlaysOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopadmin_overlays_open",
			Help: "Currently open overlays by kind",
		},
		[]string{"kind"},
	)
)

// Development backend metrics
var (
	BackendLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopadmin_backend_logins_total",
			Help: "Login and refresh-token requests handled by the development backend",
		},
		[]string{"endpoint", "result"},
	)
)
