// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the expense service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// DerivationBuckets covers PBKDF2 derivation times, from 1ms to 2.5s.
var DerivationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "despesas_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "despesas_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LoginAttemptsTotal counts login attempts by outcome (success, failed, error).
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "despesas_login_attempts_total",
			Help: "Login attempts",
		},
		[]string{"outcome"},
	)

	// PasswordDerivationDuration records the time spent deriving password digests.
	PasswordDerivationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "despesas_password_derivation_seconds",
			Help:    "Password derivation duration",
			Buckets: DerivationBuckets,
		},
	)

	// TokensIssuedTotal counts issued access tokens.
	TokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "despesas_tokens_issued_total",
			Help: "Issued tokens",
		},
	)

	// TokenValidationsTotal counts token validations by result (valid, invalid).
	TokenValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "despesas_token_validations_total",
			Help: "Token validations",
		},
		[]string{"result"},
	)

	// GateDecisionsTotal counts authentication gate decisions (allowed, rejected).
	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "despesas_auth_gate_decisions_total",
			Help: "Authentication gate decisions",
		},
		[]string{"decision"},
	)

	// NotificationsTotal counts expense notifications by notifier and status.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "despesas_notifications_total",
			Help: "Expense notifications",
		},
		[]string{"notifier", "status"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "despesas_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		LoginAttemptsTotal,
		PasswordDerivationDuration,
		TokensIssuedTotal,
		TokenValidationsTotal,
		GateDecisionsTotal,
		NotificationsTotal,
		RateLimitRejectedTotal,
	)
}
