package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rackmate"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Sign-up form metrics
var (
	SignupSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signup_submissions_total",
			Help:      "Sign-up submit attempts by outcome",
		},
		[]string{"outcome"}, // invalid, mismatch, rejected, submitted
	)

	SignupVisibilityToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signup_visibility_toggles_total",
			Help:      "Password show/hide toggles by field",
		},
		[]string{"field"},
	)

	SignupBackNavigations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signup_back_navigations_total",
			Help:      "Times the user left the sign-up flow via back or sign-in",
		},
	)

	SignupRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signup_rate_limited_total",
			Help:      "Sign-up submissions rejected by the per-IP rate limit",
		},
	)

	IdentityRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "identity_request_duration_seconds",
			Help:      "Time spent waiting on the identity service",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "result"}, // result: ok, error
	)
)
