// Package metrics exposes Prometheus instruments for outbound API traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics records every call the shared client makes to the backend
type APIMetrics struct {
	requestDuration *prometheus.HistogramVec
	unauthorized    *prometheus.CounterVec
	tokenRotations  prometheus.Counter
}

// NewAPIMetrics registers the instruments on reg
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	factory := promauto.With(reg)
	return &APIMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projecthub_api_request_duration_seconds",
				Help:    "Backend API request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "route", "status"},
		),
		unauthorized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projecthub_api_unauthorized_total",
				Help: "401 responses received from the backend",
			},
			[]string{"outcome"}, // outcome: session_ended, passed_through
		),
		tokenRotations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "projecthub_api_token_rotations_total",
				Help: "Rotated bearer tokens persisted from response headers",
			},
		),
	}
}

// ObserveRequest records one backend call; status 0 means no response
func (m *APIMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestDuration.WithLabelValues(method, route, label).Observe(duration.Seconds())
}

// IncUnauthorized counts a 401 and whether it ended the session
func (m *APIMetrics) IncUnauthorized(sessionEnded bool) {
	outcome := "passed_through"
	if sessionEnded {
		outcome = "session_ended"
	}
	m.unauthorized.WithLabelValues(outcome).Inc()
}

// IncTokenRotation counts a persisted rotated token
func (m *APIMetrics) IncTokenRotation() {
	m.tokenRotations.Inc()
}

// GatewayMetrics records requests served by the console gateway
type GatewayMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewGatewayMetrics registers the gateway instruments on reg
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	factory := promauto.With(reg)
	return &GatewayMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projecthub_console_requests_total",
				Help: "Requests served by the console gateway",
			},
			[]string{"method", "route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projecthub_console_request_duration_seconds",
				Help:    "Console gateway request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Observe records one served request; route is the chi pattern
func (m *GatewayMetrics) Observe(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}
