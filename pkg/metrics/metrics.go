package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "slotlist", Subsystem: "client", Name: "api_requests_total", Help: "Outgoing API requests by operation and status code (\"error\" on transport failure)."},
		[]string{"operation", "code"},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "slotlist", Subsystem: "client", Name: "api_request_duration_seconds", Help: "Outgoing API request latency by operation.", Buckets: prometheus.DefBuckets},
		[]string{"operation"},
	)
	SessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "slotlist", Subsystem: "client", Name: "session_events_total", Help: "Session store events (login, logout, refresh, failures)."},
		[]string{"event"},
	)

	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "slotlist", Subsystem: "mockapi", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "slotlist", Subsystem: "mockapi", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

// RegisterClientCollectors registers the collectors fed by the API client and session store.
func RegisterClientCollectors(reg prometheus.Registerer) {
	reg.MustRegister(APIRequests)
	reg.MustRegister(APIRequestDuration)
	reg.MustRegister(SessionEvents)
}

// RegisterServerCollectors registers the mock backend collectors.
func RegisterServerCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
