package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records MongoDB command latency by command name and outcome.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forumhub_database_command_latency_seconds",
		Help:    "MongoDB command latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"command", "outcome"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forumhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// VotesTotal counts applied vote operations by contract.
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forumhub_votes_total",
		Help: "Total number of vote operations applied to posts",
	}, []string{"kind"})

	// AuthEventsTotal counts authentication outcomes.
	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forumhub_auth_events_total",
		Help: "Authentication attempts by operation and outcome",
	}, []string{"operation", "outcome"})

	// ActiveWebSockets is the gauge of open announcement stream connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forumhub_active_websockets",
		Help: "Number of open websocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forumhub_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// ObserveCommand records the latency of a finished MongoDB command.
func ObserveCommand(command string, failed bool, d time.Duration) {
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	DatabaseQueryLatency.WithLabelValues(command, outcome).Observe(d.Seconds())
}

// RecordAuth increments the auth outcome counter.
func RecordAuth(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthEventsTotal.WithLabelValues(operation, outcome).Inc()
}
