package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

var (
	producerMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cakelora",
			Name:      "kafka_producer_messages_published_total",
			Help:      "Kafka messages published.",
		},
		[]string{"topic"},
	)

	producerPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cakelora",
			Name:      "kafka_producer_publish_errors_total",
			Help:      "Kafka publish failures, including calls rejected by the open breaker.",
		},
		[]string{"topic"},
	)

	producerPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cakelora",
			Name:      "kafka_producer_publish_duration_seconds",
			Help:      "Kafka publish latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	producerBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cakelora",
			Name:      "kafka_producer_breaker_state",
			Help:      "Producer circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)
)

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
