// internal/service/consumeinfo/infrastructure/metrics.go
package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumeinfo_messages_consumed_total",
		Help: "Messages delivered to the consume-info consumer.",
	})

	messagesAcked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumeinfo_messages_acked_total",
		Help: "Messages positively acknowledged.",
	})

	// reason: malformed | business | panic
	messagesNacked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consumeinfo_messages_nacked_total",
		Help: "Messages negatively acknowledged without requeue.",
	}, []string{"reason"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumeinfo_cache_hits_total",
		Help: "Read requests served from the cache.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumeinfo_cache_misses_total",
		Help: "Read requests that fell through to the store.",
	})
)
