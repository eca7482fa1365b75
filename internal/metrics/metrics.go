package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusnet",
			Name:      "query_cache_lookups_total",
			Help:      "Query cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)

	CacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "campusnet",
			Name:      "query_cache_invalidated_entries_total",
			Help:      "Cache entries dropped by prefix invalidation.",
		},
	)

	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusnet",
			Name:      "messages_sent_total",
			Help:      "Messages written by channel (direct, group).",
		},
		[]string{"channel"},
	)

	RealtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusnet",
			Name:      "realtime_events_total",
			Help:      "Change feed events by outcome (published, delivered, dropped).",
		},
		[]string{"outcome"},
	)

	ToggleRollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusnet",
			Name:      "interaction_toggle_rollbacks_total",
			Help:      "Optimistic interaction toggles rolled back after a failed write.",
		},
		[]string{"action"},
	)

	VerificationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "campusnet",
			Name:      "verification_requests_total",
			Help:      "Document verification calls by resulting status.",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CacheLookups,
			CacheInvalidations,
			MessagesSent,
			RealtimeEvents,
			ToggleRollbacks,
			VerificationRequests,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
