package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Lifecycle operations by outcome
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roamr_operations_total",
			Help: "Listing and review operations by outcome",
		},
		[]string{"op", "result"}, // result: ok|invalid|not_found|denied|unavailable
	)

	CascadeDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roamr_cascade_reviews_deleted_total",
			Help: "Reviews removed by listing-delete cascades",
		},
	)
	CascadePending = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roamr_cascade_reviews_pending_total",
			Help: "Reviews left behind by failed cascade batches",
		},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roamr_cache_lookups_total",
			Help: "Listing detail cache outcomes: hit, miss, error, and stale for skipped writes",
		},
		[]string{"result"}, // hit|miss|error
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roamr_events_published_total",
			Help: "Domain events handed to the broker",
		},
		[]string{"subject", "result"},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	once sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors once per process.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			OperationsTotal,
			CascadeDeleted,
			CascadePending,
			CacheLookups,
			EventsPublished,
			WorkerQueueDepth,
		)
	})
}
