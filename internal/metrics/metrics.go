// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobcard_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobcard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	StoreWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobcard_store_writes_total",
			Help: "Successful slot writes by slot key and action.",
		},
		[]string{"slot", "action"},
	)

	StoreConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobcard_store_version_conflicts_total",
			Help: "Slot writes rejected because another writer got there first.",
		},
		[]string{"slot"},
	)

	RecordsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobcard_records",
			Help: "Records currently held per slot.",
		},
		[]string{"slot"},
	)

	ActiveDrafts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobcard_active_drafts",
		Help: "Open job card drafts.",
	})

	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobcard_websocket_clients",
		Help: "Connected change-notification clients.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		StoreWritesTotal,
		StoreConflictsTotal,
		RecordsGauge,
		ActiveDrafts,
		WebsocketClients,
	)
}
