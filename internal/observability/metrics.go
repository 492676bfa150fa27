package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	GrpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"service", "method", "status"},
	)

	SendOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convsync_send_outcomes_total",
			Help: "Sends by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "convsync_store_op_duration_seconds",
			Help:    "Duration of document store calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op", "result"},
	)

	CASConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convsync_cas_conflicts_total",
			Help: "Conditional writes that lost a race and were retried",
		},
		[]string{"record"},
	)

	DecodeSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convsync_decode_skipped_total",
			Help: "Stored records skipped because they failed validation",
		},
		[]string{"record"},
	)

	ActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "convsync_active_subscriptions",
			Help: "Open change subscriptions",
		},
		[]string{"kind"},
	)

	EventPublishFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convsync_event_publish_failures_total",
			Help: "Conversation events that could not be published",
		},
		[]string{"type"},
	)

	EventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convsync_events_consumed_total",
			Help: "Conversation events handed to a consumer handler",
		},
		[]string{"group"},
	)
)
