package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentproxy_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentproxy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "contentproxy_http_in_flight_requests",
			Help: "HTTP requests currently being served, including pending upstream calls.",
		},
	)

	QuotaDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentproxy_quota_decisions_total",
			Help: "Quota decisions by operation type and result (allowed, daily, hourly, fail_open).",
		},
		[]string{"type", "result"},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentproxy_quota_store_errors_total",
			Help: "Quota store failures absorbed by the limiter, tracker or reporter.",
		},
		[]string{"component"},
	)

	CreditsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentproxy_credits_consumed_total",
			Help: "Credits recorded per operation type.",
		},
		[]string{"type"},
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentproxy_upstream_requests_total",
			Help: "Calls to the LLM backend by result code.",
		},
		[]string{"code"},
	)

	UpstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contentproxy_upstream_duration_seconds",
			Help:    "LLM backend call latency in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPInFlight,
		QuotaDecisionsTotal,
		StoreErrorsTotal,
		CreditsConsumedTotal,
		UpstreamRequestsTotal,
		UpstreamDuration,
	)
}
