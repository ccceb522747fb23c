// Package metrics Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CollectionFetchDuration 列表拉取（含海报补全）耗时
	CollectionFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collection_fetch_duration_seconds",
			Help:    "Duration of collection fetches including poster enrichment",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)

	// PosterResolutions 海报解析结果计数
	PosterResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poster_resolutions_total",
			Help: "Poster resolutions by outcome",
		},
		[]string{"outcome"}, // resolved, no_link, no_poster, link_error, details_error, disabled
	)

	// StaleFetchesDiscarded 被更新请求覆盖而丢弃的结果
	StaleFetchesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stale_fetches_discarded_total",
			Help: "Fetch results dropped because a newer request superseded them",
		},
		[]string{"kind"},
	)

	// CircuitBreakerState 熔断器状态 0=closed 1=open 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// ActiveSessions 当前会话数
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Number of live browser sessions",
		},
	)

	// HTTPRequests HTTP 请求计数
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
