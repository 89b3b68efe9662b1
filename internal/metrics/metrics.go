// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relevance_db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relevance_db_query_errors_total",
			Help: "Total number of failed store queries",
		},
		[]string{"operation"},
	)

	// MetricWrites counts conditional metric writes by outcome: written, unchanged or failed.
	MetricWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relevance_metric_writes_total",
			Help: "Conditional metric writes by family and outcome",
		},
		[]string{"family", "outcome"},
	)

	ItemsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relevance_items_classified_total",
			Help: "Recommendation items classified, by population and verdict",
		},
		[]string{"population", "relevant"},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relevance_store_breaker_state",
			Help: "Store circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relevance_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relevance_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relevance_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

func RecordMetricWrite(family string, written bool, err error) {
	outcome := "unchanged"
	switch {
	case err != nil:
		outcome = "failed"
	case written:
		outcome = "written"
	}
	MetricWrites.WithLabelValues(family, outcome).Inc()
}

func RecordClassified(population string, relevant, total int) {
	ItemsClassified.WithLabelValues(population, "true").Add(float64(relevant))
	ItemsClassified.WithLabelValues(population, "false").Add(float64(total - relevant))
}

func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
