// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mybooks_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mybooks_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mybooks_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// Catalog
	CatalogEntitiesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mybooks_catalog_entities_created_total",
			Help: "Authors, categories and publishers created",
		},
		[]string{"kind", "source"}, // source: "explicit", "reconcile"
	)

	CatalogEntitiesReused = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mybooks_catalog_entities_reused_total",
			Help: "Existing catalog entities matched during name reconciliation",
		},
		[]string{"kind"},
	)

	PermissionDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mybooks_permission_denials_total",
			Help: "Modification attempts refused by the permission policy",
		},
		[]string{"resource"},
	)

	VotesCast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mybooks_votes_cast_total",
			Help: "Votes created or updated",
		},
	)

	// Google Books
	GoogleBooksRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mybooks_google_books_requests_total",
			Help: "Google Books API calls by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "error", "not_found", "breaker_open", "cache_hit"
	)

	GoogleBooksDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mybooks_google_books_request_duration_seconds",
			Help:    "Google Books API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	GoogleBooksBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mybooks_google_books_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCatalogCreated counts a new author, category or publisher.
func RecordCatalogCreated(kind, source string) {
	CatalogEntitiesCreated.WithLabelValues(kind, source).Inc()
}

// RecordCatalogReused counts a reconciled name that matched an existing row.
func RecordCatalogReused(kind string) {
	CatalogEntitiesReused.WithLabelValues(kind).Inc()
}

// RecordPermissionDenied counts a refused update or delete.
func RecordPermissionDenied(resource string) {
	PermissionDenials.WithLabelValues(resource).Inc()
}

// RecordGoogleBooksRequest records an outbound call and its latency.
// A zero duration (cache hits, open breaker) skips the histogram.
func RecordGoogleBooksRequest(operation, outcome string, duration time.Duration) {
	GoogleBooksRequests.WithLabelValues(operation, outcome).Inc()
	if duration > 0 {
		GoogleBooksDuration.Observe(duration.Seconds())
	}
}
