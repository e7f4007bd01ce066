// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_http_requests_in_flight",
			Help: "Number of HTTP requests being served",
		},
	)

	RelationToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_relation_toggles_total",
			Help: "Relation add/remove operations by kind and result",
		},
		[]string{"kind", "op", "result"},
	)

	ShoppingListExports = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_exports_total",
			Help: "Total number of shopping lists rendered",
		},
	)

	ShoppingListLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_lines",
			Help:    "Number of aggregated lines per exported shopping list",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	ShortLinkLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_lookups_total",
			Help: "Short link resolutions by source (cache, database) and result",
		},
		[]string{"source", "result"},
	)

	ShortLinksIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_short_links_issued_total",
			Help: "Total number of short codes generated",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRelationToggle(kind, op, result string) {
	RelationToggles.WithLabelValues(kind, op, result).Inc()
}

func RecordShoppingListExport(lines int) {
	ShoppingListExports.Inc()
	ShoppingListLines.Observe(float64(lines))
}

func RecordShortLinkLookup(source, result string) {
	ShortLinkLookups.WithLabelValues(source, result).Inc()
}
