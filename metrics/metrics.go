package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricely_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricely_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// result is "counted", "repeat" or "error"
	VisitsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricely_visits_tracked_total",
			Help: "Visit tracking outcomes per object kind",
		},
		[]string{"kind", "result"},
	)

	PriceSyncUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricely_price_sync_updates_total",
			Help: "Price sync outcomes per product",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordVisit(kind, result string) {
	VisitsTracked.WithLabelValues(kind, result).Inc()
}

func RecordPriceSync(result string) {
	PriceSyncUpdates.WithLabelValues(result).Inc()
}
