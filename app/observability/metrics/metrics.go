package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SearchRequestsTotal   metric.Int64Counter
	SearchDurationSeconds metric.Float64Histogram
	UpstreamErrorsTotal   metric.Int64Counter
	PlacesDroppedTotal    metric.Int64Counter
	CacheHitsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider. Without a
// configured provider the instruments are no-ops.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("seat-scout")
		var err error
		m := &AppMetrics{}

		m.SearchRequestsTotal, err = meter.Int64Counter(
			"location_search_requests_total",
			metric.WithDescription("Total number of nearby location searches"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create location_search_requests_total: %v", err)
		}

		m.SearchDurationSeconds, err = meter.Float64Histogram(
			"location_search_duration_seconds",
			metric.WithDescription("Duration of nearby location searches in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create location_search_duration_seconds: %v", err)
		}

		m.UpstreamErrorsTotal, err = meter.Int64Counter(
			"upstream_errors_total",
			metric.WithDescription("Total number of failed place-search or geocode calls"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_errors_total: %v", err)
		}

		m.PlacesDroppedTotal, err = meter.Int64Counter(
			"places_dropped_total",
			metric.WithDescription("Places excluded during assembly, by rule"),
			metric.WithUnit("{place}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create places_dropped_total: %v", err)
		}

		m.CacheHitsTotal, err = meter.Int64Counter(
			"cache_hits_total",
			metric.WithDescription("Place-search and geocode cache hits"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_hits_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the initialised instruments, initialising them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
