// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resourcemap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resourcemap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
	}, []string{"method", "path"})

	// Raster metrics
	RasterDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resourcemap",
		Subsystem: "heatmap",
		Name:      "generation_duration_seconds",
		Help:      "Raster generation latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"strategy"})

	RasterResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resourcemap",
		Subsystem: "heatmap",
		Name:      "generations_total",
		Help:      "Raster generations by outcome (ok, invalid, empty, cancelled, error)",
	}, []string{"strategy", "outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "resourcemap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total raster cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "resourcemap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total raster cache misses",
	})
)
