// Package observability provides Prometheus metrics for the service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "musicbridge"

// Track outcomes
const (
	TrackFetched      = "fetched"
	TrackSearchFailed = "search_failed"
	TrackFetchFailed  = "fetch_failed"
)

// Metrics holds all service metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	BatchesTotal     *prometheus.CounterVec
	BatchesInFlight  prometheus.Gauge
	BatchDuration    prometheus.Histogram
	TracksTotal      *prometheus.CounterVec
	ArchiveBytes     prometheus.Histogram
	CleanupFailures  prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPRequestTimes *prometheus.HistogramVec
}

// New creates and registers all metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		BatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batches",
			Name:      "total",
			Help:      "Finished batches by final status",
		}, []string{"status"}),
		BatchesInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batches",
			Name:      "in_flight",
			Help:      "Batches currently running",
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batches",
			Name:      "duration_seconds",
			Help:      "Wall time of a batch from request to archive",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		TracksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracks",
			Name:      "total",
			Help:      "Processed tracks by outcome",
		}, []string{"outcome"}),
		ArchiveBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "archives",
			Name:      "size_bytes",
			Help:      "Size of produced archives",
			Buckets:   prometheus.ExponentialBuckets(1<<20, 4, 8),
		}),
		CleanupFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cleanup",
			Name:      "failures_total",
			Help:      "Working directory cleanups that left something behind",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestTimes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Handler returns the exposition handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestTimes.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
