package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bloomwatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bloomwatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})

	// Remote analytics service metrics
	EERequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bloomwatch",
		Subsystem: "earthengine",
		Name:      "requests_total",
		Help:      "Total requests issued to the raster analytics service",
	}, []string{"op", "outcome"})

	EERequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bloomwatch",
		Subsystem: "earthengine",
		Name:      "request_duration_seconds",
		Help:      "Latency of raster analytics service calls",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"op"})

	// Rendering metrics
	MapsComposed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bloomwatch",
		Subsystem: "render",
		Name:      "maps_composed_total",
		Help:      "Total map compositions completed",
	}, []string{"outcome"})

	ChartsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bloomwatch",
		Subsystem: "render",
		Name:      "charts_rendered_total",
		Help:      "Total time-series chart images written",
	}, []string{"metric"})

	TimeSeriesBucketNulls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bloomwatch",
		Subsystem: "render",
		Name:      "timeseries_null_buckets_total",
		Help:      "Time-series buckets with no valid pixels",
	})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bloomwatch",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bloomwatch",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveEECall records one remote analytics call.
func ObserveEECall(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EERequests.WithLabelValues(op, outcome).Inc()
	EERequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
