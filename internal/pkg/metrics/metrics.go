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
		Namespace: "geosurvey",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geosurvey",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Survey pipeline metrics
	SurveysCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geosurvey",
		Subsystem: "survey",
		Name:      "created_total",
		Help:      "Total surveys created",
	})

	DescriptionsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosurvey",
		Subsystem: "survey",
		Name:      "descriptions_added_total",
		Help:      "Total descriptions appended to surveys",
	}, []string{"inferred"}) // "matched" or "unmatched"

	InferenceMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosurvey",
		Subsystem: "inference",
		Name:      "matches_total",
		Help:      "Keyword-rule matches by label",
	}, []string{"label"})

	MapsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosurvey",
		Subsystem: "map",
		Name:      "generated_total",
		Help:      "Total map generation attempts",
	}, []string{"status"}) // "ok" or "error"

	MapRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geosurvey",
		Subsystem: "map",
		Name:      "render_duration_seconds",
		Help:      "Duration of map rendering",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// Knowledge-base metrics
	RecordsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosurvey",
		Subsystem: "knowledge",
		Name:      "records_added_total",
		Help:      "Total records appended to the knowledge base",
	}, []string{"kind"})

	UpdaterFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosurvey",
		Subsystem: "updater",
		Name:      "fetch_errors_total",
		Help:      "Total failed fetches from online record sources",
	}, []string{"source"})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosurvey",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geosurvey",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geosurvey",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
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
