package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Request-level Prometheus collectors. The "path" label carries the Gin
// route pattern (/api/v1/pets/:slug), never the raw URL, so cardinality
// stays bounded no matter what clients request.
var (
	httpReqs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests served.",
	}, []string{"method", "path", "status"})

	// No status label here; one histogram per route is enough.
	httpLat = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "HTTP requests currently being served.",
	})

	// Buckets span small JSON bodies up to photo-sized payloads.
	httpRespSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_response_size_bytes",
		Help: "HTTP response body size in bytes.",
		Buckets: []float64{
			200, 500, 1 << 10, 2 << 10, 5 << 10,
			10 << 10, 25 << 10, 50 << 10,
			100 << 10, 250 << 10, 500 << 10,
			1 << 20, 2 << 20, 5 << 20,
		},
	}, []string{"method", "path"})
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize)
}

// Metrics instruments every request with count, latency, in-flight gauge
// and response size. Mount promhttp.Handler() on /metrics to expose them.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		recordRequest(c, time.Since(start))
	}
}

func recordRequest(c *gin.Context, elapsed time.Duration) {
	method := c.Request.Method
	path := routePath(c)
	status := strconv.Itoa(c.Writer.Status())

	httpReqs.WithLabelValues(method, path, status).Inc()
	httpLat.WithLabelValues(method, path).Observe(elapsed.Seconds())
	if size := c.Writer.Size(); size >= 0 { // -1 when unknown
		httpRespSize.WithLabelValues(method, path).Observe(float64(size))
	}
}
