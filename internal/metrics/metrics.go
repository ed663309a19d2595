package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Latency of every HTTP request, by route template.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Diary service calls by operation and outcome.
	DiaryOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diary_operations_total",
			Help: "Diary operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	registerOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(DiaryOperations)
	})
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Middleware observes request latency. Unmatched routes are grouped under
// "unmatched" to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func ObserveOperation(operation, outcome string) {
	DiaryOperations.WithLabelValues(operation, outcome).Inc()
}
