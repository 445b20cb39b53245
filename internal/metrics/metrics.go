package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "showpro_bookings_created_total",
		Help: "Bookings created through the API, series expansion included.",
	})

	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showpro_import_rows_total",
		Help: "CSV import rows by table and outcome (inserted, skipped).",
	}, []string{"table", "outcome"})

	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "showpro_emails_sent_total",
		Help: "Queued emails marked as sent.",
	})
)

// Middleware собирает метрики HTTP по шаблону маршрута
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler - GET /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
