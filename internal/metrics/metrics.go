// Package metrics exposes Prometheus collectors for the HTTP surface and the
// notification queue.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	readings      *prometheus.CounterVec
}

// New registers all collectors on a private registry so tests can build as
// many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oxigo",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "oxigo",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oxigo",
			Name:      "notifications_total",
			Help:      "Notification outcomes by kind (sent, failed, dropped).",
		}, []string{"kind", "outcome"}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oxigo",
			Name:      "readings_ingested_total",
			Help:      "Sensor readings stored, by ingestion source.",
		}, []string{"source"}),
	}
	reg.MustRegister(
		m.requests, m.latency, m.notifications, m.readings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records one sample per request, labelled by the matched route
// template rather than the raw path.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) NotificationSent(kind string)    { m.notifications.WithLabelValues(kind, "sent").Inc() }
func (m *Metrics) NotificationFailed(kind string)  { m.notifications.WithLabelValues(kind, "failed").Inc() }
func (m *Metrics) NotificationDropped(kind string) { m.notifications.WithLabelValues(kind, "dropped").Inc() }

func (m *Metrics) ReadingIngested(source string) { m.readings.WithLabelValues(source).Inc() }
