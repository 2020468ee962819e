// Package metrics exposes Prometheus counters for HTTP traffic, financial
// rollups and reminder delivery.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	rollups         *prometheus.CounterVec
	rollupConflicts prometheus.Counter
	reminders       *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventhall",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventhall",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rollups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventhall",
			Name:      "payment_rollups_total",
			Help:      "Event payment rollups by resulting payment status.",
		}, []string{"payment_status"}),
		rollupConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventhall",
			Name:      "rollup_conflicts_total",
			Help:      "Event saves rejected by the version check.",
		}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventhall",
			Name:      "reminders_delivered_total",
			Help:      "Reminder deliveries by channel and result.",
		}, []string{"channel", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.rollups,
		m.rollupConflicts,
		m.reminders,
	)
	return m
}

// GinMiddleware records one sample per request, keyed by the route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RegisterDB exports connection pool stats of db under the given name.
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRollup(paymentStatus string) {
	if m == nil {
		return
	}
	m.rollups.WithLabelValues(paymentStatus).Inc()
}

func (m *Metrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.rollupConflicts.Inc()
}

func (m *Metrics) ObserveReminder(channel, status string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(channel, status).Inc()
}
