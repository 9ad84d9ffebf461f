// Package metrics holds the Prometheus collectors of the service.
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

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localchef",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "localchef",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	orderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localchef",
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Order status transitions by outcome.",
		},
		[]string{"from", "to", "outcome"},
	)

	paymentsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "localchef",
			Subsystem: "payments",
			Name:      "recorded_total",
			Help:      "Payments recorded.",
		},
	)

	roleResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localchef",
			Subsystem: "role_requests",
			Name:      "resolutions_total",
			Help:      "Role request resolutions by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	projections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "localchef",
			Subsystem: "projections",
			Name:      "events_total",
			Help:      "Secondary writes deferred to and replayed by the reconciler.",
		},
		[]string{"kind", "event"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		orderTransitions,
		paymentsRecorded,
		roleResolutions,
		projections,
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordTransition(from, to, outcome string) {
	orderTransitions.WithLabelValues(from, to, outcome).Inc()
}

func RecordPayment() {
	paymentsRecorded.Inc()
}

func RecordResolution(action, outcome string) {
	roleResolutions.WithLabelValues(action, outcome).Inc()
}

// RecordProjection counts a deferred, reconciled or failed secondary write
func RecordProjection(kind, event string) {
	projections.WithLabelValues(kind, event).Inc()
}
