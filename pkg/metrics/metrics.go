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

const namespace = "aeroapi"

// Registry holds every collector the service exports
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	AuthorizationDecision *prometheus.CounterVec
	ModerationOperations  *prometheus.CounterVec
}

// NewRegistry creates the collectors on a private registry
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "path"},
		),
		AuthorizationDecision: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authorization_decisions_total",
				Help:      "API key authorization decisions by outcome",
			},
			[]string{"outcome"},
		),
		ModerationOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moderation_operations_total",
				Help:      "Moderation actions applied and removed by kind",
			},
			[]string{"operation", "kind"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequestsTotal,
		r.HTTPRequestDuration,
		r.AuthorizationDecision,
		r.ModerationOperations,
	)
	return r
}

// RecordDecision counts one authorization outcome ("allowed" or a deny reason)
func (r *Registry) RecordDecision(outcome string) {
	if r == nil {
		return
	}
	r.AuthorizationDecision.WithLabelValues(outcome).Inc()
}

// RecordModeration counts an apply or remove of kind
func (r *Registry) RecordModeration(operation, kind string) {
	if r == nil {
		return
	}
	r.ModerationOperations.WithLabelValues(operation, kind).Inc()
}

// GinMiddleware records request counts and latency by route template
func (r *Registry) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		r.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
