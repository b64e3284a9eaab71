package monitoring

import (
	"strconv"
	"time"

	"reelhub/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	gatewayDecisions *prometheus.CounterVec
	favoriteToggles  *prometheus.CounterVec

	aggregationDuration *prometheus.HistogramVec
	aggregationErrors   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ ports.MetricsRecorder = (*PrometheusCollector)(nil)

// NewPrometheusCollector registers the collectors with reg, normally
// prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		gatewayDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reelhub_gateway_requests_total",
			Help: "Protected operations by resource, verb and outcome",
		}, []string{"resource", "verb", "outcome"}),

		favoriteToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reelhub_favorite_toggles_total",
			Help: "Favorite toggles by resulting state",
		}, []string{"state"}),

		aggregationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reelhub_aggregation_duration_seconds",
			Help:    "Duration of analytics aggregations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"metric"}),

		aggregationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reelhub_aggregation_errors_total",
			Help: "Failed analytics aggregations",
		}, []string{"metric"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reelhub_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reelhub_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (p *PrometheusCollector) RecordGatewayOutcome(resource, verb, outcome string) {
	p.gatewayDecisions.WithLabelValues(resource, verb, outcome).Inc()
}

// RecordAggregation does not label by window size to keep cardinality bounded.
func (p *PrometheusCollector) RecordAggregation(metric string, windowDays int, duration time.Duration, err error) {
	if err != nil {
		p.aggregationErrors.WithLabelValues(metric).Inc()
		return
	}
	p.aggregationDuration.WithLabelValues(metric).Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordFavoriteToggle(favorite bool) {
	state := "removed"
	if favorite {
		state = "added"
	}
	p.favoriteToggles.WithLabelValues(state).Inc()
}

// HTTPMiddleware records request counts and latency by route template.
func (p *PrometheusCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		p.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		p.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
