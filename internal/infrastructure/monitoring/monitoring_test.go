package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelhub/pkg/circuitbreaker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusCollector(reg)

	p.RecordGatewayOutcome("show", "update", "not_found")
	p.RecordGatewayOutcome("show", "update", "not_found")
	p.RecordFavoriteToggle(true)
	p.RecordFavoriteToggle(false)
	p.RecordFavoriteToggle(true)
	p.RecordAggregation("user_joins", 7, 3*time.Millisecond, nil)
	p.RecordAggregation("income", 7, 0, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(p.gatewayDecisions.WithLabelValues("show", "update", "not_found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.favoriteToggles.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.favoriteToggles.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.aggregationErrors.WithLabelValues("income")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.aggregationDuration))
}

func TestPrometheusCollector_HTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewPrometheusCollector(prometheus.NewRegistry())

	router := gin.New()
	router.Use(p.HTTPMiddleware())
	router.GET("/shows/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/shows/1", "/shows/2", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "/shows/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

type fakeStorage struct{ err error }

func (f fakeStorage) HealthCheck(ctx context.Context) error { return f.err }

type fakeBreaker struct{ state circuitbreaker.State }

func (f fakeBreaker) State() circuitbreaker.State { return f.state }

func TestHealthChecker(t *testing.T) {
	ctx := context.Background()

	healthy := NewHealthChecker()
	healthy.AddStorageCheck(fakeStorage{}, time.Second)
	healthy.AddMediaCheck(fakeBreaker{state: circuitbreaker.StateHalfOpen})

	status := healthy.CheckAll(ctx)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, map[string]string{"storage": "healthy", "media": "healthy"}, status.Checks)
	assert.True(t, healthy.IsReady(ctx))

	broken := NewHealthChecker()
	broken.AddStorageCheck(fakeStorage{err: errors.New("connection refused")}, time.Second)
	broken.AddMediaCheck(fakeBreaker{state: circuitbreaker.StateOpen})

	status = broken.CheckAll(ctx)
	require.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "connection refused", status.Checks["storage"])
	assert.Contains(t, status.Checks["media"], "open")
	assert.False(t, broken.IsReady(ctx))
}

func TestHealthChecker_Timeout(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 10*time.Millisecond)

	status := h.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), status.Checks["slow"])
}
