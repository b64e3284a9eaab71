package http

import (
	"context"
	"net/http"
	"time"

	"reelhub/internal/core/ports"
	"reelhub/internal/core/services"
	"reelhub/internal/infrastructure/middleware"
	"reelhub/internal/infrastructure/monitoring"
	"reelhub/pkg/config"
	"reelhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies is everything the HTTP surface needs.
type Dependencies struct {
	Config      *config.Config
	Gateway     *services.Gateway
	Auth        ports.AuthService
	Catalog     ports.CatalogService
	Aggregation ports.AggregationService
	Campaigns   ports.CampaignService
	Billing     ports.BillingService
	Media       ports.MediaStore
	Health      *monitoring.HealthChecker
	Metrics     *monitoring.PrometheusCollector // optional
	Logger      *zap.Logger
	StartedAt   time.Time
}

func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	sugar := deps.Logger.Sugar()

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	if cfg.Monitoring.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
	}
	if deps.Metrics != nil {
		router.Use(deps.Metrics.HTTPMiddleware())
	}
	// Outer middleware sees the status the error handler writes.
	router.Use(
		middleware.RequestLoggingMiddleware(logger.NewContextLogger(deps.Logger)),
		middleware.ErrorHandlerMiddleware(sugar),
		middleware.RecoveryMiddleware(sugar),
		middleware.NewHTTPRateLimitMiddleware(cfg),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"uptime":    time.Since(deps.StartedAt).String(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := deps.Health.CheckAll(ctx)
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	NewMediaHandler(deps.Media, cfg.Media.MaxImageBytes).SetupRoutes(router, cfg.Media.PublicPrefix)

	api := router.Group("/api/v1")
	NewAuthHandler(deps.Auth, deps.Gateway).SetupRoutes(api)

	protected := api.Group("", middleware.CredentialMiddleware())
	NewCatalogHandler(deps.Catalog, deps.Gateway, cfg.Media.MaxImageBytes, cfg.Media.PublicPrefix).SetupRoutes(protected)
	NewAdminHandler(deps.Gateway, deps.Auth, deps.Aggregation, deps.Campaigns).SetupRoutes(protected)
	NewBillingHandler(deps.Billing, deps.Gateway).SetupRoutes(protected)

	return router
}
