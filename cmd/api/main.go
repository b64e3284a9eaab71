package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/core/services"
	httphandlers "reelhub/internal/handlers/http"
	"reelhub/internal/infrastructure/media"
	"reelhub/internal/infrastructure/monitoring"
	repositories "reelhub/internal/infrastructure/repositories"
	"reelhub/pkg/config"
	"reelhub/pkg/logger"
	"reelhub/pkg/tracing"
	"reelhub/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	startTime := time.Now()

	// First existing file wins; none at all means defaults plus env overrides.
	configPath := ""
	for _, path := range []string{
		os.Getenv("REELHUB_CONFIG"),
		"configs/config.yaml",
		"config.yaml",
	} {
		if path == "" {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			configPath = path
			break
		}
	}

	cfg, cfgErr := config.Load(configPath)
	if cfgErr != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()
	if cfgErr != nil {
		log.Warnw("Falling back to default configuration", "path", configPath, "error", cfgErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Monitoring.TracingEnabled
	tracingCfg.JaegerURL = cfg.Monitoring.JaegerURL
	tracingCfg.Environment = cfg.Monitoring.Environment
	tracingCfg.SampleRate = cfg.Monitoring.SampleRate
	tp, err := tracing.Init(tracingCfg)
	if err != nil {
		log.Fatalw("Failed to initialize tracing", "error", err)
	}

	repoFactory, err := repositories.NewRepositoryFactory(ctx, cfg, log)
	if err != nil {
		log.Fatalw("Failed to create repository factory", "error", err)
	}
	store := repoFactory.Store()

	mediaStore, err := media.NewStore(ctx, cfg, log)
	if err != nil {
		log.Fatalw("Failed to open media store", "driver", cfg.Media.Driver, "error", err)
	}

	var metrics ports.MetricsRecorder = ports.NopMetrics{}
	var collector *monitoring.PrometheusCollector
	if cfg.Monitoring.PrometheusEnabled {
		collector = monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)
		metrics = collector
	}

	codec := services.NewClaimsCodec(services.CodecConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
	})
	policy, err := services.NewPolicyEngine(services.PolicyConfig{PolicyPath: cfg.Authz.PolicyPath}, log)
	if err != nil {
		log.Fatalw("Failed to load authorization policy", "error", err)
	}
	gateway := services.NewGateway(codec, policy, services.NewSubmissionValidator(cfg.Media.MaxImageBytes), metrics, log)

	authService, err := services.NewAuthService(store.Accounts, codec, services.AuthConfig{
		CredentialTTL: cfg.Auth.CredentialTTL,
		BcryptCost:    cfg.Auth.BcryptCost,
	}, log)
	if err != nil {
		log.Fatalw("Failed to create auth service", "error", err)
	}
	catalogService := services.NewCatalogService(store.Shows, store.Episodes, store.Favorites, mediaStore, metrics, log)
	aggregationService := services.NewAggregationService(policy, store.Metrics, services.AggregationConfig{
		Location:      cfg.Location(),
		MaxWindowDays: cfg.Analytics.MaxWindowDays,
	}, metrics, log)
	campaignService := services.NewCampaignService(store.Campaigns, log)
	plans, err := billingPlans(cfg.Billing.Plans)
	if err != nil {
		log.Fatalw("Invalid billing plans", "error", err)
	}
	billingService, err := services.NewBillingService(store.Transactions, services.BillingConfig{Plans: plans}, log)
	if err != nil {
		log.Fatalw("Failed to create billing service", "error", err)
	}

	if err := bootstrapAccounts(ctx, authService, cfg.Auth.BootstrapAccounts, log); err != nil {
		log.Fatalw("Failed to bootstrap accounts", "error", err)
	}

	health := monitoring.NewHealthChecker()
	health.AddStorageCheck(repoFactory, 2*time.Second)
	health.AddMediaCheck(mediaStore)

	router := httphandlers.NewRouter(httphandlers.Dependencies{
		Config:      cfg,
		Gateway:     gateway,
		Auth:        authService,
		Catalog:     catalogService,
		Aggregation: aggregationService,
		Campaigns:   campaignService,
		Billing:     billingService,
		Media:       mediaStore,
		Health:      health,
		Metrics:     collector,
		Logger:      zapLogger,
		StartedAt:   startTime,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("Starting ReelHub API server",
			"address", cfg.Server.Address,
			"storage", repoFactory.Driver(),
			"media", cfg.Media.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down ReelHub API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer provider", "error", err)
	}
	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("ReelHub API server stopped")
}

// bootstrapAccounts provisions the configured accounts. Accounts whose email
// is already registered are left untouched.
func bootstrapAccounts(ctx context.Context, auth ports.AuthService, accounts []config.BootstrapAccount, log *zap.SugaredLogger) error {
	for _, a := range accounts {
		role, err := domain.NewRole(a.Role, a.PublisherID, a.AdminSubtype)
		if err != nil {
			return err
		}

		account, err := auth.Provision(ctx, domain.NewAccount{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Password:    a.Password,
			Role:        role,
		})
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			log.Debugw("Bootstrap account already exists", "email", utils.MaskEmail(a.Email))
		case err != nil:
			return err
		default:
			log.Infow("Bootstrap account provisioned", "account_id", account.ID, "role", account.RoleKind)
		}
	}
	return nil
}

func billingPlans(configured []config.BillingPlan) ([]domain.Plan, error) {
	plans := make([]domain.Plan, 0, len(configured))
	for _, p := range configured {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("plan %q: %w", p.Name, err)
		}
		plans = append(plans, domain.Plan{Name: p.Name, Price: price})
	}
	return plans, nil
}
