package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reelhub/internal/core/ports"
	"reelhub/internal/infrastructure/repositories/memory"
	redisrepo "reelhub/internal/infrastructure/repositories/redis"
	sqliterepo "reelhub/internal/infrastructure/repositories/sqlite"
	"reelhub/pkg/config"
	"reelhub/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory opens the configured storage backend and owns its connection.
type RepositoryFactory struct {
	driver      string
	redisClient *redis.Client
	db          *sql.DB
	store       *ports.Store
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory connects to the backend named by storage.driver. Redis
// connections are retried with backoff before giving up.
func NewRepositoryFactory(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		driver: cfg.Storage.Driver,
		logger: logger,
	}

	switch cfg.Storage.Driver {
	case "memory":
		factory.store = memory.NewStore()

	case "redis":
		rc := cfg.Storage.Redis
		policy := retry.DefaultConfig()
		policy.MaxRetries = rc.ConnectRetries
		policy.OnRetry = func(attempt int, err error, delay time.Duration) {
			logger.Warnw("Redis not reachable, retrying",
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
		}

		client, err := retry.DoValue(ctx, policy, func(ctx context.Context) (*redis.Client, error) {
			return redisrepo.NewRedisClient(ctx, redisrepo.ClientOptions{
				Address:  rc.Address,
				Password: rc.Password,
				DB:       rc.DB,
				PoolSize: rc.PoolSize,
			}, logger)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		factory.redisClient = client
		factory.store = redisrepo.NewStore(client)

	case "sqlite":
		db, err := sqliterepo.Open(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		factory.db = db
		factory.store = sqliterepo.NewStore(db)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	logger.Infow("Storage ready", "driver", factory.driver)
	return factory, nil
}

// Store returns the repositories of the selected backend.
func (f *RepositoryFactory) Store() *ports.Store {
	return f.store
}

func (f *RepositoryFactory) Driver() string {
	return f.driver
}

// Close closes the backend connection, if any
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}

// HealthCheck pings the backend
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	switch {
	case f.redisClient != nil:
		return f.redisClient.Ping(ctx).Err()
	case f.db != nil:
		return f.db.PingContext(ctx)
	default:
		return nil
	}
}
