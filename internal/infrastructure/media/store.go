package media

import (
	"context"
	"fmt"

	"reelhub/internal/core/ports"
	"reelhub/pkg/circuitbreaker"
	"reelhub/pkg/config"

	"go.uber.org/zap"
)

type S3Options struct {
	Bucket string
	Prefix string
	Region string
}

// NewStore opens the configured backend behind a circuit breaker.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*BreakerStore, error) {
	var (
		backend ports.MediaStore
		err     error
	)

	switch cfg.Media.Driver {
	case "file":
		backend, err = NewFileStore(cfg.Media.BaseDir)
	case "s3":
		backend, err = NewS3Store(ctx, S3Options{
			Bucket: cfg.Media.S3.Bucket,
			Prefix: cfg.Media.S3.Prefix,
			Region: cfg.Media.S3.Region,
		})
	default:
		err = fmt.Errorf("unknown media driver %q", cfg.Media.Driver)
	}
	if err != nil {
		return nil, err
	}

	breakerCfg := circuitbreaker.DefaultConfig()
	breakerCfg.FailureThreshold = cfg.Media.Breaker.FailureThreshold
	breakerCfg.SuccessThreshold = cfg.Media.Breaker.SuccessThreshold
	breakerCfg.Timeout = cfg.Media.Breaker.Timeout

	logger.Infow("Media store ready", "driver", cfg.Media.Driver)
	return NewBreakerStore(backend, breakerCfg, logger), nil
}
