package media

import (
	"context"
	"errors"
	"io"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/pkg/circuitbreaker"
	"reelhub/pkg/tracing"

	"go.uber.org/zap"
)

// BreakerStore stops calling a media backend that keeps failing. Missing
// objects and rejected names are answers, not failures.
type BreakerStore struct {
	next    ports.MediaStore
	breaker *circuitbreaker.CircuitBreaker
}

var _ ports.MediaStore = (*BreakerStore)(nil)

func NewBreakerStore(next ports.MediaStore, cfg circuitbreaker.Config, logger *zap.SugaredLogger) *BreakerStore {
	cfg.IsFailure = func(err error) bool {
		return !errors.Is(err, domain.ErrNotFound) &&
			!errors.Is(err, ErrInvalidName) &&
			!errors.Is(err, context.Canceled)
	}

	breaker := circuitbreaker.New(cfg)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("Media store circuit changed state",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return &BreakerStore{next: next, breaker: breaker}
}

func (s *BreakerStore) Save(ctx context.Context, name string, data io.Reader) error {
	ctx, span := tracing.TraceMediaOperation(ctx, "save", name)
	defer span.End()

	err := s.breaker.Execute(ctx, func() error {
		return s.next.Save(ctx, name, data)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
	}
	return err
}

func (s *BreakerStore) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	ctx, span := tracing.TraceMediaOperation(ctx, "load", name)
	defer span.End()

	rc, err := circuitbreaker.Call(ctx, s.breaker, func() (io.ReadCloser, error) {
		return s.next.Load(ctx, name)
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		tracing.RecordError(ctx, err)
	}
	return rc, err
}

func (s *BreakerStore) Delete(ctx context.Context, name string) error {
	ctx, span := tracing.TraceMediaOperation(ctx, "delete", name)
	defer span.End()

	err := s.breaker.Execute(ctx, func() error {
		return s.next.Delete(ctx, name)
	})
	if err != nil {
		tracing.RecordError(ctx, err)
	}
	return err
}

func (s *BreakerStore) State() circuitbreaker.State {
	return s.breaker.State()
}
