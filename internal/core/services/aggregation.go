package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	apperrors "reelhub/pkg/errors"
	"reelhub/pkg/tracing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultMaxWindowDays = 366

type AggregationConfig struct {
	// Location decides where calendar days begin.
	Location      *time.Location
	MaxWindowDays int
	Now           func() time.Time
}

type aggregationService struct {
	policy  ports.PolicyEngine
	repo    ports.MetricRepository
	metrics ports.MetricsRecorder
	loc     *time.Location
	maxDays int
	now     func() time.Time
	logger  *zap.SugaredLogger
}

func NewAggregationService(
	policy ports.PolicyEngine,
	repo ports.MetricRepository,
	cfg AggregationConfig,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) ports.AggregationService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	maxDays := cfg.MaxWindowDays
	if maxDays <= 0 {
		maxDays = DefaultMaxWindowDays
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	return &aggregationService{
		policy:  policy,
		repo:    repo,
		metrics: metrics,
		loc:     loc,
		maxDays: maxDays,
		now:     now,
		logger:  logger,
	}
}

func (s *aggregationService) Aggregate(ctx context.Context, claims *domain.ClaimSet, metric domain.Metric, windowDays int) ([]domain.BucketPoint, error) {
	if _, err := domain.ParseMetric(string(metric)); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	decision := s.policy.Authorize(claims, domain.Action{
		Resource: metric.Resource(),
		Verb:     domain.VerbRead,
	})
	if !decision.Allowed {
		return nil, apperrors.NewForbiddenError("access denied")
	}

	if windowDays <= 0 || windowDays > s.maxDays {
		return nil, apperrors.NewInvalidWindowError(
			fmt.Sprintf("window must be between 1 and %d days", s.maxDays),
		)
	}

	ctx, span := tracing.TraceAggregation(ctx, string(metric), windowDays)
	defer span.End()

	start := time.Now()
	points, err := s.aggregate(ctx, metric, windowDays)
	s.metrics.RecordAggregation(string(metric), windowDays, time.Since(start), err)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.logger.Errorw("Aggregation failed",
			"metric", metric,
			"window_days", windowDays,
			"error", err,
		)
		return nil, apperrors.NewUpstreamError(err)
	}
	return points, nil
}

func (s *aggregationService) aggregate(ctx context.Context, metric domain.Metric, windowDays int) ([]domain.BucketPoint, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	windowStart := today.AddDate(0, 0, -(windowDays - 1))
	windowEnd := today.AddDate(0, 0, 1)

	baseline, baselineRows, err := s.repo.Baseline(ctx, metric, windowStart)
	if err != nil {
		return nil, fmt.Errorf("baseline %s: %w", metric, err)
	}
	events, err := s.repo.Events(ctx, metric, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("events %s: %w", metric, err)
	}

	// No history at all is a valid, empty answer.
	if baselineRows == 0 && len(events) == 0 {
		return []domain.BucketPoint{}, nil
	}

	points := make([]domain.BucketPoint, windowDays)
	for i := range points {
		points[i] = domain.BucketPoint{
			Bucket: domain.Bucket{
				Start: windowStart.AddDate(0, 0, i),
				End:   windowStart.AddDate(0, 0, i+1),
			},
			Raw: decimal.Zero,
		}
	}

	one := decimal.NewFromInt(1)
	for _, ev := range events {
		idx := sort.Search(len(points), func(i int) bool {
			return points[i].End.After(ev.At)
		})
		if idx == len(points) || !points[idx].Contains(ev.At) {
			continue
		}
		if metric == domain.MetricUserJoins {
			points[idx].Raw = points[idx].Raw.Add(one)
		} else {
			points[idx].Raw = points[idx].Raw.Add(ev.Value)
		}
	}

	running := baseline
	for i := range points {
		running = running.Add(points[i].Raw)
		points[i].Cumulative = running
	}
	return points, nil
}
