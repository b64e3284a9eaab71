package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// The event log is one sorted set per metric scored by unix milliseconds.
// User joins store the account id as member; income stores "<txid>:<amount>".
func metricKey(metric domain.Metric) string {
	return indexKey("metric", string(metric))
}

func incomeMember(txID int64, amount decimal.Decimal) string {
	return strconv.FormatInt(txID, 10) + ":" + amount.String()
}

func parseEventValue(metric domain.Metric, member string) (decimal.Decimal, error) {
	if metric == domain.MetricUserJoins {
		return decimal.NewFromInt(1), nil
	}
	_, amount, ok := strings.Cut(member, ":")
	if !ok {
		return decimal.Zero, fmt.Errorf("corrupt income event %q", member)
	}
	return decimal.NewFromString(amount)
}

type RedisMetricRepository struct {
	client *redis.Client
}

func NewRedisMetricRepository(client *redis.Client) ports.MetricRepository {
	return &RedisMetricRepository{client: client}
}

func (r *RedisMetricRepository) rangeByScore(ctx context.Context, metric domain.Metric, min, max string) ([]redis.Z, error) {
	if _, err := domain.ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	rows, err := r.client.ZRangeByScoreWithScores(ctx, metricKey(metric), &redis.ZRangeBy{Min: min, Max: max}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s events: %w", metric, err)
	}
	return rows, nil
}

// Baseline counts user joins with ZCOUNT. Income members are read back and
// summed as decimals, since Redis arithmetic on them would be floating point.
func (r *RedisMetricRepository) Baseline(ctx context.Context, metric domain.Metric, before time.Time) (decimal.Decimal, int64, error) {
	upper := "(" + strconv.FormatInt(before.UnixMilli(), 10)
	if metric == domain.MetricUserJoins {
		n, err := r.client.ZCount(ctx, metricKey(metric), "-inf", upper).Result()
		if err != nil {
			return decimal.Zero, 0, fmt.Errorf("failed to count %s events: %w", metric, err)
		}
		return decimal.NewFromInt(n), n, nil
	}

	rows, err := r.rangeByScore(ctx, metric, "-inf", upper)
	if err != nil {
		return decimal.Zero, 0, err
	}

	sum := decimal.Zero
	for _, row := range rows {
		v, err := parseEventValue(metric, row.Member.(string))
		if err != nil {
			return decimal.Zero, 0, err
		}
		sum = sum.Add(v)
	}
	return sum, int64(len(rows)), nil
}

func (r *RedisMetricRepository) Events(ctx context.Context, metric domain.Metric, from, to time.Time) ([]domain.MetricEvent, error) {
	rows, err := r.rangeByScore(ctx, metric,
		strconv.FormatInt(from.UnixMilli(), 10),
		"("+strconv.FormatInt(to.UnixMilli(), 10),
	)
	if err != nil {
		return nil, err
	}

	events := make([]domain.MetricEvent, 0, len(rows))
	for _, row := range rows {
		v, err := parseEventValue(metric, row.Member.(string))
		if err != nil {
			return nil, err
		}
		events = append(events, domain.MetricEvent{
			At:    time.UnixMilli(int64(row.Score)).UTC(),
			Value: v,
		})
	}
	return events, nil
}
