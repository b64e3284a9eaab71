package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/shopspring/decimal"
)

type SQLiteMetricRepository struct {
	db *sql.DB
}

func NewSQLiteMetricRepository(db *sql.DB) ports.MetricRepository {
	return &SQLiteMetricRepository{db: db}
}

func (r *SQLiteMetricRepository) Baseline(ctx context.Context, metric domain.Metric, before time.Time) (decimal.Decimal, int64, error) {
	switch metric {
	case domain.MetricUserJoins:
		var rows int64
		err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM accounts WHERE created_at < ?", toNanos(before)).Scan(&rows)
		if err != nil {
			return decimal.Zero, 0, fmt.Errorf("failed to count accounts: %w", err)
		}
		return decimal.NewFromInt(rows), rows, nil

	case domain.MetricIncome:
		// Amounts are decimal text; SUM would go through float.
		events, err := r.incomeEvents(ctx, "WHERE created_at < ?", toNanos(before))
		if err != nil {
			return decimal.Zero, 0, err
		}
		sum := decimal.Zero
		for _, ev := range events {
			sum = sum.Add(ev.Value)
		}
		return sum, int64(len(events)), nil

	default:
		return decimal.Zero, 0, fmt.Errorf("unknown metric %q", metric)
	}
}

func (r *SQLiteMetricRepository) Events(ctx context.Context, metric domain.Metric, from, to time.Time) ([]domain.MetricEvent, error) {
	switch metric {
	case domain.MetricUserJoins:
		rows, err := r.db.QueryContext(ctx,
			"SELECT created_at FROM accounts WHERE created_at >= ? AND created_at < ? ORDER BY created_at",
			toNanos(from), toNanos(to))
		if err != nil {
			return nil, fmt.Errorf("failed to query account events: %w", err)
		}
		defer rows.Close()

		one := decimal.NewFromInt(1)
		events := make([]domain.MetricEvent, 0)
		for rows.Next() {
			var at int64
			if err := rows.Scan(&at); err != nil {
				return nil, fmt.Errorf("failed to scan account event: %w", err)
			}
			events = append(events, domain.MetricEvent{At: fromNanos(at), Value: one})
		}
		return events, rows.Err()

	case domain.MetricIncome:
		return r.incomeEvents(ctx, "WHERE created_at >= ? AND created_at < ?", toNanos(from), toNanos(to))

	default:
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
}

func (r *SQLiteMetricRepository) incomeEvents(ctx context.Context, where string, args ...any) ([]domain.MetricEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT amount, created_at FROM transactions "+where+" ORDER BY created_at, id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query income events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.MetricEvent, 0)
	for rows.Next() {
		var amount string
		var at int64
		if err := rows.Scan(&amount, &at); err != nil {
			return nil, fmt.Errorf("failed to scan income event: %w", err)
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		events = append(events, domain.MetricEvent{At: fromNanos(at), Value: value})
	}
	return events, rows.Err()
}
