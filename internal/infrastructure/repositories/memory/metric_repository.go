package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/shopspring/decimal"
)

// MemoryMetricRepository reads the event log straight from the account and
// transaction repositories.
type MemoryMetricRepository struct {
	accounts     *MemoryAccountRepository
	transactions *MemoryTransactionRepository
}

func NewMemoryMetricRepository(accounts *MemoryAccountRepository, transactions *MemoryTransactionRepository) *MemoryMetricRepository {
	return &MemoryMetricRepository{
		accounts:     accounts,
		transactions: transactions,
	}
}

var _ ports.MetricRepository = (*MemoryMetricRepository)(nil)

func (r *MemoryMetricRepository) events(metric domain.Metric) ([]domain.MetricEvent, error) {
	switch metric {
	case domain.MetricUserJoins:
		return r.accounts.joinEvents(), nil
	case domain.MetricIncome:
		return r.transactions.incomeEvents(), nil
	default:
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
}

func (r *MemoryMetricRepository) Baseline(ctx context.Context, metric domain.Metric, before time.Time) (decimal.Decimal, int64, error) {
	events, err := r.events(metric)
	if err != nil {
		return decimal.Zero, 0, err
	}

	sum := decimal.Zero
	var rows int64
	for _, ev := range events {
		if ev.At.Before(before) {
			sum = sum.Add(ev.Value)
			rows++
		}
	}
	return sum, rows, nil
}

func (r *MemoryMetricRepository) Events(ctx context.Context, metric domain.Metric, from, to time.Time) ([]domain.MetricEvent, error) {
	events, err := r.events(metric)
	if err != nil {
		return nil, err
	}

	window := make([]domain.MetricEvent, 0)
	for _, ev := range events {
		if !ev.At.Before(from) && ev.At.Before(to) {
			window = append(window, ev)
		}
	}
	sort.Slice(window, func(i, j int) bool { return window[i].At.Before(window[j].At) })
	return window, nil
}
