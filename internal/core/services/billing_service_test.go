package services

import (
	"context"
	"testing"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/infrastructure/repositories/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPlans() []domain.Plan {
	return []domain.Plan{
		{Name: "yearly", Price: decimal.RequireFromString("99.00")},
		{Name: "monthly", Price: decimal.RequireFromString("9.99")},
	}
}

func newTestBilling(t *testing.T, transactions ports.TransactionRepository, now time.Time) *billingService {
	t.Helper()
	svc, err := NewBillingService(transactions, BillingConfig{Plans: testPlans()}, zap.NewNop().Sugar())
	require.NoError(t, err)
	billing := svc.(*billingService)
	billing.now = func() time.Time { return now }
	return billing
}

func TestBillingService_RejectsBadPlans(t *testing.T) {
	repo := memory.NewMemoryTransactionRepository()
	cases := map[string][]domain.Plan{
		"none":      nil,
		"unnamed":   {{Price: decimal.NewFromInt(1)}},
		"free":      {{Name: "free", Price: decimal.Zero}},
		"duplicate": {{Name: "a", Price: decimal.NewFromInt(1)}, {Name: "a", Price: decimal.NewFromInt(2)}},
	}
	for name, plans := range cases {
		_, err := NewBillingService(repo, BillingConfig{Plans: plans}, zap.NewNop().Sugar())
		assert.Error(t, err, name)
	}
}

func TestBillingService_SubscribeRecordsTransaction(t *testing.T) {
	ctx := context.Background()
	billing := newTestBilling(t, memory.NewMemoryTransactionRepository(), aggregationNow)

	plans, err := billing.Plans(ctx, domain.SelfScope(20))
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "monthly", plans[0].Name)

	receipt, err := billing.Subscribe(ctx, domain.SelfScope(20), " monthly ")
	require.NoError(t, err)
	assert.Equal(t, "monthly", receipt.Plan.Name)
	assert.NotZero(t, receipt.Transaction.ID)
	assert.Equal(t, int64(20), receipt.Transaction.SubjectID)
	assert.True(t, decimal.RequireFromString("9.99").Equal(receipt.Transaction.Amount))
	assert.True(t, aggregationNow.Equal(receipt.Transaction.CreatedAt))

	_, err = billing.Subscribe(ctx, domain.SelfScope(21), "yearly")
	require.NoError(t, err)

	mine, err := billing.ListTransactions(ctx, domain.SelfScope(20))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, receipt.Transaction.ID, mine[0].ID)

	_, err = billing.Subscribe(ctx, domain.SelfScope(20), "lifetime")
	assert.ErrorIs(t, err, ErrInvalidSubmission)

	_, err = billing.Subscribe(ctx, domain.AnyScope(), "monthly")
	assert.ErrorIs(t, err, ErrScopeMismatch)
	_, err = billing.ListTransactions(ctx, domain.OwnedBy(1))
	assert.ErrorIs(t, err, ErrScopeMismatch)
}

func TestBillingService_PurchasesAreIncome(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	billing := newTestBilling(t, store.Transactions, fixtureDay(7, 9))

	for _, subject := range []int64{20, 21, 22} {
		_, err := billing.Subscribe(ctx, domain.SelfScope(subject), "monthly")
		require.NoError(t, err)
	}
	billing.now = func() time.Time { return fixtureDay(5, 9) }
	_, err := billing.Subscribe(ctx, domain.SelfScope(23), "yearly")
	require.NoError(t, err)

	agg := newTestAggregation(t, store.Metrics, time.UTC, aggregationNow)
	points, err := agg.Aggregate(ctx, marketingClaims, domain.MetricIncome, 7)
	require.NoError(t, err)
	assertSeries(t, points,
		[]decimal.Decimal{decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(99), decimal.Zero, decimal.RequireFromString("29.97")},
		[]decimal.Decimal{decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(99), decimal.NewFromInt(99), decimal.RequireFromString("128.97")},
	)
}
