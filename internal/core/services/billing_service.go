package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"go.uber.org/zap"
)

type BillingConfig struct {
	Plans []domain.Plan
}

type billingService struct {
	transactions ports.TransactionRepository
	plans        map[string]domain.Plan
	logger       *zap.SugaredLogger
	now          func() time.Time
}

func NewBillingService(transactions ports.TransactionRepository, cfg BillingConfig, logger *zap.SugaredLogger) (ports.BillingService, error) {
	if len(cfg.Plans) == 0 {
		return nil, fmt.Errorf("at least one billing plan is required")
	}
	plans := make(map[string]domain.Plan, len(cfg.Plans))
	for _, plan := range cfg.Plans {
		if plan.Name == "" || !plan.Price.IsPositive() {
			return nil, fmt.Errorf("billing plan %q needs a name and a positive price", plan.Name)
		}
		if _, dup := plans[plan.Name]; dup {
			return nil, fmt.Errorf("billing plan %q is defined twice", plan.Name)
		}
		plans[plan.Name] = plan
	}

	return &billingService{
		transactions: transactions,
		plans:        plans,
		logger:       logger,
		now:          time.Now,
	}, nil
}

func (s *billingService) Plans(_ context.Context, scope domain.Scope) ([]domain.Plan, error) {
	if scope.Kind != domain.ScopeSelf {
		return nil, ErrScopeMismatch
	}
	out := make([]domain.Plan, 0, len(s.plans))
	for _, plan := range s.plans {
		out = append(out, plan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Subscribe charges the caller for a plan. The charge is the plan price at the
// time of purchase.
func (s *billingService) Subscribe(ctx context.Context, scope domain.Scope, planName string) (*domain.Receipt, error) {
	if scope.Kind != domain.ScopeSelf {
		return nil, ErrScopeMismatch
	}
	plan, ok := s.plans[strings.TrimSpace(planName)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown plan %q", ErrInvalidSubmission, planName)
	}

	tx := &domain.Transaction{
		SubjectID: scope.SubjectID,
		Amount:    plan.Price,
		CreatedAt: s.now().UTC(),
	}
	if err := s.transactions.Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	s.logger.Infow("Subscription purchased",
		"transaction_id", tx.ID,
		"subject_id", tx.SubjectID,
		"plan", plan.Name,
		"amount", tx.Amount.String(),
	)
	return &domain.Receipt{Plan: plan, Transaction: tx}, nil
}

func (s *billingService) ListTransactions(ctx context.Context, scope domain.Scope) ([]*domain.Transaction, error) {
	if scope.Kind != domain.ScopeSelf {
		return nil, ErrScopeMismatch
	}
	return s.transactions.ListBySubject(ctx, scope.SubjectID)
}
