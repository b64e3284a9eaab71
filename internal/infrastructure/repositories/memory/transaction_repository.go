package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
)

type MemoryTransactionRepository struct {
	transactions []*domain.Transaction
	nextID       int64
	mu           sync.RWMutex
}

func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{}
}

var _ ports.TransactionRepository = (*MemoryTransactionRepository)(nil)

func (r *MemoryTransactionRepository) Record(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	r.nextID++
	tx.ID = r.nextID
	stored := *tx
	r.transactions = append(r.transactions, &stored)
	return nil
}

func (r *MemoryTransactionRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Transaction, 0)
	for _, tx := range r.transactions {
		if tx.SubjectID == subjectID {
			copied := *tx
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryTransactionRepository) incomeEvents() []domain.MetricEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]domain.MetricEvent, 0, len(r.transactions))
	for _, tx := range r.transactions {
		events = append(events, domain.MetricEvent{At: tx.CreatedAt, Value: tx.Amount})
	}
	return events
}
