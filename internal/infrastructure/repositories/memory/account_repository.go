package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/shopspring/decimal"
)

type MemoryAccountRepository struct {
	accounts map[int64]*domain.UserAccount
	byEmail  map[string]int64
	nextID   int64
	mu       sync.RWMutex
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[int64]*domain.UserAccount),
		byEmail:  make(map[string]int64),
	}
}

var _ ports.AccountRepository = (*MemoryAccountRepository)(nil)

func (r *MemoryAccountRepository) Create(ctx context.Context, account *domain.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, exists := r.byEmail[email]; exists {
		return domain.ErrEmailTaken
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	r.nextID++
	account.ID = r.nextID
	stored := *account
	r.accounts[account.ID] = &stored
	r.byEmail[email] = account.ID
	return nil
}

func (r *MemoryAccountRepository) GetByID(ctx context.Context, id int64) (*domain.UserAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, domain.ErrAccountNotFound
	}
	out := *account
	return &out, nil
}

func (r *MemoryAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, domain.ErrAccountNotFound
	}
	out := *r.accounts[id]
	return &out, nil
}

func (r *MemoryAccountRepository) List(ctx context.Context) ([]*domain.UserAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*domain.UserAccount, 0, len(r.accounts))
	for _, account := range r.accounts {
		out := *account
		accounts = append(accounts, &out)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// joinEvents returns one event per account.
func (r *MemoryAccountRepository) joinEvents() []domain.MetricEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	one := decimal.NewFromInt(1)
	events := make([]domain.MetricEvent, 0, len(r.accounts))
	for _, account := range r.accounts {
		events = append(events, domain.MetricEvent{At: account.CreatedAt, Value: one})
	}
	return events
}
