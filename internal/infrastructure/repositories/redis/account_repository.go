package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// accountRecord is the stored form; the domain type hides the password hash from JSON.
type accountRecord struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	RoleKind     string    `json:"role"`
	PublisherID  int64     `json:"publisher_id,omitempty"`
	AdminSubtype string    `json:"admin_subtype,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAccountRecord(a *domain.UserAccount) accountRecord {
	return accountRecord{
		ID:           a.ID,
		Email:        a.Email,
		DisplayName:  a.DisplayName,
		PasswordHash: a.PasswordHash,
		RoleKind:     string(a.RoleKind),
		PublisherID:  a.PublisherID,
		AdminSubtype: string(a.AdminSubtype),
		CreatedAt:    a.CreatedAt,
	}
}

func (rec *accountRecord) toDomain() *domain.UserAccount {
	return &domain.UserAccount{
		ID:           rec.ID,
		Email:        rec.Email,
		DisplayName:  rec.DisplayName,
		PasswordHash: rec.PasswordHash,
		RoleKind:     domain.RoleKind(rec.RoleKind),
		PublisherID:  rec.PublisherID,
		AdminSubtype: domain.AdminSubtype(rec.AdminSubtype),
		CreatedAt:    rec.CreatedAt,
	}
}

type RedisAccountRepository struct {
	client *redis.Client
}

func NewRedisAccountRepository(client *redis.Client) ports.AccountRepository {
	return &RedisAccountRepository{client: client}
}

func (r *RedisAccountRepository) emailKey(email string) string {
	return indexKey("account", "email", strings.ToLower(email))
}

func (r *RedisAccountRepository) Create(ctx context.Context, account *domain.UserAccount) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	id, err := nextID(ctx, r.client, "account")
	if err != nil {
		return err
	}

	// The email index is claimed first; losing the race means the address is taken.
	claimed, err := r.client.SetNX(ctx, r.emailKey(account.Email), id, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve email: %w", err)
	}
	if !claimed {
		return domain.ErrEmailTaken
	}

	account.ID = id
	data, err := json.Marshal(toAccountRecord(account))
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	member := strconv.FormatInt(id, 10)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entityKey("account", id), data, 0)
		pipe.ZAdd(ctx, indexKey("accounts"), redis.Z{Score: float64(id), Member: member})
		pipe.ZAdd(ctx, metricKey(domain.MetricUserJoins), redis.Z{
			Score:  float64(account.CreatedAt.UnixMilli()),
			Member: member,
		})
		return nil
	})
	if err != nil {
		r.client.Del(ctx, r.emailKey(account.Email))
		return fmt.Errorf("failed to store account in Redis: %w", err)
	}
	return nil
}

func (r *RedisAccountRepository) GetByID(ctx context.Context, id int64) (*domain.UserAccount, error) {
	data, err := r.client.Get(ctx, entityKey("account", id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account from Redis: %w", err)
	}

	var rec accountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *RedisAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	id, err := r.client.Get(ctx, r.emailKey(email)).Int64()
	if err == redis.Nil {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *RedisAccountRepository) List(ctx context.Context) ([]*domain.UserAccount, error) {
	records, err := loadIndexed[accountRecord](ctx, r.client, indexKey("accounts"), "account")
	if err != nil {
		return nil, err
	}
	accounts := make([]*domain.UserAccount, len(records))
	for i, rec := range records {
		accounts[i] = rec.toDomain()
	}
	return accounts, nil
}
