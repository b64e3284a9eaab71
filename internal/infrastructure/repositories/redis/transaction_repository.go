package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisTransactionRepository struct {
	client *redis.Client
}

func NewRedisTransactionRepository(client *redis.Client) ports.TransactionRepository {
	return &RedisTransactionRepository{client: client}
}

func (r *RedisTransactionRepository) subjectKey(subjectID int64) string {
	return indexKey("subject", strconv.FormatInt(subjectID, 10), "transactions")
}

func (r *RedisTransactionRepository) Record(ctx context.Context, tx *domain.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	id, err := nextID(ctx, r.client, "transaction")
	if err != nil {
		return err
	}
	tx.ID = id

	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.subjectKey(tx.SubjectID), data)
		pipe.ZAdd(ctx, metricKey(domain.MetricIncome), redis.Z{
			Score:  float64(tx.CreatedAt.UnixMilli()),
			Member: incomeMember(id, tx.Amount),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record transaction in Redis: %w", err)
	}
	return nil
}

func (r *RedisTransactionRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Transaction, error) {
	raw, err := r.client.LRange(ctx, r.subjectKey(subjectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]*domain.Transaction, 0, len(raw))
	for _, item := range raw {
		var tx domain.Transaction
		if err := json.Unmarshal([]byte(item), &tx); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
		}
		txs = append(txs, &tx)
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].CreatedAt.Before(txs[j].CreatedAt) })
	return txs, nil
}
