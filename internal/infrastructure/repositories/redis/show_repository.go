package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 5

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type RedisShowRepository struct {
	client *redis.Client
}

func NewRedisShowRepository(client *redis.Client) ports.ShowRepository {
	return &RedisShowRepository{client: client}
}

func (r *RedisShowRepository) allKey() string {
	return indexKey("shows")
}

func (r *RedisShowRepository) ownerKey(publisherID int64) string {
	return indexKey("publisher", strconv.FormatInt(publisherID, 10), "shows")
}

func (r *RedisShowRepository) Create(ctx context.Context, show *domain.Show) error {
	id, err := nextID(ctx, r.client, "show")
	if err != nil {
		return err
	}
	show.ID = id

	data, err := json.Marshal(show)
	if err != nil {
		return fmt.Errorf("failed to marshal show: %w", err)
	}

	member := redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entityKey("show", id), data, 0)
		pipe.ZAdd(ctx, r.allKey(), member)
		pipe.ZAdd(ctx, r.ownerKey(show.OwnerPublisherID), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store show in Redis: %w", err)
	}
	return nil
}

func (r *RedisShowRepository) GetByID(ctx context.Context, id int64) (*domain.Show, error) {
	return r.get(ctx, r.client, id)
}

func (r *RedisShowRepository) get(ctx context.Context, cmd getter, id int64) (*domain.Show, error) {
	data, err := cmd.Get(ctx, entityKey("show", id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrShowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get show from Redis: %w", err)
	}

	var show domain.Show
	if err := json.Unmarshal(data, &show); err != nil {
		return nil, fmt.Errorf("failed to unmarshal show: %w", err)
	}
	return &show, nil
}

// Update rewrites the record under WATCH so concurrent edits do not drop fields.
func (r *RedisShowRepository) Update(ctx context.Context, id int64, update domain.ShowUpdate) (*domain.Show, error) {
	key := entityKey("show", id)
	var updated *domain.Show

	txf := func(tx *redis.Tx) error {
		show, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if update.Title != nil {
			show.Title = *update.Title
		}
		if update.Description != nil {
			show.Description = *update.Description
		}
		if update.Genre != nil {
			show.Genre = *update.Genre
		}
		if update.MovieLink != nil {
			show.MovieLink = *update.MovieLink
		}

		data, err := json.Marshal(show)
		if err != nil {
			return fmt.Errorf("failed to marshal show: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			updated = show
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("failed to update show %d: too much contention", id)
}

func (r *RedisShowRepository) List(ctx context.Context) ([]*domain.Show, error) {
	return loadIndexed[domain.Show](ctx, r.client, r.allKey(), "show")
}

func (r *RedisShowRepository) ListByOwner(ctx context.Context, publisherID int64) ([]*domain.Show, error) {
	return loadIndexed[domain.Show](ctx, r.client, r.ownerKey(publisherID), "show")
}
