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

type RedisEpisodeRepository struct {
	client *redis.Client
}

func NewRedisEpisodeRepository(client *redis.Client) ports.EpisodeRepository {
	return &RedisEpisodeRepository{client: client}
}

func (r *RedisEpisodeRepository) showKey(showID int64) string {
	return indexKey("show", strconv.FormatInt(showID, 10), "episodes")
}

func (r *RedisEpisodeRepository) Create(ctx context.Context, episode *domain.Episode) error {
	id, err := nextID(ctx, r.client, "episode")
	if err != nil {
		return err
	}
	episode.ID = id

	data, err := json.Marshal(episode)
	if err != nil {
		return fmt.Errorf("failed to marshal episode: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entityKey("episode", id), data, 0)
		pipe.ZAdd(ctx, r.showKey(episode.ShowID), redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store episode in Redis: %w", err)
	}
	return nil
}

func (r *RedisEpisodeRepository) GetByID(ctx context.Context, id int64) (*domain.Episode, error) {
	return r.get(ctx, r.client, id)
}

func (r *RedisEpisodeRepository) get(ctx context.Context, cmd getter, id int64) (*domain.Episode, error) {
	data, err := cmd.Get(ctx, entityKey("episode", id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrEpisodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get episode from Redis: %w", err)
	}

	var episode domain.Episode
	if err := json.Unmarshal(data, &episode); err != nil {
		return nil, fmt.Errorf("failed to unmarshal episode: %w", err)
	}
	return &episode, nil
}

// Update rewrites the episode record under WATCH so concurrent edits do not
// overwrite each other's fields.
func (r *RedisEpisodeRepository) Update(ctx context.Context, id int64, update domain.EpisodeUpdate) (*domain.Episode, error) {
	key := entityKey("episode", id)
	var updated *domain.Episode

	txf := func(tx *redis.Tx) error {
		episode, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if update.Title != nil {
			episode.Title = *update.Title
		}
		if update.Description != nil {
			episode.Description = *update.Description
		}
		if update.EpisodeLink != nil {
			episode.EpisodeLink = *update.EpisodeLink
		}

		data, err := json.Marshal(episode)
		if err != nil {
			return fmt.Errorf("failed to marshal episode: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			updated = episode
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
	return nil, fmt.Errorf("failed to update episode %d: too much contention", id)
}

func (r *RedisEpisodeRepository) ListByShow(ctx context.Context, showID int64) ([]*domain.Episode, error) {
	return loadIndexed[domain.Episode](ctx, r.client, r.showKey(showID), "episode")
}
