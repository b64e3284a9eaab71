package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "reelhub:"
	schemaVersionKey = keyPrefix + "schema:version"
	migrationLockKey = keyPrefix + "schema:lock"
)

var sequencedEntities = []string{"show", "episode", "account", "transaction", "campaign"}

func sequenceKey(entity string) string {
	return keyPrefix + entity + ":seq"
}

func entityKey(entity string, id int64) string {
	return keyPrefix + entity + ":" + strconv.FormatInt(id, 10)
}

func indexKey(parts ...string) string {
	return keyPrefix + strings.Join(parts, ":")
}

func nextID(ctx context.Context, client *redis.Client, entity string) (int64, error) {
	id, err := client.Incr(ctx, sequenceKey(entity)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", entity, err)
	}
	return id, nil
}

// loadIndexed fetches every JSON record referenced by a sorted-set index in score order.
func loadIndexed[T any](ctx context.Context, client *redis.Client, index, entity string) ([]*T, error) {
	ids, err := client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", index, err)
	}
	out := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + entity + ":" + id
	}
	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s records: %w", entity, err)
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a record
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", entity, err)
		}
		out = append(out, &item)
	}
	return out, nil
}
