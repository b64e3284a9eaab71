package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// toggleScript flips one field of the subject's favorites hash in a single
// server-side step and returns the new state.
var toggleScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	redis.call('HDEL', KEYS[1], ARGV[1])
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

type RedisFavoriteRepository struct {
	client *redis.Client
}

func NewRedisFavoriteRepository(client *redis.Client) ports.FavoriteRepository {
	return &RedisFavoriteRepository{client: client}
}

func (r *RedisFavoriteRepository) subjectKey(subjectID int64) string {
	return indexKey("favorites", strconv.FormatInt(subjectID, 10))
}

func (r *RedisFavoriteRepository) Toggle(ctx context.Context, subjectID, showID int64) (bool, error) {
	state, err := toggleScript.Run(ctx, r.client,
		[]string{r.subjectKey(subjectID)},
		strconv.FormatInt(showID, 10),
		time.Now().UTC().UnixMilli(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return state == 1, nil
}

func (r *RedisFavoriteRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Favorite, error) {
	entries, err := r.client.HGetAll(ctx, r.subjectKey(subjectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	favorites := make([]*domain.Favorite, 0, len(entries))
	for field, value := range entries {
		showID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt favorite entry %q: %w", field, err)
		}
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt favorite timestamp %q: %w", value, err)
		}
		favorites = append(favorites, &domain.Favorite{
			SubjectID: subjectID,
			ShowID:    showID,
			CreatedAt: time.UnixMilli(ms).UTC(),
		})
	}
	sort.Slice(favorites, func(i, j int) bool { return favorites[i].ShowID < favorites[j].ShowID })
	return favorites, nil
}
