package redis

import (
	"reelhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

func NewStore(client *redis.Client) *ports.Store {
	return &ports.Store{
		Shows:        NewRedisShowRepository(client),
		Episodes:     NewRedisEpisodeRepository(client),
		Accounts:     NewRedisAccountRepository(client),
		Favorites:    NewRedisFavoriteRepository(client),
		Transactions: NewRedisTransactionRepository(client),
		Campaigns:    NewRedisCampaignRepository(client),
		Metrics:      NewRedisMetricRepository(client),
	}
}
