package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisCampaignRepository struct {
	client *redis.Client
}

func NewRedisCampaignRepository(client *redis.Client) ports.CampaignRepository {
	return &RedisCampaignRepository{client: client}
}

func (r *RedisCampaignRepository) kindKey(kind domain.CampaignKind) string {
	return indexKey("campaigns", string(kind))
}

func (r *RedisCampaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	id, err := nextID(ctx, r.client, "campaign")
	if err != nil {
		return err
	}
	campaign.ID = id

	data, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entityKey("campaign", id), data, 0)
		pipe.ZAdd(ctx, r.kindKey(campaign.Kind), redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store campaign in Redis: %w", err)
	}
	return nil
}

func (r *RedisCampaignRepository) ListByKind(ctx context.Context, kind domain.CampaignKind) ([]*domain.Campaign, error) {
	return loadIndexed[domain.Campaign](ctx, r.client, r.kindKey(kind), "campaign")
}
