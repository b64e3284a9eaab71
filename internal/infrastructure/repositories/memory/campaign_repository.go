package memory

import (
	"context"
	"sort"
	"sync"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
)

type MemoryCampaignRepository struct {
	campaigns map[int64]*domain.Campaign
	nextID    int64
	mu        sync.RWMutex
}

func NewMemoryCampaignRepository() *MemoryCampaignRepository {
	return &MemoryCampaignRepository{
		campaigns: make(map[int64]*domain.Campaign),
	}
}

var _ ports.CampaignRepository = (*MemoryCampaignRepository)(nil)

func (r *MemoryCampaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	campaign.ID = r.nextID
	stored := *campaign
	r.campaigns[campaign.ID] = &stored
	return nil
}

func (r *MemoryCampaignRepository) ListByKind(ctx context.Context, kind domain.CampaignKind) ([]*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	campaigns := make([]*domain.Campaign, 0)
	for _, c := range r.campaigns {
		if c.Kind == kind {
			out := *c
			campaigns = append(campaigns, &out)
		}
	}
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].ID < campaigns[j].ID })
	return campaigns, nil
}
