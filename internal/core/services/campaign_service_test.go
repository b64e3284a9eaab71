package services

import (
	"context"
	"testing"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/infrastructure/repositories/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func springPromotion() *domain.Campaign {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Campaign{
		Kind:            domain.CampaignPromotion,
		Title:           " Spring sale ",
		Description:     "Everything drama, discounted.",
		DiscountPercent: decimal.RequireFromString("15"),
		StartsAt:        start,
		EndsAt:          start.AddDate(0, 0, 14),
	}
}

func TestCampaignService_CreateAndList(t *testing.T) {
	svc := NewCampaignService(memory.NewMemoryCampaignRepository(), zap.NewNop().Sugar())
	ctx := context.Background()

	created, err := svc.Create(ctx, springPromotion())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Spring sale", created.Title)
	assert.False(t, created.CreatedAt.IsZero())

	offer := springPromotion()
	offer.Kind = domain.CampaignOffer
	_, err = svc.Create(ctx, offer)
	require.NoError(t, err)

	promotions, err := svc.List(ctx, domain.CampaignPromotion)
	require.NoError(t, err)
	assert.Len(t, promotions, 1)

	offers, err := svc.List(ctx, domain.CampaignOffer)
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestCampaignService_RejectsInvalid(t *testing.T) {
	svc := NewCampaignService(memory.NewMemoryCampaignRepository(), zap.NewNop().Sugar())

	tests := []struct {
		name   string
		mutate func(c *domain.Campaign)
	}{
		{"unknown kind", func(c *domain.Campaign) { c.Kind = "coupon" }},
		{"blank title", func(c *domain.Campaign) { c.Title = "  " }},
		{"zero discount", func(c *domain.Campaign) { c.DiscountPercent = decimal.Zero }},
		{"discount over 100", func(c *domain.Campaign) { c.DiscountPercent = decimal.NewFromInt(101) }},
		{"reversed period", func(c *domain.Campaign) { c.EndsAt = c.StartsAt.Add(-time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := springPromotion()
			tt.mutate(c)
			_, err := svc.Create(context.Background(), c)
			assert.ErrorIs(t, err, ErrInvalidSubmission)
		})
	}

	_, err := svc.Create(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}
