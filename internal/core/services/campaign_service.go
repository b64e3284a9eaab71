package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/pkg/validation"

	"go.uber.org/zap"
)

type campaignService struct {
	campaigns ports.CampaignRepository
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewCampaignService(campaigns ports.CampaignRepository, logger *zap.SugaredLogger) ports.CampaignService {
	return &campaignService{
		campaigns: campaigns,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *campaignService) Create(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	if err := checkCampaign(campaign); err != nil {
		return nil, err
	}
	campaign.CreatedAt = s.now().UTC()

	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", campaign.Kind, err)
	}

	s.logger.Infow("Campaign created",
		"campaign_id", campaign.ID,
		"kind", campaign.Kind,
		"discount_percent", campaign.DiscountPercent.String(),
	)
	return campaign, nil
}

func (s *campaignService) List(ctx context.Context, kind domain.CampaignKind) ([]*domain.Campaign, error) {
	return s.campaigns.ListByKind(ctx, kind)
}

func checkCampaign(c *domain.Campaign) error {
	if c == nil {
		return fmt.Errorf("%w: campaign is required", ErrInvalidSubmission)
	}
	switch c.Kind {
	case domain.CampaignPromotion, domain.CampaignOffer:
	default:
		return fmt.Errorf("%w: unknown campaign kind %q", ErrInvalidSubmission, c.Kind)
	}

	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)

	checks := []error{
		validation.ValidateStringLength(c.Title, 1, 200, "title"),
		validation.ValidateStringLength(c.Description, 0, 5000, "description"),
		validation.ValidateDiscountPercent(c.DiscountPercent),
		validation.ValidatePeriod(c.StartsAt, c.EndsAt),
	}
	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
		}
	}
	return nil
}
