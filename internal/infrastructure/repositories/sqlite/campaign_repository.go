package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/shopspring/decimal"
)

type SQLiteCampaignRepository struct {
	db *sql.DB
}

func NewSQLiteCampaignRepository(db *sql.DB) ports.CampaignRepository {
	return &SQLiteCampaignRepository{db: db}
}

func (r *SQLiteCampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	c.CreatedAt = nowIfZero(c.CreatedAt)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO campaigns (kind, title, description, discount_percent, starts_at, ends_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(c.Kind), c.Title, c.Description, c.DiscountPercent.String(),
		toNanos(c.StartsAt), toNanos(c.EndsAt), toNanos(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	c.ID = id
	return nil
}

func (r *SQLiteCampaignRepository) ListByKind(ctx context.Context, kind domain.CampaignKind) ([]*domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, title, description, discount_percent, starts_at, ends_at, created_at
		 FROM campaigns WHERE kind = ? ORDER BY id`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]*domain.Campaign, 0)
	for rows.Next() {
		var c domain.Campaign
		var k, discount string
		var startsAt, endsAt, createdAt int64
		if err := rows.Scan(&c.ID, &k, &c.Title, &c.Description, &discount,
			&startsAt, &endsAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		if c.DiscountPercent, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("corrupt discount %q: %w", discount, err)
		}
		c.Kind = domain.CampaignKind(k)
		c.StartsAt = fromNanos(startsAt)
		c.EndsAt = fromNanos(endsAt)
		c.CreatedAt = fromNanos(createdAt)
		campaigns = append(campaigns, &c)
	}
	return campaigns, rows.Err()
}
