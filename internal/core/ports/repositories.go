package ports

import (
	"context"
	"time"

	"reelhub/internal/core/domain"

	"github.com/shopspring/decimal"
)

type ShowRepository interface {
	Create(ctx context.Context, show *domain.Show) error
	GetByID(ctx context.Context, id int64) (*domain.Show, error)
	Update(ctx context.Context, id int64, update domain.ShowUpdate) (*domain.Show, error)
	List(ctx context.Context) ([]*domain.Show, error)
	ListByOwner(ctx context.Context, publisherID int64) ([]*domain.Show, error)
}

type EpisodeRepository interface {
	Create(ctx context.Context, episode *domain.Episode) error
	GetByID(ctx context.Context, id int64) (*domain.Episode, error)
	Update(ctx context.Context, id int64, update domain.EpisodeUpdate) (*domain.Episode, error)
	ListByShow(ctx context.Context, showID int64) ([]*domain.Episode, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.UserAccount) error
	GetByID(ctx context.Context, id int64) (*domain.UserAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
	List(ctx context.Context) ([]*domain.UserAccount, error)
}

// FavoriteRepository must flip a favorite atomically: concurrent toggles for
// the same pair are serialized by the backend.
type FavoriteRepository interface {
	Toggle(ctx context.Context, subjectID, showID int64) (bool, error)
	ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Favorite, error)
}

type TransactionRepository interface {
	Record(ctx context.Context, tx *domain.Transaction) error
	ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Transaction, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	ListByKind(ctx context.Context, kind domain.CampaignKind) ([]*domain.Campaign, error)
}

// MetricRepository exposes the event log the aggregation engine buckets.
type MetricRepository interface {
	// Baseline returns the sum and row count of all events strictly before the given time.
	Baseline(ctx context.Context, metric domain.Metric, before time.Time) (decimal.Decimal, int64, error)
	// Events returns the events in [from, to) ordered by time.
	Events(ctx context.Context, metric domain.Metric, from, to time.Time) ([]domain.MetricEvent, error)
}

// Store groups every repository a storage backend provides.
type Store struct {
	Shows        ShowRepository
	Episodes     EpisodeRepository
	Accounts     AccountRepository
	Favorites    FavoriteRepository
	Transactions TransactionRepository
	Campaigns    CampaignRepository
	Metrics      MetricRepository
}
