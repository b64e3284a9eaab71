package ports

import (
	"context"
	"time"

	"reelhub/internal/core/domain"
)

type ClaimsCodec interface {
	Issue(claims domain.ClaimSet, ttl time.Duration) (string, error)
	Verify(credential string) (*domain.ClaimSet, error)
}

type PolicyEngine interface {
	Authorize(claims *domain.ClaimSet, action domain.Action) domain.Decision
}

type AggregationService interface {
	Aggregate(ctx context.Context, claims *domain.ClaimSet, metric domain.Metric, windowDays int) ([]domain.BucketPoint, error)
}

type CatalogService interface {
	CreateShow(ctx context.Context, scope domain.Scope, sub *domain.ShowSubmission) (*domain.Show, error)
	UpdateShow(ctx context.Context, scope domain.Scope, showID int64, update domain.ShowUpdate) (*domain.Show, error)
	GetShow(ctx context.Context, scope domain.Scope, showID int64) (*domain.Show, error)
	ListShows(ctx context.Context, scope domain.Scope) ([]*domain.Show, error)
	ShowOwner(ctx context.Context, showID int64) (domain.Target, error)
	CreateEpisode(ctx context.Context, scope domain.Scope, sub *domain.EpisodeSubmission) (*domain.Episode, error)
	UpdateEpisode(ctx context.Context, scope domain.Scope, showID, episodeID int64, update domain.EpisodeUpdate) (*domain.Episode, error)
	ListEpisodes(ctx context.Context, scope domain.Scope, showID int64) ([]*domain.Episode, error)
	ToggleFavorite(ctx context.Context, scope domain.Scope, showID int64) (*domain.FavoriteState, error)
	ListFavorites(ctx context.Context, scope domain.Scope) ([]*domain.Favorite, error)
}

// AuthService owns accounts and the credentials issued for them.
type AuthService interface {
	Register(ctx context.Context, email, displayName, password string) (*domain.UserAccount, error)
	Provision(ctx context.Context, req domain.NewAccount) (*domain.UserAccount, error)
	Login(ctx context.Context, email, password string) (*domain.UserAccount, *domain.Credential, error)
	Refresh(ctx context.Context, claims *domain.ClaimSet) (*domain.Credential, error)
	GetAccount(ctx context.Context, id int64) (*domain.UserAccount, error)
	ListAccounts(ctx context.Context) ([]*domain.UserAccount, error)
}

// BillingService sells subscriptions. Every purchase is recorded as a
// transaction, which is what income analytics sums.
type BillingService interface {
	Plans(ctx context.Context, scope domain.Scope) ([]domain.Plan, error)
	Subscribe(ctx context.Context, scope domain.Scope, planName string) (*domain.Receipt, error)
	ListTransactions(ctx context.Context, scope domain.Scope) ([]*domain.Transaction, error)
}

type CampaignService interface {
	Create(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error)
	List(ctx context.Context, kind domain.CampaignKind) ([]*domain.Campaign, error)
}
