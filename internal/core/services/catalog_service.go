package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/pkg/cache"
	"reelhub/pkg/validation"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrScopeMismatch means an operation was invoked with a grant of the wrong kind.
var ErrScopeMismatch = errors.New("scope does not permit operation")

// Show ownership never changes, so owner lookups made while resolving
// gateway targets can be served from memory.
const (
	ownerCacheTTL     = 10 * time.Minute
	ownerCacheEntries = 10000
)

type catalogService struct {
	shows     ports.ShowRepository
	episodes  ports.EpisodeRepository
	favorites ports.FavoriteRepository
	media     ports.MediaStore
	metrics   ports.MetricsRecorder
	owners    *cache.Cache[int64, int64]
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewCatalogService(
	shows ports.ShowRepository,
	episodes ports.EpisodeRepository,
	favorites ports.FavoriteRepository,
	media ports.MediaStore,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) ports.CatalogService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &catalogService{
		shows:     shows,
		episodes:  episodes,
		favorites: favorites,
		media:     media,
		metrics:   metrics,
		owners:    cache.New(ownerCacheTTL, cache.WithMaxEntries[int64, int64](ownerCacheEntries)),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *catalogService) CreateShow(ctx context.Context, scope domain.Scope, sub *domain.ShowSubmission) (*domain.Show, error) {
	if scope.Kind != domain.ScopeOwnedBy {
		return nil, ErrScopeMismatch
	}

	ref, err := s.storeImage(ctx, sub.Image)
	if err != nil {
		return nil, err
	}

	show := &domain.Show{
		OwnerPublisherID: scope.PublisherID,
		Title:            sub.Title,
		Description:      sub.Description,
		Genre:            sub.Genre,
		Category:         sub.Category,
		MovieLink:        sub.MovieLink,
		ImageRef:         ref,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.shows.Create(ctx, show); err != nil {
		s.discardImage(ctx, ref)
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	s.logger.Infow("Show created",
		"show_id", show.ID,
		"publisher_id", show.OwnerPublisherID,
		"category", show.Category,
	)
	return show, nil
}

func (s *catalogService) UpdateShow(ctx context.Context, scope domain.Scope, showID int64, update domain.ShowUpdate) (*domain.Show, error) {
	if scope.Kind != domain.ScopeOwnedBy {
		return nil, ErrScopeMismatch
	}
	show, err := s.scopedShow(ctx, scope, showID)
	if err != nil {
		return nil, err
	}
	if err := checkShowUpdate(show, &update); err != nil {
		return nil, err
	}

	updated, err := s.shows.Update(ctx, showID, update)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Show updated", "show_id", showID, "publisher_id", scope.PublisherID)
	return updated, nil
}

// checkShowUpdate trims the provided fields and keeps the category rule intact.
func checkShowUpdate(show *domain.Show, update *domain.ShowUpdate) error {
	fields := []struct {
		name  string
		value *string
		max   int
	}{
		{"title", update.Title, 200},
		{"description", update.Description, 5000},
		{"genre", update.Genre, 100},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if err := validation.ValidateNonEmptyString(*f.value, f.name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
		}
		if err := validation.ValidateStringLength(*f.value, 1, f.max, f.name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
		}
	}

	if update.MovieLink != nil {
		*update.MovieLink = strings.TrimSpace(*update.MovieLink)
		switch show.Category {
		case domain.CategoryMovie:
			if *update.MovieLink == "" {
				return fmt.Errorf("%w: movie link is required for movies", ErrInvalidSubmission)
			}
			if err := validation.ValidateURL(*update.MovieLink); err != nil {
				return fmt.Errorf("%w: movie link: %v", ErrInvalidSubmission, err)
			}
		case domain.CategorySeries:
			if *update.MovieLink != "" {
				return fmt.Errorf("%w: movie link must be empty for series", ErrInvalidSubmission)
			}
		}
	}
	return nil
}

func (s *catalogService) GetShow(ctx context.Context, scope domain.Scope, showID int64) (*domain.Show, error) {
	return s.scopedShow(ctx, scope, showID)
}

func (s *catalogService) ListShows(ctx context.Context, scope domain.Scope) ([]*domain.Show, error) {
	switch scope.Kind {
	case domain.ScopeAny:
		return s.shows.List(ctx)
	case domain.ScopeOwnedBy:
		return s.shows.ListByOwner(ctx, scope.PublisherID)
	default:
		return nil, ErrScopeMismatch
	}
}

func (s *catalogService) ShowOwner(ctx context.Context, showID int64) (domain.Target, error) {
	owner, err := s.owners.GetOrLoad(ctx, showID, func(ctx context.Context) (int64, error) {
		show, err := s.shows.GetByID(ctx, showID)
		if err != nil {
			return 0, err
		}
		return show.OwnerPublisherID, nil
	})
	if err != nil {
		return domain.Target{}, err
	}
	return domain.Target{OwnerPublisherID: &owner}, nil
}

func (s *catalogService) CreateEpisode(ctx context.Context, scope domain.Scope, sub *domain.EpisodeSubmission) (*domain.Episode, error) {
	if scope.Kind != domain.ScopeOwnedBy {
		return nil, ErrScopeMismatch
	}
	if _, err := s.scopedShow(ctx, scope, sub.ShowID); err != nil {
		return nil, err
	}

	ref, err := s.storeImage(ctx, sub.Image)
	if err != nil {
		return nil, err
	}

	episode := &domain.Episode{
		ShowID:      sub.ShowID,
		Title:       sub.Title,
		Description: sub.Description,
		EpisodeLink: sub.EpisodeLink,
		ImageRef:    ref,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.episodes.Create(ctx, episode); err != nil {
		s.discardImage(ctx, ref)
		return nil, fmt.Errorf("failed to create episode: %w", err)
	}

	s.logger.Infow("Episode created", "episode_id", episode.ID, "show_id", episode.ShowID)
	return episode, nil
}

func (s *catalogService) UpdateEpisode(ctx context.Context, scope domain.Scope, showID, episodeID int64, update domain.EpisodeUpdate) (*domain.Episode, error) {
	if scope.Kind != domain.ScopeOwnedBy {
		return nil, ErrScopeMismatch
	}
	if _, err := s.scopedShow(ctx, scope, showID); err != nil {
		return nil, err
	}
	episode, err := s.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	// An episode addressed through another show does not exist there.
	if episode.ShowID != showID {
		return nil, domain.ErrEpisodeNotFound
	}
	if err := checkEpisodeUpdate(&update); err != nil {
		return nil, err
	}

	updated, err := s.episodes.Update(ctx, episodeID, update)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Episode updated", "episode_id", episodeID, "show_id", showID, "publisher_id", scope.PublisherID)
	return updated, nil
}

func checkEpisodeUpdate(update *domain.EpisodeUpdate) error {
	fields := []struct {
		name  string
		value *string
		max   int
	}{
		{"title", update.Title, 200},
		{"description", update.Description, 5000},
		{"episode link", update.EpisodeLink, 2048},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if err := validation.ValidateStringLength(*f.value, 1, f.max, f.name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
		}
	}
	if update.EpisodeLink != nil {
		if err := validation.ValidateURL(*update.EpisodeLink); err != nil {
			return fmt.Errorf("%w: episode link: %v", ErrInvalidSubmission, err)
		}
	}
	return nil
}

func (s *catalogService) ListEpisodes(ctx context.Context, scope domain.Scope, showID int64) ([]*domain.Episode, error) {
	if _, err := s.scopedShow(ctx, scope, showID); err != nil {
		return nil, err
	}
	return s.episodes.ListByShow(ctx, showID)
}

func (s *catalogService) ToggleFavorite(ctx context.Context, scope domain.Scope, showID int64) (*domain.FavoriteState, error) {
	if scope.Kind != domain.ScopeSelf {
		return nil, ErrScopeMismatch
	}
	if _, err := s.shows.GetByID(ctx, showID); err != nil {
		return nil, err
	}

	favorite, err := s.favorites.Toggle(ctx, scope.SubjectID, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	s.metrics.RecordFavoriteToggle(favorite)

	return &domain.FavoriteState{ShowID: showID, Favorite: favorite}, nil
}

func (s *catalogService) ListFavorites(ctx context.Context, scope domain.Scope) ([]*domain.Favorite, error) {
	if scope.Kind != domain.ScopeSelf {
		return nil, ErrScopeMismatch
	}
	return s.favorites.ListBySubject(ctx, scope.SubjectID)
}

// scopedShow loads a show and hides it from publishers that do not own it.
func (s *catalogService) scopedShow(ctx context.Context, scope domain.Scope, showID int64) (*domain.Show, error) {
	show, err := s.shows.GetByID(ctx, showID)
	if err != nil {
		return nil, err
	}
	switch scope.Kind {
	case domain.ScopeAny:
	case domain.ScopeOwnedBy:
		if show.OwnerPublisherID != scope.PublisherID {
			return nil, domain.ErrShowNotFound
		}
	default:
		return nil, ErrScopeMismatch
	}
	return show, nil
}

func (s *catalogService) storeImage(ctx context.Context, upload *domain.MediaUpload) (string, error) {
	if upload == nil {
		return "", fmt.Errorf("%w: image is required", ErrInvalidSubmission)
	}
	ref := uuid.New().String() + mimetype.Detect(upload.Data).Extension()
	if err := s.media.Save(ctx, ref, bytes.NewReader(upload.Data)); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return ref, nil
}

func (s *catalogService) discardImage(ctx context.Context, ref string) {
	if err := s.media.Delete(ctx, ref); err != nil {
		s.logger.Warnw("Failed to remove orphaned image", "ref", ref, "error", err)
	}
}
