package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"reelhub/internal/core/domain"
	"reelhub/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Save(ctx context.Context, name string, data io.Reader) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockMediaStore) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockMediaStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type catalogFixture struct {
	service *catalogService
	media   *MockMediaStore
	metrics *recordingMetrics
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := memory.NewStore()
	media := &MockMediaStore{}
	media.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil).Maybe()
	metrics := &recordingMetrics{}

	svc := NewCatalogService(store.Shows, store.Episodes, store.Favorites, media, metrics, zap.NewNop().Sugar())
	return &catalogFixture{service: svc.(*catalogService), media: media, metrics: metrics}
}

func (f *catalogFixture) createShow(t *testing.T, publisherID int64, sub *domain.ShowSubmission) *domain.Show {
	t.Helper()
	show, err := f.service.CreateShow(context.Background(), domain.OwnedBy(publisherID), sub)
	require.NoError(t, err)
	return show
}

func TestCatalogService_CreateShowOwnedByCaller(t *testing.T) {
	f := newCatalogFixture(t)

	show := f.createShow(t, 11, movieSubmission())
	assert.NotZero(t, show.ID)
	assert.Equal(t, int64(11), show.OwnerPublisherID)
	assert.True(t, strings.HasSuffix(show.ImageRef, ".png"), show.ImageRef)
	f.media.AssertCalled(t, "Save", mock.Anything, show.ImageRef, mock.Anything)

	_, err := f.service.CreateShow(context.Background(), domain.AnyScope(), movieSubmission())
	assert.ErrorIs(t, err, ErrScopeMismatch)
}

func TestCatalogService_MediaFailureStoresNothing(t *testing.T) {
	store := memory.NewStore()
	media := &MockMediaStore{}
	media.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	svc := NewCatalogService(store.Shows, store.Episodes, store.Favorites, media, nil, zap.NewNop().Sugar())

	_, err := svc.CreateShow(context.Background(), domain.OwnedBy(1), movieSubmission())
	require.Error(t, err)

	shows, err := store.Shows.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, shows)
}

func TestCatalogService_UpdateShow(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	show := f.createShow(t, 11, movieSubmission())

	title := "  The Longer Night "
	updated, err := f.service.UpdateShow(ctx, domain.OwnedBy(11), show.ID, domain.ShowUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "The Longer Night", updated.Title)
	assert.Equal(t, int64(11), updated.OwnerPublisherID)

	_, err = f.service.UpdateShow(ctx, domain.OwnedBy(12), show.ID, domain.ShowUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrShowNotFound)

	_, err = f.service.UpdateShow(ctx, domain.AnyScope(), show.ID, domain.ShowUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrScopeMismatch)

	blank := " "
	_, err = f.service.UpdateShow(ctx, domain.OwnedBy(11), show.ID, domain.ShowUpdate{Genre: &blank})
	assert.ErrorIs(t, err, ErrInvalidSubmission)

	noLink := ""
	_, err = f.service.UpdateShow(ctx, domain.OwnedBy(11), show.ID, domain.ShowUpdate{MovieLink: &noLink})
	assert.ErrorIs(t, err, ErrInvalidSubmission)

	ftpLink := "ftp://cdn.example.com/movies/x.mkv"
	_, err = f.service.UpdateShow(ctx, domain.OwnedBy(11), show.ID, domain.ShowUpdate{MovieLink: &ftpLink})
	assert.ErrorIs(t, err, ErrInvalidSubmission)

	series := f.createShow(t, 11, seriesSubmission())
	link := "https://cdn.example.com/movies/x.m3u8"
	_, err = f.service.UpdateShow(ctx, domain.OwnedBy(11), series.ID, domain.ShowUpdate{MovieLink: &link})
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestCatalogService_ListAndGetShowsByScope(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	mine := f.createShow(t, 11, movieSubmission())
	theirs := f.createShow(t, 12, seriesSubmission())

	all, err := f.service.ListShows(ctx, domain.AnyScope())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	owned, err := f.service.ListShows(ctx, domain.OwnedBy(11))
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, mine.ID, owned[0].ID)

	_, err = f.service.ListShows(ctx, domain.SelfScope(3))
	assert.ErrorIs(t, err, ErrScopeMismatch)

	got, err := f.service.GetShow(ctx, domain.AnyScope(), theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, theirs.Title, got.Title)

	_, err = f.service.GetShow(ctx, domain.OwnedBy(11), theirs.ID)
	assert.ErrorIs(t, err, domain.ErrShowNotFound)

	target, err := f.service.ShowOwner(ctx, theirs.ID)
	require.NoError(t, err)
	require.NotNil(t, target.OwnerPublisherID)
	assert.Equal(t, int64(12), *target.OwnerPublisherID)

	_, err = f.service.ShowOwner(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_Episodes(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	series := f.createShow(t, 11, seriesSubmission())

	ep, err := f.service.CreateEpisode(ctx, domain.OwnedBy(11), &domain.EpisodeSubmission{
		ShowID:      series.ID,
		Title:       "Pilot",
		Description: "Where it starts.",
		EpisodeLink: "https://cdn.example.com/ep/1.m3u8",
		Image:       pngUpload(),
	})
	require.NoError(t, err)
	assert.Equal(t, series.ID, ep.ShowID)

	_, err = f.service.CreateEpisode(ctx, domain.OwnedBy(12), &domain.EpisodeSubmission{
		ShowID: series.ID,
		Image:  pngUpload(),
	})
	assert.ErrorIs(t, err, domain.ErrShowNotFound)

	episodes, err := f.service.ListEpisodes(ctx, domain.AnyScope(), series.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, "Pilot", episodes[0].Title)

	_, err = f.service.ListEpisodes(ctx, domain.AnyScope(), 9999)
	assert.ErrorIs(t, err, domain.ErrShowNotFound)
}

func TestCatalogService_UpdateEpisode(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	series := f.createShow(t, 11, seriesSubmission())
	other := f.createShow(t, 11, seriesSubmission())

	ep, err := f.service.CreateEpisode(ctx, domain.OwnedBy(11), &domain.EpisodeSubmission{
		ShowID:      series.ID,
		Title:       "Pilot",
		Description: "Where it starts.",
		EpisodeLink: "https://cdn.example.com/ep/1.m3u8",
		Image:       pngUpload(),
	})
	require.NoError(t, err)

	title := " Pilot (extended) "
	updated, err := f.service.UpdateEpisode(ctx, domain.OwnedBy(11), series.ID, ep.ID, domain.EpisodeUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Pilot (extended)", updated.Title)
	assert.Equal(t, "Where it starts.", updated.Description)
	assert.Equal(t, series.ID, updated.ShowID)

	_, err = f.service.UpdateEpisode(ctx, domain.OwnedBy(12), series.ID, ep.ID, domain.EpisodeUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrShowNotFound)

	_, err = f.service.UpdateEpisode(ctx, domain.OwnedBy(11), other.ID, ep.ID, domain.EpisodeUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrEpisodeNotFound)

	_, err = f.service.UpdateEpisode(ctx, domain.OwnedBy(11), series.ID, 9999, domain.EpisodeUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrEpisodeNotFound)

	_, err = f.service.UpdateEpisode(ctx, domain.AnyScope(), series.ID, ep.ID, domain.EpisodeUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrScopeMismatch)

	link := "ftp://cdn.example.com/ep/1.mkv"
	_, err = f.service.UpdateEpisode(ctx, domain.OwnedBy(11), series.ID, ep.ID, domain.EpisodeUpdate{EpisodeLink: &link})
	assert.ErrorIs(t, err, ErrInvalidSubmission)

	blank := "  "
	_, err = f.service.UpdateEpisode(ctx, domain.OwnedBy(11), series.ID, ep.ID, domain.EpisodeUpdate{Description: &blank})
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestCatalogService_ToggleFavoriteTwice(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	show := f.createShow(t, 11, movieSubmission())
	scope := domain.SelfScope(5)

	state, err := f.service.ToggleFavorite(ctx, scope, show.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.FavoriteState{ShowID: show.ID, Favorite: true}, state)

	favorites, err := f.service.ListFavorites(ctx, scope)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, show.ID, favorites[0].ShowID)

	state, err = f.service.ToggleFavorite(ctx, scope, show.ID)
	require.NoError(t, err)
	assert.False(t, state.Favorite)

	favorites, err = f.service.ListFavorites(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestCatalogService_ToggleFavoriteRules(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.service.ToggleFavorite(ctx, domain.SelfScope(5), 9999)
	assert.ErrorIs(t, err, domain.ErrShowNotFound)

	_, err = f.service.ToggleFavorite(ctx, domain.AnyScope(), 1)
	assert.ErrorIs(t, err, ErrScopeMismatch)

	_, err = f.service.ListFavorites(ctx, domain.OwnedBy(1))
	assert.ErrorIs(t, err, ErrScopeMismatch)
}

func TestCatalogService_ShowOwnerCachesHitsOnly(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	// The memory store hands out ids from 1.
	_, err := f.service.ShowOwner(ctx, 1)
	require.ErrorIs(t, err, domain.ErrNotFound)

	show := f.createShow(t, 11, movieSubmission())
	require.Equal(t, int64(1), show.ID)

	target, err := f.service.ShowOwner(ctx, show.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), *target.OwnerPublisherID)

	_, cached := f.service.owners.Get(show.ID)
	assert.True(t, cached)
}
