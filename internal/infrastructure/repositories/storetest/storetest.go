// Package storetest holds the behaviour every storage backend must share.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) *ports.Store) {
	t.Run("Shows", func(t *testing.T) { testShows(t, newStore(t)) })
	t.Run("Episodes", func(t *testing.T) { testEpisodes(t, newStore(t)) })
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, newStore(t)) })
	t.Run("Favorites", func(t *testing.T) { testFavorites(t, newStore(t)) })
	t.Run("ConcurrentToggle", func(t *testing.T) { testConcurrentToggle(t, newStore(t)) })
	t.Run("Campaigns", func(t *testing.T) { testCampaigns(t, newStore(t)) })
	t.Run("Metrics", func(t *testing.T) { testMetrics(t, newStore(t)) })
}

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newShow(owner int64, title string) *domain.Show {
	return &domain.Show{
		OwnerPublisherID: owner,
		Title:            title,
		Description:      "description of " + title,
		Genre:            "Drama",
		Category:         domain.CategoryMovie,
		MovieLink:        "https://cdn.example.com/" + title,
		ImageRef:         title + ".png",
		CreatedAt:        epoch,
	}
}

func testShows(t *testing.T, store *ports.Store) {
	ctx := context.Background()

	first := newShow(7, "first")
	require.NoError(t, store.Shows.Create(ctx, first))
	require.NotZero(t, first.ID)

	second := newShow(8, "second")
	require.NoError(t, store.Shows.Create(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)

	got, err := store.Shows.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, int64(7), got.OwnerPublisherID)
	assert.Equal(t, domain.CategoryMovie, got.Category)

	_, err = store.Shows.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrShowNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	title := "renamed"
	updated, err := store.Shows.Update(ctx, first.ID, domain.ShowUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, first.Description, updated.Description)
	assert.Equal(t, int64(7), updated.OwnerPublisherID)

	_, err = store.Shows.Update(ctx, 9999, domain.ShowUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrShowNotFound)

	all, err := store.Shows.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	owned, err := store.Shows.ListByOwner(ctx, 8)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, second.ID, owned[0].ID)

	none, err := store.Shows.ListByOwner(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testEpisodes(t *testing.T, store *ports.Store) {
	ctx := context.Background()

	show := newShow(1, "series")
	show.Category = domain.CategorySeries
	show.MovieLink = ""
	require.NoError(t, store.Shows.Create(ctx, show))

	for _, title := range []string{"pilot", "second"} {
		ep := &domain.Episode{
			ShowID:      show.ID,
			Title:       title,
			Description: "episode " + title,
			EpisodeLink: "https://cdn.example.com/ep/" + title,
			ImageRef:    title + ".png",
			CreatedAt:   epoch,
		}
		require.NoError(t, store.Episodes.Create(ctx, ep))
		require.NotZero(t, ep.ID)
	}

	episodes, err := store.Episodes.ListByShow(ctx, show.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "pilot", episodes[0].Title)
	assert.Equal(t, "second", episodes[1].Title)

	other, err := store.Episodes.ListByShow(ctx, show.ID+100)
	require.NoError(t, err)
	assert.Empty(t, other)

	title := "pilot (remastered)"
	updated, err := store.Episodes.Update(ctx, episodes[0].ID, domain.EpisodeUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "episode pilot", updated.Description)
	assert.Equal(t, show.ID, updated.ShowID)

	got, err := store.Episodes.GetByID(ctx, episodes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, "pilot.png", got.ImageRef)

	_, err = store.Episodes.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrEpisodeNotFound)
	_, err = store.Episodes.Update(ctx, 999, domain.EpisodeUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrEpisodeNotFound)
}

func testAccounts(t *testing.T, store *ports.Store) {
	ctx := context.Background()

	account := &domain.UserAccount{
		Email:        "ada@example.com",
		DisplayName:  "Ada",
		PasswordHash: "hash",
		RoleKind:     domain.RoleKindPublisher,
		PublisherID:  12,
		CreatedAt:    epoch,
	}
	require.NoError(t, store.Accounts.Create(ctx, account))
	require.NotZero(t, account.ID)

	dup := &domain.UserAccount{Email: "ADA@example.com", DisplayName: "Other", PasswordHash: "x", RoleKind: domain.RoleKindEndUser, CreatedAt: epoch}
	err := store.Accounts.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	byID, err := store.Accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)
	assert.Equal(t, "hash", byID.PasswordHash)

	role, err := byID.Role()
	require.NoError(t, err)
	assert.Equal(t, domain.Publisher{PublisherID: 12}, role)

	byEmail, err := store.Accounts.GetByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	_, err = store.Accounts.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = store.Accounts.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	all, err := store.Accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testFavorites(t *testing.T, store *ports.Store) {
	ctx := context.Background()

	on, err := store.Favorites.Toggle(ctx, 5, 100)
	require.NoError(t, err)
	assert.True(t, on)

	_, err = store.Favorites.Toggle(ctx, 5, 200)
	require.NoError(t, err)
	_, err = store.Favorites.Toggle(ctx, 6, 100)
	require.NoError(t, err)

	favorites, err := store.Favorites.ListBySubject(ctx, 5)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, int64(100), favorites[0].ShowID)
	assert.Equal(t, int64(200), favorites[1].ShowID)

	off, err := store.Favorites.Toggle(ctx, 5, 100)
	require.NoError(t, err)
	assert.False(t, off)

	favorites, err = store.Favorites.ListBySubject(ctx, 5)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, int64(200), favorites[0].ShowID)
}

// An even number of concurrent toggles must leave the pair unfavorited.
func testConcurrentToggle(t *testing.T, store *ports.Store) {
	ctx := context.Background()
	const toggles = 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	onCount := 0
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			on, err := store.Favorites.Toggle(ctx, 42, 7)
			assert.NoError(t, err)
			if on {
				mu.Lock()
				onCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, toggles/2, onCount)
	favorites, err := store.Favorites.ListBySubject(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func testCampaigns(t *testing.T, store *ports.Store) {
	ctx := context.Background()

	promo := &domain.Campaign{
		Kind:            domain.CampaignPromotion,
		Title:           "Spring",
		Description:     "Spring sale",
		DiscountPercent: decimal.RequireFromString("12.5"),
		StartsAt:        epoch,
		EndsAt:          epoch.AddDate(0, 0, 7),
		CreatedAt:       epoch,
	}
	require.NoError(t, store.Campaigns.Create(ctx, promo))
	require.NotZero(t, promo.ID)

	offer := &domain.Campaign{
		Kind:            domain.CampaignOffer,
		Title:           "Welcome",
		Description:     "First month",
		DiscountPercent: decimal.NewFromInt(50),
		StartsAt:        epoch,
		EndsAt:          epoch.AddDate(0, 1, 0),
		CreatedAt:       epoch,
	}
	require.NoError(t, store.Campaigns.Create(ctx, offer))

	promotions, err := store.Campaigns.ListByKind(ctx, domain.CampaignPromotion)
	require.NoError(t, err)
	require.Len(t, promotions, 1)
	assert.Equal(t, "Spring", promotions[0].Title)
	assert.True(t, promotions[0].DiscountPercent.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, promotions[0].EndsAt.Equal(promo.EndsAt))
}

func testMetrics(t *testing.T, store *ports.Store) {
	ctx := context.Background()

	joins := []time.Time{
		epoch.Add(-48 * time.Hour),
		epoch.Add(-time.Hour),
		epoch,
		epoch.Add(26 * time.Hour),
	}
	for i, at := range joins {
		require.NoError(t, store.Accounts.Create(ctx, &domain.UserAccount{
			Email:        string(rune('a'+i)) + "@example.com",
			DisplayName:  "user",
			PasswordHash: "x",
			RoleKind:     domain.RoleKindEndUser,
			CreatedAt:    at,
		}))
	}

	amounts := []struct {
		at     time.Time
		amount string
	}{
		{epoch.Add(-24 * time.Hour), "10.10"},
		{epoch.Add(time.Hour), "0.20"},
		{epoch.Add(2 * time.Hour), "-3.05"},
	}
	for _, a := range amounts {
		require.NoError(t, store.Transactions.Record(ctx, &domain.Transaction{
			SubjectID: 1,
			Amount:    decimal.RequireFromString(a.amount),
			CreatedAt: a.at,
		}))
	}

	sum, rows, err := store.Metrics.Baseline(ctx, domain.MetricUserJoins, epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.True(t, sum.Equal(decimal.NewFromInt(2)), "got %s", sum)

	events, err := store.Metrics.Events(ctx, domain.MetricUserJoins, epoch, epoch.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].At.Equal(epoch))
	assert.True(t, events[1].At.Equal(epoch.Add(26*time.Hour)))

	sum, rows, err = store.Metrics.Baseline(ctx, domain.MetricIncome, epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.True(t, sum.Equal(decimal.RequireFromString("10.10")), "got %s", sum)

	events, err = store.Metrics.Events(ctx, domain.MetricIncome, epoch, epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = store.Metrics.Events(ctx, domain.MetricIncome, epoch, epoch.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Value.Equal(decimal.RequireFromString("0.20")))
	assert.True(t, events[1].Value.Equal(decimal.RequireFromString("-3.05")))

	txs, err := store.Transactions.ListBySubject(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}
