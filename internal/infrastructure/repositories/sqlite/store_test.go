package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/infrastructure/repositories/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *ports.Store {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, openTestDB)
}

func TestInitSchema_Idempotent(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, InitSchema(db))
	require.NoError(t, InitSchema(db))
}

func TestOpen_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelhub.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)
	show := &domain.Show{OwnerPublisherID: 3, Title: "kept", Description: "d", Genre: "g",
		Category: domain.CategorySeries, ImageRef: "x.png"}
	require.NoError(t, NewSQLiteShowRepository(db).Create(ctx, show))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := NewSQLiteShowRepository(db).GetByID(ctx, show.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)
}

func TestSQLiteShowRepository_UpdateKeepsOwner(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()

	show := &domain.Show{OwnerPublisherID: 3, Title: "t", Description: "d", Genre: "g",
		Category: domain.CategoryMovie, MovieLink: "https://cdn.example.com/a", ImageRef: "x.png"}
	require.NoError(t, store.Shows.Create(ctx, show))

	genre := "Comedy"
	updated, err := store.Shows.Update(ctx, show.ID, domain.ShowUpdate{Genre: &genre})
	require.NoError(t, err)
	assert.Equal(t, "Comedy", updated.Genre)
	assert.Equal(t, "t", updated.Title)
	assert.Equal(t, int64(3), updated.OwnerPublisherID)
}
