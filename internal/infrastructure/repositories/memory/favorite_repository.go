package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
)

type favoriteKey struct {
	subjectID int64
	showID    int64
}

// MemoryFavoriteRepository flips favorites under a single mutex, which
// serializes concurrent toggles of the same pair.
type MemoryFavoriteRepository struct {
	favorites map[favoriteKey]time.Time
	mu        sync.Mutex
}

func NewMemoryFavoriteRepository() *MemoryFavoriteRepository {
	return &MemoryFavoriteRepository{
		favorites: make(map[favoriteKey]time.Time),
	}
}

var _ ports.FavoriteRepository = (*MemoryFavoriteRepository)(nil)

func (r *MemoryFavoriteRepository) Toggle(ctx context.Context, subjectID, showID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := favoriteKey{subjectID: subjectID, showID: showID}
	if _, exists := r.favorites[key]; exists {
		delete(r.favorites, key)
		return false, nil
	}
	r.favorites[key] = time.Now().UTC()
	return true, nil
}

func (r *MemoryFavoriteRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	favorites := make([]*domain.Favorite, 0)
	for key, createdAt := range r.favorites {
		if key.subjectID == subjectID {
			favorites = append(favorites, &domain.Favorite{
				SubjectID: key.subjectID,
				ShowID:    key.showID,
				CreatedAt: createdAt,
			})
		}
	}
	sort.Slice(favorites, func(i, j int) bool { return favorites[i].ShowID < favorites[j].ShowID })
	return favorites, nil
}
