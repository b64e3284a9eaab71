package memory

import (
	"context"
	"sort"
	"sync"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
)

type MemoryShowRepository struct {
	shows  map[int64]*domain.Show
	nextID int64
	mu     sync.RWMutex
}

func NewMemoryShowRepository() *MemoryShowRepository {
	return &MemoryShowRepository{
		shows: make(map[int64]*domain.Show),
	}
}

var _ ports.ShowRepository = (*MemoryShowRepository)(nil)

func (r *MemoryShowRepository) Create(ctx context.Context, show *domain.Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	show.ID = r.nextID
	stored := *show
	r.shows[show.ID] = &stored
	return nil
}

func (r *MemoryShowRepository) GetByID(ctx context.Context, id int64) (*domain.Show, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	show, exists := r.shows[id]
	if !exists {
		return nil, domain.ErrShowNotFound
	}
	out := *show
	return &out, nil
}

func (r *MemoryShowRepository) Update(ctx context.Context, id int64, update domain.ShowUpdate) (*domain.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	show, exists := r.shows[id]
	if !exists {
		return nil, domain.ErrShowNotFound
	}
	if update.Title != nil {
		show.Title = *update.Title
	}
	if update.Description != nil {
		show.Description = *update.Description
	}
	if update.Genre != nil {
		show.Genre = *update.Genre
	}
	if update.MovieLink != nil {
		show.MovieLink = *update.MovieLink
	}
	out := *show
	return &out, nil
}

func (r *MemoryShowRepository) List(ctx context.Context) ([]*domain.Show, error) {
	return r.filter(func(*domain.Show) bool { return true }), nil
}

func (r *MemoryShowRepository) ListByOwner(ctx context.Context, publisherID int64) ([]*domain.Show, error) {
	return r.filter(func(s *domain.Show) bool { return s.OwnerPublisherID == publisherID }), nil
}

func (r *MemoryShowRepository) filter(keep func(*domain.Show) bool) []*domain.Show {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shows := make([]*domain.Show, 0, len(r.shows))
	for _, show := range r.shows {
		if keep(show) {
			out := *show
			shows = append(shows, &out)
		}
	}
	sort.Slice(shows, func(i, j int) bool { return shows[i].ID < shows[j].ID })
	return shows
}
