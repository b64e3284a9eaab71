package memory

import (
	"context"
	"sort"
	"sync"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
)

type MemoryEpisodeRepository struct {
	episodes map[int64]*domain.Episode
	nextID   int64
	mu       sync.RWMutex
}

func NewMemoryEpisodeRepository() *MemoryEpisodeRepository {
	return &MemoryEpisodeRepository{
		episodes: make(map[int64]*domain.Episode),
	}
}

var _ ports.EpisodeRepository = (*MemoryEpisodeRepository)(nil)

func (r *MemoryEpisodeRepository) Create(ctx context.Context, episode *domain.Episode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	episode.ID = r.nextID
	stored := *episode
	r.episodes[episode.ID] = &stored
	return nil
}

func (r *MemoryEpisodeRepository) GetByID(ctx context.Context, id int64) (*domain.Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	episode, exists := r.episodes[id]
	if !exists {
		return nil, domain.ErrEpisodeNotFound
	}
	out := *episode
	return &out, nil
}

func (r *MemoryEpisodeRepository) Update(ctx context.Context, id int64, update domain.EpisodeUpdate) (*domain.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	episode, exists := r.episodes[id]
	if !exists {
		return nil, domain.ErrEpisodeNotFound
	}
	if update.Title != nil {
		episode.Title = *update.Title
	}
	if update.Description != nil {
		episode.Description = *update.Description
	}
	if update.EpisodeLink != nil {
		episode.EpisodeLink = *update.EpisodeLink
	}
	out := *episode
	return &out, nil
}

func (r *MemoryEpisodeRepository) ListByShow(ctx context.Context, showID int64) ([]*domain.Episode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	episodes := make([]*domain.Episode, 0)
	for _, ep := range r.episodes {
		if ep.ShowID == showID {
			out := *ep
			episodes = append(episodes, &out)
		}
	}
	sort.Slice(episodes, func(i, j int) bool { return episodes[i].ID < episodes[j].ID })
	return episodes, nil
}
