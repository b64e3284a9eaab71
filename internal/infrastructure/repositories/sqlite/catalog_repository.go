package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
)

const showColumns = "id, owner_publisher_id, title, description, genre, category, movie_link, image_ref, created_at"

type SQLiteShowRepository struct {
	db *sql.DB
}

func NewSQLiteShowRepository(db *sql.DB) ports.ShowRepository {
	return &SQLiteShowRepository{db: db}
}

func scanShow(row rowScanner) (*domain.Show, error) {
	var show domain.Show
	var category string
	var createdAt int64
	if err := row.Scan(&show.ID, &show.OwnerPublisherID, &show.Title, &show.Description,
		&show.Genre, &category, &show.MovieLink, &show.ImageRef, &createdAt); err != nil {
		return nil, err
	}
	show.Category = domain.Category(category)
	show.CreatedAt = fromNanos(createdAt)
	return &show, nil
}

func (r *SQLiteShowRepository) Create(ctx context.Context, show *domain.Show) error {
	show.CreatedAt = nowIfZero(show.CreatedAt)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO shows (owner_publisher_id, title, description, genre, category, movie_link, image_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		show.OwnerPublisherID, show.Title, show.Description, show.Genre,
		string(show.Category), show.MovieLink, show.ImageRef, toNanos(show.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create show: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	show.ID = id
	return nil
}

func (r *SQLiteShowRepository) GetByID(ctx context.Context, id int64) (*domain.Show, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+showColumns+" FROM shows WHERE id = ?", id)
	show, err := scanShow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrShowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query show: %w", err)
	}
	return show, nil
}

// Update only touches the text columns; owner_publisher_id is never written.
func (r *SQLiteShowRepository) Update(ctx context.Context, id int64, update domain.ShowUpdate) (*domain.Show, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shows SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			genre = COALESCE(?, genre),
			movie_link = COALESCE(?, movie_link)
		 WHERE id = ?`,
		nullable(update.Title), nullable(update.Description), nullable(update.Genre), nullable(update.MovieLink), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update show: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrShowNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteShowRepository) List(ctx context.Context) ([]*domain.Show, error) {
	return r.query(ctx, "SELECT "+showColumns+" FROM shows ORDER BY id")
}

func (r *SQLiteShowRepository) ListByOwner(ctx context.Context, publisherID int64) ([]*domain.Show, error) {
	return r.query(ctx, "SELECT "+showColumns+" FROM shows WHERE owner_publisher_id = ? ORDER BY id", publisherID)
}

func (r *SQLiteShowRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Show, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer rows.Close()

	shows := make([]*domain.Show, 0)
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}
		shows = append(shows, show)
	}
	return shows, rows.Err()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type SQLiteEpisodeRepository struct {
	db *sql.DB
}

func NewSQLiteEpisodeRepository(db *sql.DB) ports.EpisodeRepository {
	return &SQLiteEpisodeRepository{db: db}
}

func (r *SQLiteEpisodeRepository) Create(ctx context.Context, episode *domain.Episode) error {
	episode.CreatedAt = nowIfZero(episode.CreatedAt)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO episodes (show_id, title, description, episode_link, image_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		episode.ShowID, episode.Title, episode.Description, episode.EpisodeLink,
		episode.ImageRef, toNanos(episode.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	episode.ID = id
	return nil
}

const episodeColumns = "id, show_id, title, description, episode_link, image_ref, created_at"

func scanEpisode(row rowScanner) (*domain.Episode, error) {
	var ep domain.Episode
	var createdAt int64
	if err := row.Scan(&ep.ID, &ep.ShowID, &ep.Title, &ep.Description,
		&ep.EpisodeLink, &ep.ImageRef, &createdAt); err != nil {
		return nil, err
	}
	ep.CreatedAt = fromNanos(createdAt)
	return &ep, nil
}

func (r *SQLiteEpisodeRepository) GetByID(ctx context.Context, id int64) (*domain.Episode, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+episodeColumns+" FROM episodes WHERE id = ?", id)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEpisodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query episode: %w", err)
	}
	return episode, nil
}

// Update only touches the text columns; show_id is never written.
func (r *SQLiteEpisodeRepository) Update(ctx context.Context, id int64, update domain.EpisodeUpdate) (*domain.Episode, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE episodes SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			episode_link = COALESCE(?, episode_link)
		 WHERE id = ?`,
		nullable(update.Title), nullable(update.Description), nullable(update.EpisodeLink), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update episode: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrEpisodeNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteEpisodeRepository) ListByShow(ctx context.Context, showID int64) ([]*domain.Episode, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+episodeColumns+" FROM episodes WHERE show_id = ? ORDER BY id", showID)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	episodes := make([]*domain.Episode, 0)
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}
