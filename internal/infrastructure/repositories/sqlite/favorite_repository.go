package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
)

type SQLiteFavoriteRepository struct {
	db *sql.DB
}

func NewSQLiteFavoriteRepository(db *sql.DB) ports.FavoriteRepository {
	return &SQLiteFavoriteRepository{db: db}
}

// Toggle deletes the pair if present and inserts it otherwise, inside one
// transaction on the single shared connection.
func (r *SQLiteFavoriteRepository) Toggle(ctx context.Context, subjectID, showID int64) (bool, error) {
	var favorite bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM favorites WHERE subject_id = ? AND show_id = ?", subjectID, showID)
		if err != nil {
			return err
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if removed > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO favorites (subject_id, show_id, created_at) VALUES (?, ?, ?)",
			subjectID, showID, toNanos(time.Now().UTC())); err != nil {
			return err
		}
		favorite = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return favorite, nil
}

func (r *SQLiteFavoriteRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Favorite, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT subject_id, show_id, created_at FROM favorites WHERE subject_id = ? ORDER BY show_id", subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]*domain.Favorite, 0)
	for rows.Next() {
		var f domain.Favorite
		var createdAt int64
		if err := rows.Scan(&f.SubjectID, &f.ShowID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		f.CreatedAt = fromNanos(createdAt)
		favorites = append(favorites, &f)
	}
	return favorites, rows.Err()
}
