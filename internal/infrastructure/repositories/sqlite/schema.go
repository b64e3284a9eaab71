package sqlite

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all required tables and indexes.
// This is idempotent - safe to call multiple times.
func InitSchema(db *sql.DB) error {
	ddlStatements := []string{
		`CREATE TABLE IF NOT EXISTS shows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_publisher_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			genre TEXT NOT NULL,
			category TEXT NOT NULL CHECK (category IN ('Movie', 'Series')),
			movie_link TEXT NOT NULL DEFAULT '',
			image_ref TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shows_owner ON shows(owner_publisher_id)`,

		`CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			show_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			episode_link TEXT NOT NULL,
			image_ref TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_show ON episodes(show_id)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE COLLATE NOCASE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			publisher_id INTEGER NOT NULL DEFAULT 0,
			admin_subtype TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_created ON accounts(created_at)`,

		`CREATE TABLE IF NOT EXISTS favorites (
			subject_id INTEGER NOT NULL,
			show_id INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (subject_id, show_id)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject_id INTEGER NOT NULL,
			amount TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_subject ON transactions(subject_id)`,

		`CREATE TABLE IF NOT EXISTS campaigns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL CHECK (kind IN ('promotion', 'offer')),
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			discount_percent TEXT NOT NULL,
			starts_at INTEGER NOT NULL,
			ends_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}
	return nil
}
