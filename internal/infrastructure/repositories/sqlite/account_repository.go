package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
)

const accountColumns = "id, email, display_name, password_hash, role, publisher_id, admin_subtype, created_at"

type SQLiteAccountRepository struct {
	db *sql.DB
}

func NewSQLiteAccountRepository(db *sql.DB) ports.AccountRepository {
	return &SQLiteAccountRepository{db: db}
}

func scanAccount(row rowScanner) (*domain.UserAccount, error) {
	var a domain.UserAccount
	var role, subtype string
	var createdAt int64
	if err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash,
		&role, &a.PublisherID, &subtype, &createdAt); err != nil {
		return nil, err
	}
	a.RoleKind = domain.RoleKind(role)
	a.AdminSubtype = domain.AdminSubtype(subtype)
	a.CreatedAt = fromNanos(createdAt)
	return &a, nil
}

func (r *SQLiteAccountRepository) Create(ctx context.Context, account *domain.UserAccount) error {
	account.CreatedAt = nowIfZero(account.CreatedAt)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (email, display_name, password_hash, role, publisher_id, admin_subtype, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.Email, account.DisplayName, account.PasswordHash, string(account.RoleKind),
		account.PublisherID, string(account.AdminSubtype), toNanos(account.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	account.ID = id
	return nil
}

func (r *SQLiteAccountRepository) GetByID(ctx context.Context, id int64) (*domain.UserAccount, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
}

func (r *SQLiteAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email = ?", email)
}

func (r *SQLiteAccountRepository) getOne(ctx context.Context, query string, arg any) (*domain.UserAccount, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

func (r *SQLiteAccountRepository) List(ctx context.Context) ([]*domain.UserAccount, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.UserAccount, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
