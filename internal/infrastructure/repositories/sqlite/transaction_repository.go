package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/shopspring/decimal"
)

type SQLiteTransactionRepository struct {
	db *sql.DB
}

func NewSQLiteTransactionRepository(db *sql.DB) ports.TransactionRepository {
	return &SQLiteTransactionRepository{db: db}
}

// Amounts are stored as decimal text; SQLite arithmetic on them would go through float.
func (r *SQLiteTransactionRepository) Record(ctx context.Context, tx *domain.Transaction) error {
	tx.CreatedAt = nowIfZero(tx.CreatedAt)
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions (subject_id, amount, created_at) VALUES (?, ?, ?)",
		tx.SubjectID, tx.Amount.String(), toNanos(tx.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	tx.ID = id
	return nil
}

func (r *SQLiteTransactionRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, subject_id, amount, created_at FROM transactions WHERE subject_id = ? ORDER BY created_at, id", subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*domain.Transaction, 0)
	for rows.Next() {
		var tx domain.Transaction
		var amount string
		var createdAt int64
		if err := rows.Scan(&tx.ID, &tx.SubjectID, &amount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		tx.CreatedAt = fromNanos(createdAt)
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}
