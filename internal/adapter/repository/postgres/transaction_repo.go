package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, workspace_id, account_id, type, amount, description, transaction_date,
	created_by, created_at, updated_at, deleted_at`

// Create inserts a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.WorkspaceID,
		tx.AccountID,
		string(tx.Type),
		tx.Amount.String(),
		tx.Description,
		domain.DateOnly(tx.TransactionDate),
		tx.CreatedBy,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// Update overwrites the editable fields of a transaction
func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $3, type = $4, amount = $5, description = $6, transaction_date = $7, updated_at = $8
		WHERE workspace_id = $1 AND id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.WorkspaceID,
		tx.ID,
		tx.AccountID,
		string(tx.Type),
		tx.Amount.String(),
		tx.Description,
		domain.DateOnly(tx.TransactionDate),
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("transaction %s", tx.ID))
}

// SoftDelete marks a live transaction as deleted
func (r *transactionRepository) SoftDelete(ctx context.Context, workspaceID, id uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = $3
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
	`, workspaceID, id, at)
	if err != nil {
		return fmt.Errorf("failed to soft delete transaction: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("transaction %s", id))
}

// Restore clears the deleted marker of a soft-deleted transaction
func (r *transactionRepository) Restore(ctx context.Context, workspaceID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = NULL
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NOT NULL
	`, workspaceID, id)
	if err != nil {
		return fmt.Errorf("failed to restore transaction: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("deleted transaction %s", id))
}

// GetByID retrieves a transaction, soft-deleted ones included
func (r *transactionRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE workspace_id = $1 AND id = $2`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, workspaceID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}
	return tx, nil
}

// List retrieves transactions ordered by date descending
func (r *transactionRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	conditions := []string{"workspace_id = $1"}
	args := []any{workspaceID}

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY transaction_date DESC, created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}

// SumSignedAmounts sums income minus expense of the account's live transactions up to the cutoff
func (r *transactionRepository) SumSignedAmounts(ctx context.Context, workspaceID, accountID uuid.UUID, cutoff time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)::TEXT
		FROM transactions
		WHERE workspace_id = $1
		  AND account_id = $2
		  AND deleted_at IS NULL
		  AND transaction_date <= $3
	`

	var sumStr string
	if err := r.db.QueryRowContext(ctx, query, workspaceID, accountID, domain.DateOnly(cutoff)).Scan(&sumStr); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}

	sum, err := decimal.NewFromString(sumStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse transaction sum: %w", err)
	}
	return sum, nil
}

// CountInPeriod counts the account's live transactions with after < transaction_date <= until
func (r *transactionRepository) CountInPeriod(ctx context.Context, workspaceID, accountID uuid.UUID, after, until time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE workspace_id = $1
		  AND account_id = $2
		  AND deleted_at IS NULL
		  AND transaction_date > $3
		  AND transaction_date <= $4
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, workspaceID, accountID, domain.DateOnly(after), domain.DateOnly(until)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var txType, amountStr string
	var createdBy uuid.NullUUID
	var deletedAt sql.NullTime

	if err := row.Scan(
		&tx.ID,
		&tx.WorkspaceID,
		&tx.AccountID,
		&txType,
		&amountStr,
		&tx.Description,
		&tx.TransactionDate,
		&createdBy,
		&tx.CreatedAt,
		&tx.UpdatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = domain.TransactionType(txType)
	tx.TransactionDate = domain.DateOnly(tx.TransactionDate)
	if createdBy.Valid {
		tx.CreatedBy = createdBy.UUID
	}
	if deletedAt.Valid {
		tx.DeletedAt = &deletedAt.Time
	}

	// Parse amount (NUMERIC)
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	tx.Amount = amount

	return &tx, nil
}
