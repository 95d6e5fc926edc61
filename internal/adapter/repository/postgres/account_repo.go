package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, workspace_id, name, account_type, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.WorkspaceID,
		account.Name,
		string(account.Type),
		account.Currency,
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves a live account scoped to its workspace
func (r *accountRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, workspace_id, name, account_type, currency, created_at, deleted_at
		FROM accounts
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL
	`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, workspaceID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return account, nil
}

// List retrieves the live accounts of a workspace ordered by name
func (r *accountRepository) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Account, error) {
	query := `
		SELECT id, workspace_id, name, account_type, currency, created_at, deleted_at
		FROM accounts
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var accountType string
	var deletedAt sql.NullTime

	if err := row.Scan(
		&account.ID,
		&account.WorkspaceID,
		&account.Name,
		&accountType,
		&account.Currency,
		&account.CreatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	account.Type = domain.AccountType(accountType)
	if deletedAt.Valid {
		account.DeletedAt = &deletedAt.Time
	}
	return &account, nil
}
