package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

// checkpointRepository implements domain.CheckpointRepository
type checkpointRepository struct {
	db *DB
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *DB) domain.CheckpointRepository {
	return &checkpointRepository{db: db}
}

const checkpointColumns = `id, workspace_id, account_id, date, actual_balance, expected_balance, gap,
	status, notes, created_by, created_at, updated_at`

// Create inserts a new checkpoint
func (r *checkpointRepository) Create(ctx context.Context, cp *domain.Checkpoint) error {
	query := `
		INSERT INTO checkpoints (` + checkpointColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		cp.ID,
		cp.WorkspaceID,
		cp.AccountID,
		domain.DateOnly(cp.Date),
		cp.ActualBalance.String(),
		cp.ExpectedBalance.String(),
		cp.Gap.String(),
		string(cp.Status),
		nullString(cp.Notes),
		cp.CreatedBy,
		cp.CreatedAt,
		cp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert checkpoint: %w", err)
	}

	return nil
}

// GetByID retrieves a checkpoint scoped to its workspace
func (r *checkpointRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM checkpoints WHERE workspace_id = $1 AND id = $2`

	cp, err := scanCheckpoint(r.db.QueryRowContext(ctx, query, workspaceID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("checkpoint %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get checkpoint by ID: %w", err)
	}
	return cp, nil
}

// ListByWorkspace retrieves checkpoints newest first, optionally for one account
func (r *checkpointRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, accountID *uuid.UUID) ([]*domain.Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM checkpoints WHERE workspace_id = $1`
	args := []any{workspaceID}
	if accountID != nil {
		query += ` AND account_id = $2`
		args = append(args, *accountID)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	return r.list(ctx, query, args...)
}

// ListFromDate retrieves the account's checkpoints with date >= from, oldest first
func (r *checkpointRepository) ListFromDate(ctx context.Context, workspaceID, accountID uuid.UUID, from time.Time) ([]*domain.Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM checkpoints
		WHERE workspace_id = $1 AND account_id = $2 AND date >= $3
		ORDER BY date ASC, created_at ASC`

	return r.list(ctx, query, workspaceID, accountID, domain.DateOnly(from))
}

// LatestForAccount retrieves the newest checkpoint of an account
func (r *checkpointRepository) LatestForAccount(ctx context.Context, workspaceID, accountID uuid.UUID) (*domain.Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM checkpoints
		WHERE workspace_id = $1 AND account_id = $2
		ORDER BY date DESC, created_at DESC
		LIMIT 1`

	cp, err := scanCheckpoint(r.db.QueryRowContext(ctx, query, workspaceID, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("checkpoint for account %s: %w", accountID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest checkpoint: %w", err)
	}
	return cp, nil
}

// UpdateBalances stores a recalculated expected balance and gap
func (r *checkpointRepository) UpdateBalances(ctx context.Context, workspaceID, id uuid.UUID, expected, gap decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE checkpoints SET expected_balance = $3, gap = $4, updated_at = now()
		WHERE workspace_id = $1 AND id = $2
	`, workspaceID, id, expected.String(), gap.String())
	if err != nil {
		return fmt.Errorf("failed to update checkpoint balances: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("checkpoint %s", id))
}

// UpdateStatus stores the review status and notes
func (r *checkpointRepository) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status domain.CheckpointStatus, notes *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE checkpoints SET status = $3, notes = $4, updated_at = now()
		WHERE workspace_id = $1 AND id = $2
	`, workspaceID, id, string(status), nullString(notes))
	if err != nil {
		return fmt.Errorf("failed to update checkpoint status: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("checkpoint %s", id))
}

func (r *checkpointRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Checkpoint, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	checkpoints := make([]*domain.Checkpoint, 0)
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkpoints: %w", err)
	}
	return checkpoints, nil
}

func scanCheckpoint(row rowScanner) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	var actualStr, expectedStr, gapStr, status string
	var notes sql.NullString
	var createdBy uuid.NullUUID

	if err := row.Scan(
		&cp.ID,
		&cp.WorkspaceID,
		&cp.AccountID,
		&cp.Date,
		&actualStr,
		&expectedStr,
		&gapStr,
		&status,
		&notes,
		&createdBy,
		&cp.CreatedAt,
		&cp.UpdatedAt,
	); err != nil {
		return nil, err
	}

	cp.Date = domain.DateOnly(cp.Date)
	cp.Status = domain.CheckpointStatus(status)
	if notes.Valid {
		cp.Notes = &notes.String
	}
	if createdBy.Valid {
		cp.CreatedBy = createdBy.UUID
	}

	// Parse balances (NUMERIC)
	var err error
	if cp.ActualBalance, err = decimal.NewFromString(actualStr); err != nil {
		return nil, fmt.Errorf("failed to parse actual_balance: %w", err)
	}
	if cp.ExpectedBalance, err = decimal.NewFromString(expectedStr); err != nil {
		return nil, fmt.Errorf("failed to parse expected_balance: %w", err)
	}
	if cp.Gap, err = decimal.NewFromString(gapStr); err != nil {
		return nil, fmt.Errorf("failed to parse gap: %w", err)
	}

	return &cp, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
