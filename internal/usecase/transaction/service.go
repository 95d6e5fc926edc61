package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/logger"
	"github.com/simaogato/hearthledger-backend/internal/usecase/reconcile"
	"github.com/simaogato/hearthledger-backend/internal/validation"
)

// CheckpointRecalculator refreshes the checkpoints affected by a transaction change
type CheckpointRecalculator interface {
	RecalculateAffectedCheckpoints(ctx context.Context, transactionDate time.Time, accountID, workspaceID uuid.UUID) (*reconcile.Result, error)
}

// Authorizer checks the caller's role in a workspace
type Authorizer interface {
	Require(ctx context.Context, workspaceID, userID uuid.UUID, permission domain.Permission) (*domain.Membership, error)
}

// CreateTransactionInput represents the input for recording a transaction
type CreateTransactionInput struct {
	UserID          uuid.UUID
	WorkspaceID     uuid.UUID
	AccountID       uuid.UUID
	Type            domain.TransactionType `validate:"required,oneof=income expense"`
	Amount          decimal.Decimal
	Description     string `validate:"max=500"`
	TransactionDate time.Time
}

// UpdateTransactionInput represents a full replacement of a transaction's editable fields
type UpdateTransactionInput struct {
	UserID          uuid.UUID
	WorkspaceID     uuid.UUID
	TransactionID   uuid.UUID
	AccountID       uuid.UUID
	Type            domain.TransactionType `validate:"required,oneof=income expense"`
	Amount          decimal.Decimal
	Description     string `validate:"max=500"`
	TransactionDate time.Time
}

// Result is a written transaction plus the outcome of the checkpoint cascade it triggered
type Result struct {
	Transaction        *domain.Transaction
	CheckpointsUpdated int
	// CheckpointsStale is set when at least one affected checkpoint could not be refreshed.
	// The transaction write itself succeeded.
	CheckpointsStale bool
	Warnings         []string
}

// TransactionService records transactions and keeps checkpoints in line with them
type TransactionService struct {
	TransactionRepo domain.TransactionRepository
	AccountRepo     domain.AccountRepository
	Recalculator    CheckpointRecalculator
	Access          Authorizer
	log             logrus.FieldLogger
}

// NewTransactionService creates a new TransactionService instance
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	accountRepo domain.AccountRepository,
	recalculator CheckpointRecalculator,
	access Authorizer,
	log logrus.FieldLogger,
) *TransactionService {
	return &TransactionService{
		TransactionRepo: transactionRepo,
		AccountRepo:     accountRepo,
		Recalculator:    recalculator,
		Access:          access,
		log:             log,
	}
}

// CreateTransaction records a transaction on an account
// Logic:
//  1. Check the caller may write and the account belongs to the workspace
//  2. Validate and save the transaction
//  3. Recalculate the account's checkpoints dated on or after the transaction date
func (s *TransactionService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*Result, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.Access.Require(ctx, input.WorkspaceID, input.UserID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	if _, err := s.AccountRepo.GetByID(ctx, input.WorkspaceID, input.AccountID); err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:              uuid.New(),
		WorkspaceID:     input.WorkspaceID,
		AccountID:       input.AccountID,
		Type:            input.Type,
		Amount:          domain.RoundMoney(input.Amount),
		Description:     strings.TrimSpace(input.Description),
		TransactionDate: domain.DateOnly(input.TransactionDate),
		CreatedBy:       input.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		logger.LogError(s.log, "transaction", "CreateTransaction", "persist transaction", tx.ID.String(), err)
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	result := &Result{Transaction: tx, Warnings: []string{}}
	s.cascade(ctx, result, tx.TransactionDate, tx.AccountID, tx.WorkspaceID)
	return result, nil
}

// UpdateTransaction replaces a live transaction's editable fields
// Logic:
//  1. Load the current version; soft-deleted transactions cannot be edited
//  2. Validate the new version and save it
//  3. Cascade on the new account from the earlier of the old and new dates
//  4. When the account changed, also cascade on the old account from the old date
func (s *TransactionService) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*Result, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.Access.Require(ctx, input.WorkspaceID, input.UserID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	existing, err := s.TransactionRepo.GetByID(ctx, input.WorkspaceID, input.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if existing.IsDeleted() {
		return nil, fmt.Errorf("%w: deleted transactions cannot be edited", domain.ErrValidation)
	}

	if input.AccountID != existing.AccountID {
		if _, err := s.AccountRepo.GetByID(ctx, input.WorkspaceID, input.AccountID); err != nil {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
	}

	updated := *existing
	updated.AccountID = input.AccountID
	updated.Type = input.Type
	updated.Amount = domain.RoundMoney(input.Amount)
	updated.Description = strings.TrimSpace(input.Description)
	updated.TransactionDate = domain.DateOnly(input.TransactionDate)
	updated.UpdatedAt = time.Now().UTC()
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.TransactionRepo.Update(ctx, &updated); err != nil {
		logger.LogError(s.log, "transaction", "UpdateTransaction", "persist transaction", updated.ID.String(), err)
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	result := &Result{Transaction: &updated, Warnings: []string{}}

	from := updated.TransactionDate
	if existing.TransactionDate.Before(from) {
		from = domain.DateOnly(existing.TransactionDate)
	}
	s.cascade(ctx, result, from, updated.AccountID, updated.WorkspaceID)

	if existing.AccountID != updated.AccountID {
		s.cascade(ctx, result, existing.TransactionDate, existing.AccountID, existing.WorkspaceID)
	}

	return result, nil
}

// DeleteTransaction soft-deletes a transaction and refreshes the checkpoints it affected
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, workspaceID, transactionID uuid.UUID) (*Result, error) {
	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	tx, err := s.TransactionRepo.GetByID(ctx, workspaceID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if tx.IsDeleted() {
		return nil, fmt.Errorf("transaction %s already deleted: %w", transactionID, domain.ErrNotFound)
	}

	deletedAt := time.Now().UTC()
	if err := s.TransactionRepo.SoftDelete(ctx, workspaceID, transactionID, deletedAt); err != nil {
		logger.LogError(s.log, "transaction", "DeleteTransaction", "soft delete", transactionID.String(), err)
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}
	tx.DeletedAt = &deletedAt

	result := &Result{Transaction: tx, Warnings: []string{}}
	s.cascade(ctx, result, tx.TransactionDate, tx.AccountID, tx.WorkspaceID)
	return result, nil
}

// RestoreTransaction brings back a soft-deleted transaction
func (s *TransactionService) RestoreTransaction(ctx context.Context, userID, workspaceID, transactionID uuid.UUID) (*Result, error) {
	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	tx, err := s.TransactionRepo.GetByID(ctx, workspaceID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if !tx.IsDeleted() {
		return nil, fmt.Errorf("%w: transaction is not deleted", domain.ErrValidation)
	}

	if err := s.TransactionRepo.Restore(ctx, workspaceID, transactionID); err != nil {
		logger.LogError(s.log, "transaction", "RestoreTransaction", "restore", transactionID.String(), err)
		return nil, fmt.Errorf("failed to restore transaction: %w", err)
	}
	tx.DeletedAt = nil

	result := &Result{Transaction: tx, Warnings: []string{}}
	s.cascade(ctx, result, tx.TransactionDate, tx.AccountID, tx.WorkspaceID)
	return result, nil
}

// ListTransactions returns the workspace's transactions, newest first
func (s *TransactionService) ListTransactions(ctx context.Context, userID, workspaceID uuid.UUID, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", domain.ErrValidation)
	}

	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionRead); err != nil {
		return nil, err
	}

	txs, err := s.TransactionRepo.List(ctx, workspaceID, filter)
	if err != nil {
		logger.LogError(s.log, "transaction", "ListTransactions", "list transactions", workspaceID.String(), err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// cascade runs the checkpoint recalculation after a successful write.
// Failures never undo the write; they mark the result stale.
func (s *TransactionService) cascade(ctx context.Context, result *Result, date time.Time, accountID, workspaceID uuid.UUID) {
	recalculated, err := s.Recalculator.RecalculateAffectedCheckpoints(ctx, date, accountID, workspaceID)
	if recalculated != nil {
		result.CheckpointsUpdated += recalculated.UpdatedCount
		result.Warnings = append(result.Warnings, recalculated.Warnings...)
		if len(recalculated.Warnings) > 0 {
			result.CheckpointsStale = true
		}
	}
	if err != nil {
		result.CheckpointsStale = true
		logger.LogError(s.log, "transaction", "cascade", "recalculate checkpoints", accountID.String(), err)
	}
}
