package checkpoint

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

// BalanceCalculator computes the expected balance of an account at a cutoff date
type BalanceCalculator interface {
	CalculateExpectedBalance(ctx context.Context, accountID uuid.UUID, cutoff time.Time, workspaceID uuid.UUID) (decimal.Decimal, error)
}

// Recalculator runs the checkpoint cascade for one account
type Recalculator interface {
	RecalculateAffectedCheckpoints(ctx context.Context, transactionDate time.Time, accountID, workspaceID uuid.UUID) (*reconcile.Result, error)
}

// Authorizer checks the caller's role in a workspace
type Authorizer interface {
	Require(ctx context.Context, workspaceID, userID uuid.UUID, permission domain.Permission) (*domain.Membership, error)
}

// CheckpointForm carries the raw form fields of a checkpoint submission
type CheckpointForm struct {
	AccountID     string `form:"account_id" json:"account_id" validate:"required,uuid"`
	Date          string `form:"date" json:"date"`
	ActualBalance string `form:"actual_balance" json:"actual_balance"`
	Notes         string `form:"notes" json:"notes" validate:"max=1000"`
}

// CreateCheckpointInput is a parsed and typed checkpoint submission
type CreateCheckpointInput struct {
	UserID        uuid.UUID
	WorkspaceID   uuid.UUID
	AccountID     uuid.UUID
	Date          time.Time
	ActualBalance decimal.Decimal
	Notes         *string `validate:"omitempty,max=1000"`
}

// CheckpointService records balance checkpoints and serves the reconciliation timeline
type CheckpointService struct {
	CheckpointRepo  domain.CheckpointRepository
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
	Balance         BalanceCalculator
	Recalculator    Recalculator
	Access          Authorizer
	log             logrus.FieldLogger
}

// NewCheckpointService creates a new CheckpointService instance
func NewCheckpointService(
	checkpointRepo domain.CheckpointRepository,
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	balance BalanceCalculator,
	recalculator Recalculator,
	access Authorizer,
	log logrus.FieldLogger,
) *CheckpointService {
	return &CheckpointService{
		CheckpointRepo:  checkpointRepo,
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		Balance:         balance,
		Recalculator:    recalculator,
		Access:          access,
		log:             log,
	}
}

// ParseCreateCheckpointForm turns raw form fields into a CreateCheckpointInput
// Logic:
//   - account_id is required and must be a UUID
//   - date defaults to now when absent; a malformed date is rejected
//   - actual_balance defaults to 0 when absent or unparsable
//   - blank notes are dropped
func ParseCreateCheckpointForm(userID, workspaceID uuid.UUID, form CheckpointForm, now time.Time) (CreateCheckpointInput, error) {
	form.AccountID = strings.TrimSpace(form.AccountID)
	if err := validation.Struct(form); err != nil {
		return CreateCheckpointInput{}, err
	}

	accountID, err := uuid.Parse(form.AccountID)
	if err != nil {
		return CreateCheckpointInput{}, fmt.Errorf("%w: invalid account_id", domain.ErrValidation)
	}

	date := domain.DateOnly(now)
	if raw := strings.TrimSpace(form.Date); raw != "" {
		date, err = domain.ParseDate(raw)
		if err != nil {
			return CreateCheckpointInput{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, raw)
		}
	}

	actual := decimal.Zero
	if raw := strings.TrimSpace(form.ActualBalance); raw != "" {
		if parsed, err := decimal.NewFromString(raw); err == nil {
			actual = parsed
		}
	}

	var notes *string
	if trimmed := strings.TrimSpace(form.Notes); trimmed != "" {
		notes = &trimmed
	}

	return CreateCheckpointInput{
		UserID:        userID,
		WorkspaceID:   workspaceID,
		AccountID:     accountID,
		Date:          date,
		ActualBalance: actual,
		Notes:         notes,
	}, nil
}

// CreateCheckpoint records the user's actual balance next to the computed expected balance
// Logic:
//  1. Validate the input and check the caller may write to the workspace
//  2. Verify the account belongs to the workspace
//  3. Expected balance = sum of the account's live transactions up to the date
//  4. Gap = actual - expected; persist with status open
//
// The actual balance is rounded to domain.MoneyScale places, the precision it is stored with.
func (s *CheckpointService) CreateCheckpoint(ctx context.Context, input CreateCheckpointInput) (*domain.Checkpoint, error) {
	if input.WorkspaceID == uuid.Nil || input.AccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: workspace and account are required", domain.ErrValidation)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.Access.Require(ctx, input.WorkspaceID, input.UserID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	if _, err := s.AccountRepo.GetByID(ctx, input.WorkspaceID, input.AccountID); err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	date := domain.DateOnly(input.Date)
	actual := domain.RoundMoney(input.ActualBalance)
	expected, err := s.Balance.CalculateExpectedBalance(ctx, input.AccountID, date, input.WorkspaceID)
	if err != nil {
		logger.LogError(s.log, "checkpoint", "CreateCheckpoint", "calculate expected balance", input.AccountID.String(), err)
		return nil, err
	}

	now := time.Now().UTC()
	cp := &domain.Checkpoint{
		ID:              uuid.New(),
		WorkspaceID:     input.WorkspaceID,
		AccountID:       input.AccountID,
		Date:            date,
		ActualBalance:   actual,
		ExpectedBalance: expected,
		Gap:             domain.CalculateGap(actual, expected),
		Status:          domain.CheckpointStatusOpen,
		Notes:           input.Notes,
		CreatedBy:       input.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := cp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.CheckpointRepo.Create(ctx, cp); err != nil {
		logger.LogError(s.log, "checkpoint", "CreateCheckpoint", "persist checkpoint", cp.ID.String(), err)
		return nil, fmt.Errorf("failed to create checkpoint: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"workspace_id":  cp.WorkspaceID,
		"account_id":    cp.AccountID,
		"checkpoint_id": cp.ID,
		"gap":           cp.Gap.String(),
	}).Info("checkpoint created")

	return cp, nil
}

// ListCheckpointsForTimeline returns checkpoints newest first, each with its period figures
// Logic:
//   - Period start = date of the next-older checkpoint of the same account,
//     or the first day of the checkpoint's month when there is none
//   - DaysSincePrevious = whole days from period start to the checkpoint date
//   - TransactionCount = live transactions on the account with period start < date <= checkpoint date
//
// A failed count degrades that entry to 0 and is logged; the other entries are unaffected.
func (s *CheckpointService) ListCheckpointsForTimeline(ctx context.Context, userID, workspaceID uuid.UUID, accountID *uuid.UUID) ([]*domain.TimelineEntry, error) {
	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionRead); err != nil {
		return nil, err
	}

	checkpoints, err := s.CheckpointRepo.ListByWorkspace(ctx, workspaceID, accountID)
	if err != nil {
		logger.LogError(s.log, "checkpoint", "ListCheckpointsForTimeline", "list checkpoints", workspaceID.String(), err)
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	entries := make([]*domain.TimelineEntry, len(checkpoints))
	previous := make(map[uuid.UUID]time.Time)

	// Walk oldest to newest so each checkpoint sees the one before it
	for i := len(checkpoints) - 1; i >= 0; i-- {
		cp := checkpoints[i]
		date := domain.DateOnly(cp.Date)

		periodStart, ok := previous[cp.AccountID]
		if !ok {
			periodStart = domain.StartOfMonth(date)
		}
		previous[cp.AccountID] = date

		count, err := s.TransactionRepo.CountInPeriod(ctx, workspaceID, cp.AccountID, periodStart, date)
		if err != nil {
			logger.LogError(s.log, "checkpoint", "ListCheckpointsForTimeline", "count transactions", cp.ID.String(), err)
			count = 0
		}

		entries[i] = &domain.TimelineEntry{
			Checkpoint:        *cp,
			DaysSincePrevious: domain.DaysBetween(periodStart, date),
			TransactionCount:  count,
		}
	}

	return entries, nil
}

// UpdateCheckpointStatus resolves, dismisses or reopens a checkpoint.
// Balances are never touched here.
func (s *CheckpointService) UpdateCheckpointStatus(ctx context.Context, userID, workspaceID, checkpointID uuid.UUID, status domain.CheckpointStatus, notes *string) (*domain.Checkpoint, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	if notes != nil && len(*notes) > 1000 {
		return nil, fmt.Errorf("%w: notes too long", domain.ErrValidation)
	}

	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	cp, err := s.CheckpointRepo.GetByID(ctx, workspaceID, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := s.CheckpointRepo.UpdateStatus(ctx, workspaceID, checkpointID, status, notes); err != nil {
		logger.LogError(s.log, "checkpoint", "UpdateCheckpointStatus", "update status", checkpointID.String(), err)
		return nil, fmt.Errorf("failed to update checkpoint status: %w", err)
	}

	cp.Status = status
	cp.Notes = notes
	cp.UpdatedAt = time.Now().UTC()
	return cp, nil
}

// RecalculateCheckpoints runs the cascade on demand for one account from a date
func (s *CheckpointService) RecalculateCheckpoints(ctx context.Context, userID, workspaceID, accountID uuid.UUID, from time.Time) (*reconcile.Result, error) {
	if from.IsZero() {
		return nil, fmt.Errorf("%w: from date is required", domain.ErrValidation)
	}

	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	if _, err := s.AccountRepo.GetByID(ctx, workspaceID, accountID); err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return s.Recalculator.RecalculateAffectedCheckpoints(ctx, from, accountID, workspaceID)
}
