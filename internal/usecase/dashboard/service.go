package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/logger"
)

// BalanceCalculator computes the expected balance of an account at a cutoff date
type BalanceCalculator interface {
	CalculateExpectedBalance(ctx context.Context, accountID uuid.UUID, cutoff time.Time, workspaceID uuid.UUID) (decimal.Decimal, error)
}

// Authorizer checks the caller's role in a workspace
type Authorizer interface {
	Require(ctx context.Context, workspaceID, userID uuid.UUID, permission domain.Permission) (*domain.Membership, error)
}

// AccountSummary is one account's line on the dashboard
type AccountSummary struct {
	Account          *domain.Account
	ExpectedBalance  decimal.Decimal
	LatestCheckpoint *domain.Checkpoint // nil when the account was never reconciled
}

// WorkspaceSummary represents the reconciliation state of a workspace
type WorkspaceSummary struct {
	AsOf                time.Time
	Accounts            []AccountSummary
	TotalExpected       decimal.Decimal
	TotalLatestGap      decimal.Decimal // sum of the latest gap of every reconciled account
	OpenCheckpointCount int
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	AccountRepo    domain.AccountRepository
	CheckpointRepo domain.CheckpointRepository
	Balance        BalanceCalculator
	Access         Authorizer
	log            logrus.FieldLogger
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	accountRepo domain.AccountRepository,
	checkpointRepo domain.CheckpointRepository,
	balance BalanceCalculator,
	access Authorizer,
	log logrus.FieldLogger,
) *DashboardService {
	return &DashboardService{
		AccountRepo:    accountRepo,
		CheckpointRepo: checkpointRepo,
		Balance:        balance,
		Access:         access,
		log:            log,
	}
}

// GetWorkspaceSummary reports every account's expected balance and latest checkpoint
// Logic:
//   - ExpectedBalance: sum of the account's live transactions up to asOf (today when zero)
//   - LatestCheckpoint: newest checkpoint of the account, if any
//   - TotalExpected: sum of ExpectedBalance over accounts
//   - TotalLatestGap: sum of LatestCheckpoint.Gap over accounts that have one
//   - OpenCheckpointCount: checkpoints of the workspace still in status open
func (s *DashboardService) GetWorkspaceSummary(ctx context.Context, userID, workspaceID uuid.UUID, asOf time.Time) (*WorkspaceSummary, error) {
	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionRead); err != nil {
		return nil, err
	}

	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = domain.DateOnly(asOf)

	// 1. Get all accounts of the workspace
	accounts, err := s.AccountRepo.List(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	summary := &WorkspaceSummary{
		AsOf:           asOf,
		Accounts:       make([]AccountSummary, 0, len(accounts)),
		TotalExpected:  decimal.Zero,
		TotalLatestGap: decimal.Zero,
	}

	// 2. Expected balance and latest checkpoint per account
	for _, account := range accounts {
		expected, err := s.Balance.CalculateExpectedBalance(ctx, account.ID, asOf, workspaceID)
		if err != nil {
			logger.LogError(s.log, "dashboard", "GetWorkspaceSummary", "calculate expected balance", account.ID.String(), err)
			return nil, err
		}

		line := AccountSummary{Account: account, ExpectedBalance: expected}

		latest, err := s.CheckpointRepo.LatestForAccount(ctx, workspaceID, account.ID)
		switch {
		case err == nil:
			line.LatestCheckpoint = latest
			summary.TotalLatestGap = summary.TotalLatestGap.Add(latest.Gap)
		case errors.Is(err, domain.ErrNotFound):
			// never reconciled
		default:
			return nil, fmt.Errorf("failed to load latest checkpoint: %w", err)
		}

		summary.TotalExpected = summary.TotalExpected.Add(expected)
		summary.Accounts = append(summary.Accounts, line)
	}

	// 3. Count checkpoints still awaiting review
	checkpoints, err := s.CheckpointRepo.ListByWorkspace(ctx, workspaceID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	for _, cp := range checkpoints {
		if cp.Status == domain.CheckpointStatusOpen {
			summary.OpenCheckpointCount++
		}
	}

	return summary, nil
}
