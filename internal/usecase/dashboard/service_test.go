package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hearthledger-backend/internal/adapter/repository/memory"
	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/usecase/access"
	"github.com/simaogato/hearthledger-backend/internal/usecase/balance"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, store *memory.Store) (workspaceID, userID, checking, savings uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	workspaceID, userID, checking, savings = uuid.New(), uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, store.Workspaces().Create(ctx,
		&domain.Workspace{ID: workspaceID, Name: "Home", CreatedBy: userID, CreatedAt: time.Now()},
		&domain.Membership{WorkspaceID: workspaceID, UserID: userID, Role: domain.RoleViewer, CreatedAt: time.Now()},
	))
	require.NoError(t, store.Accounts().Create(ctx, &domain.Account{ID: checking, WorkspaceID: workspaceID, Name: "Checking", Type: domain.AccountTypeChecking, Currency: "EUR"}))
	require.NoError(t, store.Accounts().Create(ctx, &domain.Account{ID: savings, WorkspaceID: workspaceID, Name: "Savings", Type: domain.AccountTypeSavings, Currency: "EUR"}))

	txs := []struct {
		account uuid.UUID
		txType  domain.TransactionType
		amount  int64
		date    time.Time
	}{
		{checking, domain.TransactionTypeIncome, 2000, day(2024, 1, 1)},
		{checking, domain.TransactionTypeExpense, 300, day(2024, 1, 15)},
		{checking, domain.TransactionTypeExpense, 100, day(2024, 2, 15)}, // after asOf
		{savings, domain.TransactionTypeIncome, 500, day(2024, 1, 20)},
	}
	for _, tx := range txs {
		require.NoError(t, store.Transactions().Create(ctx, &domain.Transaction{
			ID: uuid.New(), WorkspaceID: workspaceID, AccountID: tx.account, Type: tx.txType,
			Amount: decimal.NewFromInt(tx.amount), TransactionDate: tx.date,
		}))
	}

	checkpoints := []struct {
		date     time.Time
		actual   int64
		expected int64
		status   domain.CheckpointStatus
	}{
		{day(2024, 1, 10), 1990, 2000, domain.CheckpointStatusResolved},
		{day(2024, 1, 31), 1680, 1700, domain.CheckpointStatusOpen},
	}
	for _, cp := range checkpoints {
		actual, expected := decimal.NewFromInt(cp.actual), decimal.NewFromInt(cp.expected)
		require.NoError(t, store.Checkpoints().Create(ctx, &domain.Checkpoint{
			ID: uuid.New(), WorkspaceID: workspaceID, AccountID: checking, Date: cp.date,
			ActualBalance: actual, ExpectedBalance: expected, Gap: domain.CalculateGap(actual, expected), Status: cp.status,
		}))
	}
	return workspaceID, userID, checking, savings
}

func TestGetWorkspaceSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	log, _ := test.NewNullLogger()
	workspaceID, userID, checking, savings := seed(t, store)

	service := NewDashboardService(store.Accounts(), store.Checkpoints(), balance.NewCalculator(store.Transactions()), access.NewAuthorizer(store.Memberships()), log)

	summary, err := service.GetWorkspaceSummary(ctx, userID, workspaceID, day(2024, 1, 31))
	require.NoError(t, err)

	require.Len(t, summary.Accounts, 2)
	assert.Equal(t, checking, summary.Accounts[0].Account.ID)
	assert.True(t, decimal.NewFromInt(1700).Equal(summary.Accounts[0].ExpectedBalance))
	require.NotNil(t, summary.Accounts[0].LatestCheckpoint)
	assert.Equal(t, day(2024, 1, 31), summary.Accounts[0].LatestCheckpoint.Date)

	assert.Equal(t, savings, summary.Accounts[1].Account.ID)
	assert.True(t, decimal.NewFromInt(500).Equal(summary.Accounts[1].ExpectedBalance))
	assert.Nil(t, summary.Accounts[1].LatestCheckpoint)

	assert.True(t, decimal.NewFromInt(2200).Equal(summary.TotalExpected))
	assert.True(t, decimal.NewFromInt(-20).Equal(summary.TotalLatestGap))
	assert.Equal(t, 1, summary.OpenCheckpointCount)
}

func TestGetWorkspaceSummary_RequiresMembership(t *testing.T) {
	store := memory.NewStore()
	log, _ := test.NewNullLogger()
	workspaceID, _, _, _ := seed(t, store)

	service := NewDashboardService(store.Accounts(), store.Checkpoints(), balance.NewCalculator(store.Transactions()), access.NewAuthorizer(store.Memberships()), log)

	summary, err := service.GetWorkspaceSummary(context.Background(), uuid.New(), workspaceID, time.Time{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Nil(t, summary)
}

// MockBalanceCalculator is a mock implementation of BalanceCalculator for testing
type MockBalanceCalculator struct {
	mock.Mock
}

func (m *MockBalanceCalculator) CalculateExpectedBalance(ctx context.Context, accountID uuid.UUID, cutoff time.Time, workspaceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, cutoff, workspaceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestGetWorkspaceSummary_DefaultsToToday(t *testing.T) {
	store := memory.NewStore()
	log, _ := test.NewNullLogger()
	workspaceID, userID, _, _ := seed(t, store)

	calc := new(MockBalanceCalculator)
	today := domain.DateOnly(time.Now().UTC())
	calc.On("CalculateExpectedBalance", mock.Anything, mock.Anything, today, workspaceID).Return(decimal.NewFromInt(1), nil)

	service := NewDashboardService(store.Accounts(), store.Checkpoints(), calc, access.NewAuthorizer(store.Memberships()), log)
	summary, err := service.GetWorkspaceSummary(context.Background(), userID, workspaceID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, today, summary.AsOf)
	assert.True(t, decimal.NewFromInt(2).Equal(summary.TotalExpected))
	calc.AssertNumberOfCalls(t, "CalculateExpectedBalance", 2)
}

func TestGetWorkspaceSummary_CalculatorFailure(t *testing.T) {
	store := memory.NewStore()
	log, hook := test.NewNullLogger()
	workspaceID, userID, _, _ := seed(t, store)

	calc := new(MockBalanceCalculator)
	calc.On("CalculateExpectedBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(decimal.Zero, errors.New("too many connections"))

	service := NewDashboardService(store.Accounts(), store.Checkpoints(), calc, access.NewAuthorizer(store.Memberships()), log)
	summary, err := service.GetWorkspaceSummary(context.Background(), userID, workspaceID, day(2024, 1, 31))
	assert.Error(t, err)
	assert.Nil(t, summary)
	assert.NotEmpty(t, hook.AllEntries())
}
