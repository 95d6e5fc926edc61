package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

// MockAccountRepository is a mock implementation of AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Account, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

// MockAuthorizer is a mock implementation of Authorizer for testing
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Require(ctx context.Context, workspaceID, userID uuid.UUID, permission domain.Permission) (*domain.Membership, error) {
	args := m.Called(ctx, workspaceID, userID, permission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	userID := uuid.New()
	workspaceID := uuid.New()

	tests := []struct {
		name       string
		input      CreateAccountInput
		allowed    bool
		wantErr    error
		wantCreate bool
	}{
		{
			name:       "Valid account",
			input:      CreateAccountInput{UserID: userID, WorkspaceID: workspaceID, Name: "  Joint checking ", Type: domain.AccountTypeChecking, Currency: "eur"},
			allowed:    true,
			wantCreate: true,
		},
		{
			name:    "Missing name",
			input:   CreateAccountInput{UserID: userID, WorkspaceID: workspaceID, Name: "  ", Type: domain.AccountTypeChecking, Currency: "EUR"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Unknown type",
			input:   CreateAccountInput{UserID: userID, WorkspaceID: workspaceID, Name: "Stash", Type: "crypto", Currency: "EUR"},
			allowed: true,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Bad currency",
			input:   CreateAccountInput{UserID: userID, WorkspaceID: workspaceID, Name: "Stash", Type: domain.AccountTypeCash, Currency: "EU1"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "Viewer is refused",
			input:   CreateAccountInput{UserID: userID, WorkspaceID: workspaceID, Name: "Stash", Type: domain.AccountTypeCash, Currency: "EUR"},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAccountRepository)
			authz := new(MockAuthorizer)
			if tt.allowed {
				authz.On("Require", ctx, workspaceID, userID, domain.PermissionWrite).
					Return(&domain.Membership{Role: domain.RoleMember}, nil)
			} else {
				authz.On("Require", ctx, workspaceID, userID, domain.PermissionWrite).
					Return(nil, domain.ErrForbidden).Maybe()
			}
			if tt.wantCreate {
				repo.On("Create", ctx, mock.AnythingOfType("*domain.Account")).Return(nil)
			}

			service := NewAccountService(repo, authz, log)
			account, err := service.CreateAccount(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, account)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Joint checking", account.Name)
			assert.Equal(t, "EUR", account.Currency)
			assert.Equal(t, workspaceID, account.WorkspaceID)
			repo.AssertExpectations(t)
		})
	}
}

func TestCreateAccount_PersistFailure(t *testing.T) {
	ctx := context.Background()
	log, hook := test.NewNullLogger()
	repo := new(MockAccountRepository)
	authz := new(MockAuthorizer)
	userID, workspaceID := uuid.New(), uuid.New()

	authz.On("Require", ctx, workspaceID, userID, domain.PermissionWrite).Return(&domain.Membership{Role: domain.RoleOwner}, nil)
	repo.On("Create", ctx, mock.Anything).Return(errors.New("duplicate key"))

	service := NewAccountService(repo, authz, log)
	account, err := service.CreateAccount(ctx, CreateAccountInput{
		UserID: userID, WorkspaceID: workspaceID, Name: "Savings", Type: domain.AccountTypeSavings, Currency: "USD",
	})

	assert.Error(t, err)
	assert.Nil(t, account)
	assert.Len(t, hook.AllEntries(), 1)
}

func TestListAccounts(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	repo := new(MockAccountRepository)
	authz := new(MockAuthorizer)
	userID, workspaceID := uuid.New(), uuid.New()

	accounts := []*domain.Account{
		{ID: uuid.New(), WorkspaceID: workspaceID, Name: "Cash", Type: domain.AccountTypeCash, Currency: "EUR", CreatedAt: time.Now()},
	}
	authz.On("Require", ctx, workspaceID, userID, domain.PermissionRead).Return(&domain.Membership{Role: domain.RoleViewer}, nil)
	repo.On("List", ctx, workspaceID).Return(accounts, nil)

	service := NewAccountService(repo, authz, log)
	result, err := service.ListAccounts(ctx, userID, workspaceID)

	require.NoError(t, err)
	assert.Equal(t, accounts, result)
	authz.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestGetAccount_NotFound(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	repo := new(MockAccountRepository)
	authz := new(MockAuthorizer)
	userID, workspaceID, accountID := uuid.New(), uuid.New(), uuid.New()

	authz.On("Require", ctx, workspaceID, userID, domain.PermissionRead).Return(&domain.Membership{Role: domain.RoleViewer}, nil)
	repo.On("GetByID", ctx, workspaceID, accountID).Return(nil, domain.ErrNotFound)

	service := NewAccountService(repo, authz, log)
	account, err := service.GetAccount(ctx, userID, workspaceID, accountID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, account)
}
