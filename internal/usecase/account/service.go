package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/logger"
	"github.com/simaogato/hearthledger-backend/internal/validation"
)

// Authorizer checks the caller's role in a workspace
type Authorizer interface {
	Require(ctx context.Context, workspaceID, userID uuid.UUID, permission domain.Permission) (*domain.Membership, error)
}

// CreateAccountInput represents the input for opening an account
type CreateAccountInput struct {
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	Name        string             `validate:"required,max=100"`
	Type        domain.AccountType `validate:"required"`
	Currency    string             `validate:"required,len=3,alpha"`
}

// AccountService handles account-related operations
type AccountService struct {
	AccountRepo domain.AccountRepository
	Access      Authorizer
	log         logrus.FieldLogger
}

// NewAccountService creates a new AccountService instance
func NewAccountService(accountRepo domain.AccountRepository, access Authorizer, log logrus.FieldLogger) *AccountService {
	return &AccountService{
		AccountRepo: accountRepo,
		Access:      access,
		log:         log,
	}
}

// CreateAccount opens a new account in the workspace.
// The currency code is stored upper-case.
func (s *AccountService) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.Access.Require(ctx, input.WorkspaceID, input.UserID, domain.PermissionWrite); err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:          uuid.New(),
		WorkspaceID: input.WorkspaceID,
		Name:        input.Name,
		Type:        input.Type,
		Currency:    strings.ToUpper(input.Currency),
		CreatedAt:   time.Now().UTC(),
	}
	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.AccountRepo.Create(ctx, account); err != nil {
		logger.LogError(s.log, "account", "CreateAccount", "persist account", account.Name, err)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetAccount returns one account of the workspace
func (s *AccountService) GetAccount(ctx context.Context, userID, workspaceID, accountID uuid.UUID) (*domain.Account, error) {
	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionRead); err != nil {
		return nil, err
	}

	account, err := s.AccountRepo.GetByID(ctx, workspaceID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}

// ListAccounts returns the workspace's accounts ordered by name
func (s *AccountService) ListAccounts(ctx context.Context, userID, workspaceID uuid.UUID) ([]*domain.Account, error) {
	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionRead); err != nil {
		return nil, err
	}

	accounts, err := s.AccountRepo.List(ctx, workspaceID)
	if err != nil {
		logger.LogError(s.log, "account", "ListAccounts", "list accounts", workspaceID.String(), err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
