package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AccountType represents the kind of account held by a workspace
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCash       AccountType = "cash"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
)

// IsValid reports whether t is a known account type
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash, AccountTypeCredit, AccountTypeInvestment:
		return true
	}
	return false
}

// Account scopes which transactions and checkpoints belong together
type Account struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	Type        AccountType
	Currency    string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.Name == "" {
		return errors.New("account name cannot be empty")
	}
	if a.WorkspaceID == uuid.Nil {
		return errors.New("account must reference a workspace")
	}
	if !a.Type.IsValid() {
		return errors.New("invalid account type: " + string(a.Type))
	}
	if len(a.Currency) != 3 {
		return errors.New("account currency must be a 3-letter code")
	}
	return nil
}
