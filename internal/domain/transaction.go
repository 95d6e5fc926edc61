package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places amounts are stored with
const MoneyScale = 4

// RoundMoney rounds an amount half away from zero to MoneyScale places
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// TransactionType represents the direction of money for an account
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is a known transaction type
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction represents a single movement of money on one account
type Transaction struct {
	ID              uuid.UUID
	WorkspaceID     uuid.UUID
	AccountID       uuid.UUID
	Type            TransactionType
	Amount          decimal.Decimal // ABSOLUTE VALUE (Always Positive)
	Description     string
	TransactionDate time.Time
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time // soft delete marker
}

// SignedAmount returns the effect of the transaction on its account balance
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsDeleted reports whether the transaction has been soft-deleted
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.WorkspaceID == uuid.Nil {
		return errors.New("transaction must reference a workspace")
	}
	if t.AccountID == uuid.Nil {
		return errors.New("transaction must reference an account")
	}
	if !t.Type.IsValid() {
		return errors.New("transaction type must be income or expense")
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive (absolute value)")
	}
	if t.TransactionDate.IsZero() {
		return errors.New("transaction date is required")
	}
	return nil
}

// TransactionFilter narrows a transaction listing
type TransactionFilter struct {
	AccountID      *uuid.UUID
	IncludeDeleted bool
	Limit          int
	Offset         int
}
