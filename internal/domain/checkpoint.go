package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckpointStatus is the review state of a checkpoint
type CheckpointStatus string

const (
	CheckpointStatusOpen      CheckpointStatus = "open"
	CheckpointStatusResolved  CheckpointStatus = "resolved"
	CheckpointStatusDismissed CheckpointStatus = "dismissed"
)

// IsValid reports whether s is a known status
func (s CheckpointStatus) IsValid() bool {
	switch s {
	case CheckpointStatusOpen, CheckpointStatusResolved, CheckpointStatusDismissed:
		return true
	}
	return false
}

// Checkpoint is a user-asserted balance for one account at one date,
// next to the balance the recorded transactions say it should be.
type Checkpoint struct {
	ID              uuid.UUID
	WorkspaceID     uuid.UUID
	AccountID       uuid.UUID
	Date            time.Time
	ActualBalance   decimal.Decimal // declared by the user
	ExpectedBalance decimal.Decimal // sum of transactions up to Date
	Gap             decimal.Decimal // ActualBalance - ExpectedBalance
	Status          CheckpointStatus
	Notes           *string
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CalculateGap returns actual - expected
func CalculateGap(actual, expected decimal.Decimal) decimal.Decimal {
	return actual.Sub(expected)
}

// ApplyExpected sets a freshly computed expected balance and the matching gap.
// Returns false when neither value changed, so callers can skip the write.
func (c *Checkpoint) ApplyExpected(expected decimal.Decimal) bool {
	gap := CalculateGap(c.ActualBalance, expected)
	if c.ExpectedBalance.Equal(expected) && c.Gap.Equal(gap) {
		return false
	}
	c.ExpectedBalance = expected
	c.Gap = gap
	return true
}

// Validate ensures the checkpoint adheres to domain rules
func (c *Checkpoint) Validate() error {
	if c.WorkspaceID == uuid.Nil {
		return errors.New("checkpoint must reference a workspace")
	}
	if c.AccountID == uuid.Nil {
		return errors.New("checkpoint must reference an account")
	}
	if c.Date.IsZero() {
		return errors.New("checkpoint date is required")
	}
	if !c.Status.IsValid() {
		return errors.New("invalid checkpoint status: " + string(c.Status))
	}
	if !c.Gap.Equal(CalculateGap(c.ActualBalance, c.ExpectedBalance)) {
		return errors.New("checkpoint gap must equal actual balance minus expected balance")
	}
	return nil
}

// TimelineEntry is a checkpoint decorated with the figures shown on the timeline
type TimelineEntry struct {
	Checkpoint
	DaysSincePrevious int
	TransactionCount  int
}
