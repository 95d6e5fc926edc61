package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateGap(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		expected string
		want     string
	}{
		{name: "Actual below expected gives negative gap", actual: "950", expected: "1000", want: "-50"},
		{name: "Actual above expected gives positive gap", actual: "1200.50", expected: "1000.25", want: "200.25"},
		{name: "Equal balances give zero gap", actual: "314.15", expected: "314.15", want: "0"},
		{name: "Both zero", actual: "0", expected: "0", want: "0"},
		{name: "Negative actual", actual: "-20", expected: "30", want: "-50"},
		{name: "Negative expected", actual: "10", expected: "-40", want: "50"},
		{name: "Both negative", actual: "-100", expected: "-100", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gap := CalculateGap(decimal.RequireFromString(tt.actual), decimal.RequireFromString(tt.expected))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(gap), "got %s", gap)
		})
	}
}

func TestCheckpoint_ApplyExpected(t *testing.T) {
	cp := &Checkpoint{
		ActualBalance:   decimal.NewFromInt(950),
		ExpectedBalance: decimal.NewFromInt(1000),
		Gap:             decimal.NewFromInt(-50),
	}

	// Same expected balance: nothing to write
	assert.False(t, cp.ApplyExpected(decimal.NewFromInt(1000)))
	assert.True(t, decimal.NewFromInt(-50).Equal(cp.Gap))

	// New expected balance updates both fields
	assert.True(t, cp.ApplyExpected(decimal.NewFromInt(1050)))
	assert.True(t, decimal.NewFromInt(1050).Equal(cp.ExpectedBalance))
	assert.True(t, decimal.NewFromInt(-100).Equal(cp.Gap))

	// Stale gap with a correct expected balance is still repaired
	cp.Gap = decimal.NewFromInt(7)
	assert.True(t, cp.ApplyExpected(decimal.NewFromInt(1050)))
	assert.True(t, decimal.NewFromInt(-100).Equal(cp.Gap))
}

func TestCheckpoint_Validate(t *testing.T) {
	valid := func() Checkpoint {
		return Checkpoint{
			ID:              uuid.New(),
			WorkspaceID:     uuid.New(),
			AccountID:       uuid.New(),
			Date:            time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			ActualBalance:   decimal.NewFromInt(950),
			ExpectedBalance: decimal.NewFromInt(1000),
			Gap:             decimal.NewFromInt(-50),
			Status:          CheckpointStatusOpen,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Checkpoint)
		wantErr bool
		errMsg  string
	}{
		{name: "Valid checkpoint should pass", mutate: func(c *Checkpoint) {}},
		{
			name:    "Missing workspace should fail",
			mutate:  func(c *Checkpoint) { c.WorkspaceID = uuid.Nil },
			wantErr: true,
			errMsg:  "checkpoint must reference a workspace",
		},
		{
			name:    "Missing account should fail",
			mutate:  func(c *Checkpoint) { c.AccountID = uuid.Nil },
			wantErr: true,
			errMsg:  "checkpoint must reference an account",
		},
		{
			name:    "Missing date should fail",
			mutate:  func(c *Checkpoint) { c.Date = time.Time{} },
			wantErr: true,
			errMsg:  "checkpoint date is required",
		},
		{
			name:    "Unknown status should fail",
			mutate:  func(c *Checkpoint) { c.Status = CheckpointStatus("pending") },
			wantErr: true,
			errMsg:  "invalid checkpoint status",
		},
		{
			name:    "Inconsistent gap should fail",
			mutate:  func(c *Checkpoint) { c.Gap = decimal.NewFromInt(50) },
			wantErr: true,
			errMsg:  "checkpoint gap must equal actual balance minus expected balance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := valid()
			tt.mutate(&cp)
			err := cp.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckpointStatus_IsValid(t *testing.T) {
	assert.True(t, CheckpointStatusOpen.IsValid())
	assert.True(t, CheckpointStatusResolved.IsValid())
	assert.True(t, CheckpointStatusDismissed.IsValid())
	assert.False(t, CheckpointStatus("").IsValid())
	assert.False(t, CheckpointStatus("closed").IsValid())
}
