package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/logger"
)

var tracer = otel.Tracer("hearthledger/reconcile")

// BalanceCalculator computes the expected balance of an account at a cutoff date
type BalanceCalculator interface {
	CalculateExpectedBalance(ctx context.Context, accountID uuid.UUID, cutoff time.Time, workspaceID uuid.UUID) (decimal.Decimal, error)
}

// Locker serializes cascades on the same account when available.
// Lock returns a release func; an error means the cascade runs unlocked.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Result summarizes one cascade run
type Result struct {
	Examined     int
	UpdatedCount int
	Warnings     []string
}

// Recalculator refreshes the checkpoints affected by a transaction change
type Recalculator struct {
	CheckpointRepo domain.CheckpointRepository
	Balance        BalanceCalculator
	Locker         Locker // optional
	log            logrus.FieldLogger
}

// NewRecalculator creates a new Recalculator instance. locker may be nil.
func NewRecalculator(checkpointRepo domain.CheckpointRepository, balance BalanceCalculator, locker Locker, log logrus.FieldLogger) *Recalculator {
	return &Recalculator{
		CheckpointRepo: checkpointRepo,
		Balance:        balance,
		Locker:         locker,
		log:            log,
	}
}

// RecalculateAffectedCheckpoints re-derives every checkpoint of the account dated on or after transactionDate
// Logic:
//  1. Fetch the account's checkpoints with date >= transactionDate, oldest first
//  2. For each one recompute expected balance from scratch and the gap
//  3. Persist only the checkpoints whose values changed
//  4. Per-checkpoint failures become warnings; the run fails only when every checkpoint failed
//
// Checkpoints dated before transactionDate are never read or written.
// Warnings never carry the underlying error, which is only logged.
func (r *Recalculator) RecalculateAffectedCheckpoints(ctx context.Context, transactionDate time.Time, accountID, workspaceID uuid.UUID) (*Result, error) {
	from := domain.DateOnly(transactionDate)

	ctx, span := tracer.Start(ctx, "reconcile.RecalculateAffectedCheckpoints", trace.WithAttributes(
		attribute.String("workspace_id", workspaceID.String()),
		attribute.String("account_id", accountID.String()),
		attribute.String("from", from.Format(domain.DateLayout)),
	))
	defer span.End()

	release := r.lock(ctx, workspaceID, accountID)
	defer release()

	checkpoints, err := r.CheckpointRepo.ListFromDate(ctx, workspaceID, accountID, from)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list affected checkpoints: %w", err)
	}

	result := &Result{Examined: len(checkpoints), Warnings: []string{}}
	failed := 0

	for _, cp := range checkpoints {
		changed, err := r.recalculate(ctx, cp)
		if err != nil {
			failed++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("checkpoint %s (%s): not recalculated", cp.ID, cp.Date.Format(domain.DateLayout)))
			logger.LogError(r.log, "reconcile", "RecalculateAffectedCheckpoints", "recalculate checkpoint", cp.ID.String(), err)
			continue
		}
		if changed {
			result.UpdatedCount++
		}
	}

	span.SetAttributes(
		attribute.Int("examined", result.Examined),
		attribute.Int("updated", result.UpdatedCount),
		attribute.Int("failed", failed),
	)

	if len(checkpoints) > 0 && failed == len(checkpoints) {
		err := fmt.Errorf("%w: all %d affected checkpoints of account %s failed", domain.ErrRecalculationFailed, failed, accountID)
		span.RecordError(err)
		return result, err
	}

	r.log.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"account_id":   accountID,
		"from":         from.Format(domain.DateLayout),
		"examined":     result.Examined,
		"updated":      result.UpdatedCount,
		"failed":       failed,
	}).Debug("checkpoint cascade finished")

	return result, nil
}

// recalculate refreshes one checkpoint and reports whether a write happened
func (r *Recalculator) recalculate(ctx context.Context, cp *domain.Checkpoint) (bool, error) {
	expected, err := r.Balance.CalculateExpectedBalance(ctx, cp.AccountID, cp.Date, cp.WorkspaceID)
	if err != nil {
		return false, err
	}

	if !cp.ApplyExpected(expected) {
		return false, nil
	}

	if err := r.CheckpointRepo.UpdateBalances(ctx, cp.WorkspaceID, cp.ID, cp.ExpectedBalance, cp.Gap); err != nil {
		return false, fmt.Errorf("failed to persist checkpoint: %w", err)
	}
	return true, nil
}

// lock takes the best-effort per-account lock; the cascade proceeds without it on failure
func (r *Recalculator) lock(ctx context.Context, workspaceID, accountID uuid.UUID) func() {
	if r.Locker == nil {
		return func() {}
	}

	key := fmt.Sprintf("cascade:%s:%s", workspaceID, accountID)
	release, err := r.Locker.Lock(ctx, key)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"field":        "RecalculateAffectedCheckpoints",
			"workspace_id": workspaceID,
			"account_id":   accountID,
		}).Warn("could not obtain cascade lock; proceeding without lock: " + err.Error())
		return func() {}
	}
	return release
}
