package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

var tracer = otel.Tracer("hearthledger/balance")

// Calculator derives the balance an account should have from its recorded transactions
type Calculator struct {
	TransactionRepo domain.TransactionRepository
}

// NewCalculator creates a new Calculator instance
func NewCalculator(transactionRepo domain.TransactionRepository) *Calculator {
	return &Calculator{TransactionRepo: transactionRepo}
}

// CalculateExpectedBalance sums the signed amounts of the account's transactions
// Logic:
//   - Only transactions of the workspace and account are considered
//   - Soft-deleted transactions are skipped
//   - Only transactions dated on or before the cutoff date contribute
//
// Returns zero when nothing matches. Store failures are returned as-is (wrapped),
// never as a partial sum.
func (c *Calculator) CalculateExpectedBalance(ctx context.Context, accountID uuid.UUID, cutoff time.Time, workspaceID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "balance.CalculateExpectedBalance", trace.WithAttributes(
		attribute.String("account_id", accountID.String()),
		attribute.String("cutoff", domain.DateOnly(cutoff).Format(domain.DateLayout)),
	))
	defer span.End()

	sum, err := c.TransactionRepo.SumSignedAmounts(ctx, workspaceID, accountID, domain.DateOnly(cutoff))
	if err != nil {
		span.RecordError(err)
		return decimal.Zero, fmt.Errorf("failed to calculate expected balance for account %s: %w", accountID, err)
	}

	return sum, nil
}
