package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

type transactionRepository struct {
	s *Store
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.transactions[tx.ID]; exists {
		return fmt.Errorf("transaction %s already exists", tx.ID)
	}
	r.s.transactions[tx.ID] = copyTransaction(*tx)
	return nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.transactions[tx.ID]
	if !ok || existing.WorkspaceID != tx.WorkspaceID {
		return fmt.Errorf("transaction %s: %w", tx.ID, domain.ErrNotFound)
	}
	r.s.transactions[tx.ID] = copyTransaction(*tx)
	return nil
}

func (r *transactionRepository) SoftDelete(ctx context.Context, workspaceID, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, ok := r.s.transactions[id]
	if !ok || tx.WorkspaceID != workspaceID || tx.DeletedAt != nil {
		return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	tx.DeletedAt = &at
	r.s.transactions[id] = tx
	return nil
}

func (r *transactionRepository) Restore(ctx context.Context, workspaceID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx, ok := r.s.transactions[id]
	if !ok || tx.WorkspaceID != workspaceID || tx.DeletedAt == nil {
		return fmt.Errorf("deleted transaction %s: %w", id, domain.ErrNotFound)
	}
	tx.DeletedAt = nil
	r.s.transactions[id] = tx
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tx, ok := r.s.transactions[id]
	if !ok || tx.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	out := copyTransaction(tx)
	return &out, nil
}

func (r *transactionRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	txs := make([]*domain.Transaction, 0)
	for _, tx := range r.s.transactions {
		if tx.WorkspaceID != workspaceID {
			continue
		}
		if filter.AccountID != nil && tx.AccountID != *filter.AccountID {
			continue
		}
		if tx.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		out := copyTransaction(tx)
		txs = append(txs, &out)
	}

	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].TransactionDate.Equal(txs[j].TransactionDate) {
			return txs[i].TransactionDate.After(txs[j].TransactionDate)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(txs) {
			return []*domain.Transaction{}, nil
		}
		txs = txs[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(txs) {
		txs = txs[:filter.Limit]
	}
	return txs, nil
}

func (r *transactionRepository) SumSignedAmounts(ctx context.Context, workspaceID, accountID uuid.UUID, cutoff time.Time) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cutoff = domain.DateOnly(cutoff)
	sum := decimal.Zero
	for _, tx := range r.s.transactions {
		if tx.WorkspaceID != workspaceID || tx.AccountID != accountID || tx.DeletedAt != nil {
			continue
		}
		if domain.DateOnly(tx.TransactionDate).After(cutoff) {
			continue
		}
		sum = sum.Add(tx.SignedAmount())
	}
	return sum, nil
}

func (r *transactionRepository) CountInPeriod(ctx context.Context, workspaceID, accountID uuid.UUID, after, until time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	after, until = domain.DateOnly(after), domain.DateOnly(until)
	count := 0
	for _, tx := range r.s.transactions {
		if tx.WorkspaceID != workspaceID || tx.AccountID != accountID || tx.DeletedAt != nil {
			continue
		}
		date := domain.DateOnly(tx.TransactionDate)
		if date.After(after) && !date.After(until) {
			count++
		}
	}
	return count, nil
}

func copyTransaction(tx domain.Transaction) domain.Transaction {
	if tx.DeletedAt != nil {
		at := *tx.DeletedAt
		tx.DeletedAt = &at
	}
	return tx
}
