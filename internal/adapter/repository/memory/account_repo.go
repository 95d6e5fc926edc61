package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

type accountRepository struct {
	s *Store
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.accounts[account.ID]; exists {
		return fmt.Errorf("account %s already exists", account.ID)
	}
	r.s.accounts[account.ID] = *account
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	account, ok := r.s.accounts[id]
	if !ok || account.WorkspaceID != workspaceID || account.DeletedAt != nil {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	accounts := make([]*domain.Account, 0)
	for _, account := range r.s.accounts {
		if account.WorkspaceID == workspaceID && account.DeletedAt == nil {
			account := account
			accounts = append(accounts, &account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})
	return accounts, nil
}
