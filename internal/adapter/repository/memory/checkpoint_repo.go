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

type checkpointRepository struct {
	s *Store
}

func (r *checkpointRepository) Create(ctx context.Context, checkpoint *domain.Checkpoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.checkpoints[checkpoint.ID]; exists {
		return fmt.Errorf("checkpoint %s already exists", checkpoint.ID)
	}
	r.s.checkpoints[checkpoint.ID] = copyCheckpoint(*checkpoint)
	return nil
}

func (r *checkpointRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Checkpoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cp, ok := r.s.checkpoints[id]
	if !ok || cp.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("checkpoint %s: %w", id, domain.ErrNotFound)
	}
	out := copyCheckpoint(cp)
	return &out, nil
}

func (r *checkpointRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, accountID *uuid.UUID) ([]*domain.Checkpoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cps := r.filter(func(cp domain.Checkpoint) bool {
		return cp.WorkspaceID == workspaceID && (accountID == nil || cp.AccountID == *accountID)
	})
	sort.SliceStable(cps, func(i, j int) bool {
		if !cps[i].Date.Equal(cps[j].Date) {
			return cps[i].Date.After(cps[j].Date)
		}
		return cps[i].CreatedAt.After(cps[j].CreatedAt)
	})
	return cps, nil
}

func (r *checkpointRepository) ListFromDate(ctx context.Context, workspaceID, accountID uuid.UUID, from time.Time) ([]*domain.Checkpoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	from = domain.DateOnly(from)
	cps := r.filter(func(cp domain.Checkpoint) bool {
		return cp.WorkspaceID == workspaceID && cp.AccountID == accountID && !domain.DateOnly(cp.Date).Before(from)
	})
	sort.SliceStable(cps, func(i, j int) bool {
		if !cps[i].Date.Equal(cps[j].Date) {
			return cps[i].Date.Before(cps[j].Date)
		}
		return cps[i].CreatedAt.Before(cps[j].CreatedAt)
	})
	return cps, nil
}

func (r *checkpointRepository) LatestForAccount(ctx context.Context, workspaceID, accountID uuid.UUID) (*domain.Checkpoint, error) {
	cps, err := r.ListByWorkspace(ctx, workspaceID, &accountID)
	if err != nil {
		return nil, err
	}
	if len(cps) == 0 {
		return nil, fmt.Errorf("checkpoint for account %s: %w", accountID, domain.ErrNotFound)
	}
	return cps[0], nil
}

func (r *checkpointRepository) UpdateBalances(ctx context.Context, workspaceID, id uuid.UUID, expected, gap decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp, ok := r.s.checkpoints[id]
	if !ok || cp.WorkspaceID != workspaceID {
		return fmt.Errorf("checkpoint %s: %w", id, domain.ErrNotFound)
	}
	cp.ExpectedBalance = expected
	cp.Gap = gap
	cp.UpdatedAt = time.Now().UTC()
	r.s.checkpoints[id] = cp
	return nil
}

func (r *checkpointRepository) UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status domain.CheckpointStatus, notes *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp, ok := r.s.checkpoints[id]
	if !ok || cp.WorkspaceID != workspaceID {
		return fmt.Errorf("checkpoint %s: %w", id, domain.ErrNotFound)
	}
	cp.Status = status
	cp.Notes = copyString(notes)
	cp.UpdatedAt = time.Now().UTC()
	r.s.checkpoints[id] = cp
	return nil
}

// filter must be called with the lock held
func (r *checkpointRepository) filter(keep func(cp domain.Checkpoint) bool) []*domain.Checkpoint {
	cps := make([]*domain.Checkpoint, 0)
	for _, cp := range r.s.checkpoints {
		if keep(cp) {
			out := copyCheckpoint(cp)
			cps = append(cps, &out)
		}
	}
	return cps
}

func copyCheckpoint(cp domain.Checkpoint) domain.Checkpoint {
	cp.Notes = copyString(cp.Notes)
	return cp
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
