package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

type workspaceRepository struct {
	s *Store
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *domain.Workspace, owner *domain.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.workspaces[workspace.ID]; exists {
		return fmt.Errorf("workspace %s already exists", workspace.ID)
	}
	r.s.workspaces[workspace.ID] = *workspace
	r.s.memberships[membershipKey{owner.WorkspaceID, owner.UserID}] = *owner
	return nil
}

func (r *workspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ws, ok := r.s.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}
	return &ws, nil
}

type membershipRepository struct {
	s *Store
}

func (r *membershipRepository) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.memberships[membershipKey{workspaceID, userID}]
	if !ok {
		return nil, fmt.Errorf("membership of user %s in workspace %s: %w", userID, workspaceID, domain.ErrNotFound)
	}
	return &m, nil
}

func (r *membershipRepository) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	members := make([]*domain.Membership, 0)
	for key, m := range r.s.memberships {
		if key.workspaceID == workspaceID {
			m := m
			members = append(members, &m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

func (r *membershipRepository) Add(ctx context.Context, membership *domain.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := membershipKey{membership.WorkspaceID, membership.UserID}
	if _, exists := r.s.memberships[key]; exists {
		return fmt.Errorf("user %s is already a member of workspace %s", membership.UserID, membership.WorkspaceID)
	}
	r.s.memberships[key] = *membership
	return nil
}

func (r *membershipRepository) UpdateRole(ctx context.Context, workspaceID, userID uuid.UUID, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := membershipKey{workspaceID, userID}
	m, ok := r.s.memberships[key]
	if !ok {
		return fmt.Errorf("membership of user %s in workspace %s: %w", userID, workspaceID, domain.ErrNotFound)
	}
	m.Role = role
	r.s.memberships[key] = m
	return nil
}

func (r *membershipRepository) Remove(ctx context.Context, workspaceID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := membershipKey{workspaceID, userID}
	if _, ok := r.s.memberships[key]; !ok {
		return fmt.Errorf("membership of user %s in workspace %s: %w", userID, workspaceID, domain.ErrNotFound)
	}
	delete(r.s.memberships, key)
	return nil
}

func (r *membershipRepository) TransferOwnership(ctx context.Context, workspaceID, fromUserID, toUserID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	fromKey := membershipKey{workspaceID, fromUserID}
	toKey := membershipKey{workspaceID, toUserID}
	from, ok := r.s.memberships[fromKey]
	if !ok || from.Role != domain.RoleOwner {
		return fmt.Errorf("owner %s of workspace %s: %w", fromUserID, workspaceID, domain.ErrNotFound)
	}
	to, ok := r.s.memberships[toKey]
	if !ok {
		return fmt.Errorf("membership of user %s in workspace %s: %w", toUserID, workspaceID, domain.ErrNotFound)
	}

	from.Role = domain.RoleAdmin
	to.Role = domain.RoleOwner
	r.s.memberships[fromKey] = from
	r.s.memberships[toKey] = to
	return nil
}
