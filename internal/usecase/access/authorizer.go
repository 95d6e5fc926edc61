package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

// Authorizer checks workspace membership and role before any usecase runs
type Authorizer struct {
	MembershipRepo domain.MembershipRepository
}

// NewAuthorizer creates a new Authorizer instance
func NewAuthorizer(membershipRepo domain.MembershipRepository) *Authorizer {
	return &Authorizer{MembershipRepo: membershipRepo}
}

// Require returns the caller's membership when their role grants the permission.
// Non-members and insufficient roles yield domain.ErrForbidden.
func (a *Authorizer) Require(ctx context.Context, workspaceID, userID uuid.UUID, permission domain.Permission) (*domain.Membership, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user", domain.ErrForbidden)
	}

	membership, err := a.MembershipRepo.Get(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s is not a member of workspace %s", domain.ErrForbidden, userID, workspaceID)
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	if !membership.Role.Can(permission) {
		return nil, fmt.Errorf("%w: role %s cannot %s", domain.ErrForbidden, membership.Role, permission)
	}

	return membership, nil
}
