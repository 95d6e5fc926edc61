package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/logger"
	"github.com/simaogato/hearthledger-backend/internal/validation"
)

// Authorizer checks the caller's role in a workspace
type Authorizer interface {
	Require(ctx context.Context, workspaceID, userID uuid.UUID, permission domain.Permission) (*domain.Membership, error)
}

// CreateWorkspaceInput represents the input for creating a workspace
type CreateWorkspaceInput struct {
	UserID uuid.UUID
	Name   string `validate:"required,max=100"`
}

// WorkspaceService handles workspace membership and ownership
type WorkspaceService struct {
	WorkspaceRepo  domain.WorkspaceRepository
	MembershipRepo domain.MembershipRepository
	Access         Authorizer
	log            logrus.FieldLogger
}

// NewWorkspaceService creates a new WorkspaceService instance
func NewWorkspaceService(
	workspaceRepo domain.WorkspaceRepository,
	membershipRepo domain.MembershipRepository,
	access Authorizer,
	log logrus.FieldLogger,
) *WorkspaceService {
	return &WorkspaceService{
		WorkspaceRepo:  workspaceRepo,
		MembershipRepo: membershipRepo,
		Access:         access,
		log:            log,
	}
}

// CreateWorkspace creates a workspace and makes the creator its owner
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, input CreateWorkspaceInput) (*domain.Workspace, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user", domain.ErrForbidden)
	}

	now := time.Now().UTC()
	ws := &domain.Workspace{
		ID:        uuid.New(),
		Name:      input.Name,
		CreatedBy: input.UserID,
		CreatedAt: now,
	}
	owner := &domain.Membership{
		WorkspaceID: ws.ID,
		UserID:      input.UserID,
		Role:        domain.RoleOwner,
		CreatedAt:   now,
	}

	if err := s.WorkspaceRepo.Create(ctx, ws, owner); err != nil {
		logger.LogError(s.log, "workspace", "CreateWorkspace", "persist workspace", ws.Name, err)
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return ws, nil
}

// ListMembers returns the members of a workspace in join order
func (s *WorkspaceService) ListMembers(ctx context.Context, userID, workspaceID uuid.UUID) ([]*domain.Membership, error) {
	if _, err := s.Access.Require(ctx, workspaceID, userID, domain.PermissionRead); err != nil {
		return nil, err
	}

	members, err := s.MembershipRepo.List(ctx, workspaceID)
	if err != nil {
		logger.LogError(s.log, "workspace", "ListMembers", "list members", workspaceID.String(), err)
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddMember invites a user into the workspace with a non-owner role.
// Only the owner may add admins.
func (s *WorkspaceService) AddMember(ctx context.Context, actorID, workspaceID, userID uuid.UUID, role domain.Role) (*domain.Membership, error) {
	if err := validateAssignableRole(role); err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}

	actor, err := s.Access.Require(ctx, workspaceID, actorID, domain.PermissionManageMembers)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleAdmin && actor.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: only the owner can add admins", domain.ErrForbidden)
	}

	if _, err := s.MembershipRepo.Get(ctx, workspaceID, userID); err == nil {
		return nil, fmt.Errorf("%w: user %s is already a member", domain.ErrValidation, userID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	membership := &domain.Membership{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.MembershipRepo.Add(ctx, membership); err != nil {
		logger.LogError(s.log, "workspace", "AddMember", "persist membership", userID.String(), err)
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"user_id":      userID,
		"role":         role,
		"added_by":     actorID,
	}).Info("member added")

	return membership, nil
}

// ChangeRole sets a member's role
// Logic:
//   - The owner role is only reachable through TransferOwnership
//   - The owner's own role cannot be changed here
//   - Only the owner may promote to, or change the role of, an admin
func (s *WorkspaceService) ChangeRole(ctx context.Context, actorID, workspaceID, userID uuid.UUID, role domain.Role) (*domain.Membership, error) {
	if err := validateAssignableRole(role); err != nil {
		return nil, err
	}

	actor, err := s.Access.Require(ctx, workspaceID, actorID, domain.PermissionManageMembers)
	if err != nil {
		return nil, err
	}

	target, err := s.MembershipRepo.Get(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if target.Role == domain.RoleOwner {
		return nil, fmt.Errorf("%w: the owner's role changes only through an ownership transfer", domain.ErrValidation)
	}
	if (target.Role == domain.RoleAdmin || role == domain.RoleAdmin) && actor.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: only the owner can manage admins", domain.ErrForbidden)
	}

	if err := s.MembershipRepo.UpdateRole(ctx, workspaceID, userID, role); err != nil {
		logger.LogError(s.log, "workspace", "ChangeRole", "update role", userID.String(), err)
		return nil, fmt.Errorf("failed to change role: %w", err)
	}

	target.Role = role
	return target, nil
}

// RemoveMember removes a user from the workspace.
// Any member may leave on their own; the owner can never be removed.
func (s *WorkspaceService) RemoveMember(ctx context.Context, actorID, workspaceID, userID uuid.UUID) error {
	permission := domain.PermissionManageMembers
	if actorID == userID {
		permission = domain.PermissionRead
	}

	actor, err := s.Access.Require(ctx, workspaceID, actorID, permission)
	if err != nil {
		return err
	}

	target, err := s.MembershipRepo.Get(ctx, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to load membership: %w", err)
	}
	if target.Role == domain.RoleOwner {
		return fmt.Errorf("%w: the owner cannot be removed; transfer ownership first", domain.ErrValidation)
	}
	if actorID != userID && target.Role == domain.RoleAdmin && actor.Role != domain.RoleOwner {
		return fmt.Errorf("%w: only the owner can remove admins", domain.ErrForbidden)
	}

	if err := s.MembershipRepo.Remove(ctx, workspaceID, userID); err != nil {
		logger.LogError(s.log, "workspace", "RemoveMember", "remove membership", userID.String(), err)
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// TransferOwnership hands the workspace to another existing member
// Logic:
//  1. Only the current owner may transfer
//  2. The new owner must already be a member
//  3. The previous owner stays on as admin
func (s *WorkspaceService) TransferOwnership(ctx context.Context, actorID, workspaceID, newOwnerID uuid.UUID) error {
	if actorID == newOwnerID {
		return fmt.Errorf("%w: user already owns the workspace", domain.ErrValidation)
	}

	if _, err := s.Access.Require(ctx, workspaceID, actorID, domain.PermissionTransferOwnership); err != nil {
		return err
	}

	if _, err := s.MembershipRepo.Get(ctx, workspaceID, newOwnerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: new owner must be a member of the workspace", domain.ErrValidation)
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}

	if err := s.MembershipRepo.TransferOwnership(ctx, workspaceID, actorID, newOwnerID); err != nil {
		logger.LogError(s.log, "workspace", "TransferOwnership", "transfer ownership", workspaceID.String(), err)
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"from":         actorID,
		"to":           newOwnerID,
	}).Info("ownership transferred")

	return nil
}

func validateAssignableRole(role domain.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	if role == domain.RoleOwner {
		return fmt.Errorf("%w: the owner role is assigned through an ownership transfer", domain.ErrValidation)
	}
	return nil
}
