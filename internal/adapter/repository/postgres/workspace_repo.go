package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

// workspaceRepository implements domain.WorkspaceRepository
type workspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *DB) domain.WorkspaceRepository {
	return &workspaceRepository{db: db}
}

// Create inserts the workspace and its owner membership in one database transaction
func (r *workspaceRepository) Create(ctx context.Context, workspace *domain.Workspace, owner *domain.Membership) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, created_by, created_at)
		VALUES ($1, $2, $3, $4)
	`, workspace.ID, workspace.Name, workspace.CreatedBy, workspace.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert workspace: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, owner.WorkspaceID, owner.UserID, string(owner.Role), owner.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert owner membership: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a workspace by its ID
func (r *workspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_by, created_at
		FROM workspaces
		WHERE id = $1
	`, id).Scan(&ws.ID, &ws.Name, &ws.CreatedBy, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get workspace by ID: %w", err)
	}
	return &ws, nil
}

// membershipRepository implements domain.MembershipRepository
type membershipRepository struct {
	db *DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *DB) domain.MembershipRepository {
	return &membershipRepository{db: db}
}

// Get retrieves one user's membership of a workspace
func (r *membershipRepository) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Membership, error) {
	var m domain.Membership
	var role string
	err := r.db.QueryRowContext(ctx, `
		SELECT workspace_id, user_id, role, created_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID).Scan(&m.WorkspaceID, &m.UserID, &role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("membership of user %s in workspace %s: %w", userID, workspaceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	m.Role = domain.Role(role)
	return &m, nil
}

// List retrieves the members of a workspace in join order
func (r *membershipRepository) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT workspace_id, user_id, role, created_at
		FROM workspace_members
		WHERE workspace_id = $1
		ORDER BY created_at ASC, user_id ASC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := make([]*domain.Membership, 0)
	for rows.Next() {
		var m domain.Membership
		var role string
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = domain.Role(role)
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

// Add inserts a membership
func (r *membershipRepository) Add(ctx context.Context, membership *domain.Membership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, membership.WorkspaceID, membership.UserID, string(membership.Role), membership.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// UpdateRole changes a member's role
func (r *membershipRepository) UpdateRole(ctx context.Context, workspaceID, userID uuid.UUID, role domain.Role) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE workspace_members SET role = $3
		WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("membership of user %s in workspace %s", userID, workspaceID))
}

// Remove deletes a membership
func (r *membershipRepository) Remove(ctx context.Context, workspaceID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("membership of user %s in workspace %s", userID, workspaceID))
}

// TransferOwnership demotes the current owner to admin and promotes the new owner.
// The demotion runs first so the single-owner index holds at every statement.
func (r *membershipRepository) TransferOwnership(ctx context.Context, workspaceID, fromUserID, toUserID uuid.UUID) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	result, err := dbTx.ExecContext(ctx, `
		UPDATE workspace_members SET role = 'admin'
		WHERE workspace_id = $1 AND user_id = $2 AND role = 'owner'
	`, workspaceID, fromUserID)
	if err != nil {
		return fmt.Errorf("failed to demote owner: %w", err)
	}
	if err := expectOneRow(result, fmt.Sprintf("owner %s of workspace %s", fromUserID, workspaceID)); err != nil {
		return err
	}

	result, err = dbTx.ExecContext(ctx, `
		UPDATE workspace_members SET role = 'owner'
		WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, toUserID)
	if err != nil {
		return fmt.Errorf("failed to promote new owner: %w", err)
	}
	if err := expectOneRow(result, fmt.Sprintf("membership of user %s in workspace %s", toUserID, workspaceID)); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// expectOneRow turns an UPDATE/DELETE that matched nothing into domain.ErrNotFound
func expectOneRow(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
