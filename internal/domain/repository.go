package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkspaceRepository defines the interface for workspace persistence operations
type WorkspaceRepository interface {
	// Create stores the workspace together with its owner membership
	Create(ctx context.Context, workspace *Workspace, owner *Membership) error

	// GetByID retrieves a workspace by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
}

// MembershipRepository defines the interface for workspace membership persistence operations
type MembershipRepository interface {
	// Get returns ErrNotFound when the user is not a member
	Get(ctx context.Context, workspaceID, userID uuid.UUID) (*Membership, error)

	List(ctx context.Context, workspaceID uuid.UUID) ([]*Membership, error)

	Add(ctx context.Context, membership *Membership) error

	UpdateRole(ctx context.Context, workspaceID, userID uuid.UUID, role Role) error

	Remove(ctx context.Context, workspaceID, userID uuid.UUID) error

	// TransferOwnership makes toUserID the owner and demotes fromUserID to admin in one step
	TransferOwnership(ctx context.Context, workspaceID, fromUserID, toUserID uuid.UUID) error
}

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account scoped to its workspace
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Account, error)

	// List retrieves the non-deleted accounts of a workspace ordered by name
	List(ctx context.Context, workspaceID uuid.UUID) ([]*Account, error)
}

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error

	Update(ctx context.Context, tx *Transaction) error

	SoftDelete(ctx context.Context, workspaceID, id uuid.UUID, at time.Time) error

	Restore(ctx context.Context, workspaceID, id uuid.UUID) error

	// GetByID retrieves a transaction, soft-deleted ones included
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Transaction, error)

	// List retrieves transactions ordered by date descending
	List(ctx context.Context, workspaceID uuid.UUID, filter TransactionFilter) ([]*Transaction, error)

	// SumSignedAmounts sums the signed amounts of non-deleted transactions
	// on the account with transaction_date <= cutoff. Returns zero when none match.
	SumSignedAmounts(ctx context.Context, workspaceID, accountID uuid.UUID, cutoff time.Time) (decimal.Decimal, error)

	// CountInPeriod counts non-deleted transactions on the account with
	// after < transaction_date <= until
	CountInPeriod(ctx context.Context, workspaceID, accountID uuid.UUID, after, until time.Time) (int, error)
}

// CheckpointRepository defines the interface for checkpoint persistence operations
type CheckpointRepository interface {
	Create(ctx context.Context, checkpoint *Checkpoint) error

	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Checkpoint, error)

	// ListByWorkspace retrieves checkpoints ordered by date descending.
	// If accountID is nil, returns checkpoints of every account.
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, accountID *uuid.UUID) ([]*Checkpoint, error)

	// ListFromDate retrieves the account's checkpoints with date >= from, ordered by date ascending
	ListFromDate(ctx context.Context, workspaceID, accountID uuid.UUID, from time.Time) ([]*Checkpoint, error)

	// LatestForAccount returns ErrNotFound when the account has no checkpoints
	LatestForAccount(ctx context.Context, workspaceID, accountID uuid.UUID) (*Checkpoint, error)

	UpdateBalances(ctx context.Context, workspaceID, id uuid.UUID, expected, gap decimal.Decimal) error

	UpdateStatus(ctx context.Context, workspaceID, id uuid.UUID, status CheckpointStatus, notes *string) error
}
