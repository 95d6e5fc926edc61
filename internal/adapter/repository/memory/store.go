// Package memory implements every domain repository over in-process maps.
// It backs STORAGE_BACKEND=memory and the usecase tests.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

type membershipKey struct {
	workspaceID uuid.UUID
	userID      uuid.UUID
}

// Store holds all records behind a single lock
type Store struct {
	mu           sync.RWMutex
	workspaces   map[uuid.UUID]domain.Workspace
	memberships  map[membershipKey]domain.Membership
	accounts     map[uuid.UUID]domain.Account
	transactions map[uuid.UUID]domain.Transaction
	checkpoints  map[uuid.UUID]domain.Checkpoint
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		workspaces:   make(map[uuid.UUID]domain.Workspace),
		memberships:  make(map[membershipKey]domain.Membership),
		accounts:     make(map[uuid.UUID]domain.Account),
		transactions: make(map[uuid.UUID]domain.Transaction),
		checkpoints:  make(map[uuid.UUID]domain.Checkpoint),
	}
}

// Workspaces returns the workspace repository view of the store
func (s *Store) Workspaces() domain.WorkspaceRepository { return &workspaceRepository{s: s} }

// Memberships returns the membership repository view of the store
func (s *Store) Memberships() domain.MembershipRepository { return &membershipRepository{s: s} }

// Accounts returns the account repository view of the store
func (s *Store) Accounts() domain.AccountRepository { return &accountRepository{s: s} }

// Transactions returns the transaction repository view of the store
func (s *Store) Transactions() domain.TransactionRepository { return &transactionRepository{s: s} }

// Checkpoints returns the checkpoint repository view of the store
func (s *Store) Checkpoints() domain.CheckpointRepository { return &checkpointRepository{s: s} }
