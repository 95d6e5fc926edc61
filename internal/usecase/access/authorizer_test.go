package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hearthledger-backend/internal/adapter/repository/memory"
	"github.com/simaogato/hearthledger-backend/internal/domain"
)

func TestAuthorizer_Require(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	workspaceID := uuid.New()
	ownerID := uuid.New()
	viewerID := uuid.New()
	strangerID := uuid.New()

	require.NoError(t, store.Workspaces().Create(ctx,
		&domain.Workspace{ID: workspaceID, Name: "Family", CreatedBy: ownerID, CreatedAt: time.Now()},
		&domain.Membership{WorkspaceID: workspaceID, UserID: ownerID, Role: domain.RoleOwner, CreatedAt: time.Now()},
	))
	require.NoError(t, store.Memberships().Add(ctx,
		&domain.Membership{WorkspaceID: workspaceID, UserID: viewerID, Role: domain.RoleViewer, CreatedAt: time.Now()},
	))

	authorizer := NewAuthorizer(store.Memberships())

	tests := []struct {
		name       string
		userID     uuid.UUID
		permission domain.Permission
		wantErr    bool
	}{
		{name: "Owner can write", userID: ownerID, permission: domain.PermissionWrite},
		{name: "Viewer can read", userID: viewerID, permission: domain.PermissionRead},
		{name: "Viewer cannot write", userID: viewerID, permission: domain.PermissionWrite, wantErr: true},
		{name: "Stranger cannot read", userID: strangerID, permission: domain.PermissionRead, wantErr: true},
		{name: "Missing user cannot read", userID: uuid.Nil, permission: domain.PermissionRead, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			membership, err := authorizer.Require(ctx, workspaceID, tt.userID, tt.permission)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrForbidden)
				assert.Nil(t, membership)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.userID, membership.UserID)
		})
	}
}

type failingMembershipRepo struct {
	domain.MembershipRepository
}

func (failingMembershipRepo) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Membership, error) {
	return nil, errors.New("connection reset")
}

func TestAuthorizer_Require_StoreFailureIsNotForbidden(t *testing.T) {
	authorizer := NewAuthorizer(failingMembershipRepo{})

	_, err := authorizer.Require(context.Background(), uuid.New(), uuid.New(), domain.PermissionRead)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "connection reset")
}
