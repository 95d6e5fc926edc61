package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace groups the accounts shared by a family or a single person
type Workspace struct {
	ID        uuid.UUID
	Name      string
	CreatedBy uuid.UUID
	CreatedAt time.Time
}

// Role is a member's role inside a workspace
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// Permission is an action guarded by role
type Permission string

const (
	PermissionRead              Permission = "read"
	PermissionWrite             Permission = "write"
	PermissionManageMembers     Permission = "manage_members"
	PermissionTransferOwnership Permission = "transfer_ownership"
)

var rolePermissions = map[Role][]Permission{
	RoleOwner:  {PermissionRead, PermissionWrite, PermissionManageMembers, PermissionTransferOwnership},
	RoleAdmin:  {PermissionRead, PermissionWrite, PermissionManageMembers},
	RoleMember: {PermissionRead, PermissionWrite},
	RoleViewer: {PermissionRead},
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Can reports whether the role grants p
func (r Role) Can(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// Membership links a user to a workspace with a role
type Membership struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        Role
	CreatedAt   time.Time
}
