// dao/store.go
package dao

import (
	"context"
	"time"

	"github.com/dev-mohitbeniwal/warden/model"
)

// PermissionStore is the administrative surface over permission
// definitions. Deactivation is a soft delete: a deactivated permission
// disappears from every future resolution but its grant history stays.
type PermissionStore interface {
	CreatePermission(ctx context.Context, permission model.Permission) (string, error)
	UpdatePermission(ctx context.Context, permission model.Permission) (*model.Permission, error)
	DeactivatePermission(ctx context.Context, permissionID string) error
	GetPermission(ctx context.Context, permissionID string) (*model.Permission, error)
	PermissionByCodename(ctx context.Context, codename string) (*model.Permission, error)
	ListPermissions(ctx context.Context, modelName string, limit, offset int) ([]*model.Permission, error)
}

// RoleStore manages role definitions and role→permission bindings.
type RoleStore interface {
	CreateRole(ctx context.Context, role model.Role) (string, error)
	UpdateRole(ctx context.Context, role model.Role) (*model.Role, error)
	DeactivateRole(ctx context.Context, roleID string) error
	GetRole(ctx context.Context, roleID string) (*model.Role, error)
	ListRoles(ctx context.Context, organizationID string, limit, offset int) ([]*model.Role, error)
	ListSystemRoles(ctx context.Context) ([]*model.Role, error)

	// AssignPermissionsToRole atomically replaces the role's permission
	// set. Either every binding applies or none do.
	AssignPermissionsToRole(ctx context.Context, roleID string, permissionIDs []string, grantedBy string) error
	RolePermissions(ctx context.Context, roleID string) ([]model.PermissionGrant, error)
}

// GroupStore manages group definitions, membership and group-level grants.
type GroupStore interface {
	CreateGroup(ctx context.Context, group model.UserGroup) (string, error)
	UpdateGroup(ctx context.Context, group model.UserGroup) (*model.UserGroup, error)
	DeactivateGroup(ctx context.Context, groupID string) error
	GetGroup(ctx context.Context, groupID string) (*model.UserGroup, error)
	ListGroups(ctx context.Context, organizationID string, limit, offset int) ([]*model.UserGroup, error)

	AddMembers(ctx context.Context, groupID string, userIDs []string, addedBy string, expiresAt *time.Time) error
	// RemoveMembers deactivates the membership edges; the rows survive for
	// audit history.
	RemoveMembers(ctx context.Context, groupID string, userIDs []string) error
	GroupMembers(ctx context.Context, groupID string) ([]model.GroupMember, error)

	AssignRolesToGroup(ctx context.Context, groupID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error
	AssignPermissionsToGroup(ctx context.Context, groupID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error
	GroupRoles(ctx context.Context, groupID string) ([]model.RoleGrant, error)
	GroupPermissions(ctx context.Context, groupID string) ([]model.PermissionGrant, error)
}

// UserGrantStore manages user-side grant edges and the per-user reads the
// resolver walks.
type UserGrantStore interface {
	AssignRolesToUser(ctx context.Context, userID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error
	AssignPermissionsToUser(ctx context.Context, userID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error
	UserRoles(ctx context.Context, userID string) ([]model.RoleGrant, error)
	UserPermissions(ctx context.Context, userID string) ([]model.PermissionGrant, error)
	UserGroups(ctx context.Context, userID string) ([]model.GroupMembership, error)
}

// Store aggregates the per-entity DAOs into the full grant store. Its
// promoted method set satisfies rbac.GrantReader and, together with
// RoleByID below, rbac.CatalogSource.
type Store struct {
	*PermissionDAO
	*RoleDAO
	*GroupDAO
	*GrantDAO
}

func NewStore(permissions *PermissionDAO, roles *RoleDAO, groups *GroupDAO, grants *GrantDAO) *Store {
	return &Store{
		PermissionDAO: permissions,
		RoleDAO:       roles,
		GroupDAO:      groups,
		GrantDAO:      grants,
	}
}

// RoleByID adapts GetRole to the catalog's naming.
func (s *Store) RoleByID(ctx context.Context, roleID string) (*model.Role, error) {
	return s.RoleDAO.GetRole(ctx, roleID)
}
