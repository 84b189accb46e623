// dao/memory_store_test.go
package dao

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/model"
)

func seedPermission(t *testing.T, store *MemoryStore, codename, modelName string) string {
	t.Helper()
	id, err := store.CreatePermission(context.Background(), model.Permission{
		Name:           codename,
		Codename:       codename,
		PermissionType: model.PermissionTypeRead,
		ModelName:      modelName,
		IsActive:       true,
	})
	require.NoError(t, err)
	return id
}

func seedRole(t *testing.T, store *MemoryStore, codename, organizationID string) string {
	t.Helper()
	roleType := model.RoleTypeOrganization
	if organizationID == "" {
		roleType = model.RoleTypeSystem
	}
	id, err := store.CreateRole(context.Background(), model.Role{
		Name:           codename,
		Codename:       codename,
		RoleType:       roleType,
		OrganizationID: organizationID,
		IsActive:       true,
	})
	require.NoError(t, err)
	return id
}

func seedGroup(t *testing.T, store *MemoryStore, name, organizationID string) string {
	t.Helper()
	id, err := store.CreateGroup(context.Background(), model.UserGroup{
		Name:           name,
		OrganizationID: organizationID,
		IsActive:       true,
	})
	require.NoError(t, err)
	return id
}

func TestCreatePermissionRejectsDuplicateCodename(t *testing.T) {
	store := NewMemoryStore()
	seedPermission(t, store, "teams:read", "teams")

	_, err := store.CreatePermission(context.Background(), model.Permission{
		Name:     "duplicate",
		Codename: "teams:read",
		IsActive: true,
	})
	assert.ErrorIs(t, err, warden_errors.ErrPermissionConflict)
}

func TestCreateRoleConflictIsPerOrganization(t *testing.T) {
	store := NewMemoryStore()
	seedRole(t, store, "editor", "org-a")

	// Same codename in a different organization is a distinct role.
	seedRole(t, store, "editor", "org-b")

	_, err := store.CreateRole(context.Background(), model.Role{
		Name:           "editor again",
		Codename:       "editor",
		RoleType:       model.RoleTypeOrganization,
		OrganizationID: "org-a",
		IsActive:       true,
	})
	assert.ErrorIs(t, err, warden_errors.ErrRoleConflict)
}

func TestAssignPermissionsToRoleIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	roleID := seedRole(t, store, "editor", "org-a")
	read := seedPermission(t, store, "teams:read", "teams")
	update := seedPermission(t, store, "teams:update", "teams")

	require.NoError(t, store.AssignPermissionsToRole(ctx, roleID, []string{read}, "admin"))

	// One bad target rejects the whole batch and leaves the previous
	// binding untouched.
	err := store.AssignPermissionsToRole(ctx, roleID, []string{update, "no-such-id"}, "admin")
	assert.ErrorIs(t, err, warden_errors.ErrInvalidAssignment)

	grants, err := store.RolePermissions(ctx, roleID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "teams:read", grants[0].Permission.Codename)
}

func TestAssignRolesToUserReplacesExistingSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	first := seedRole(t, store, "editor", "org-a")
	second := seedRole(t, store, "viewer", "org-a")

	require.NoError(t, store.AssignRolesToUser(ctx, "u1", []string{first}, "admin", nil))
	require.NoError(t, store.AssignRolesToUser(ctx, "u1", []string{second}, "admin", nil))

	grants, err := store.UserRoles(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, second, grants[0].Role.ID)

	// An empty target set clears every edge.
	require.NoError(t, store.AssignRolesToUser(ctx, "u1", nil, "admin", nil))
	grants, err = store.UserRoles(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestRemoveMembersDeactivatesEdge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	groupID := seedGroup(t, store, "engineering", "org-a")

	require.NoError(t, store.AddMembers(ctx, groupID, []string{"u1", "u2"}, "admin", nil))
	require.NoError(t, store.RemoveMembers(ctx, groupID, []string{"u1"}))

	// The edge row survives for audit history; only its liveness flips.
	members, err := store.GroupMembers(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.False(t, members[0].IsActive)
	assert.True(t, members[1].IsActive)

	// Re-adding reactivates.
	require.NoError(t, store.AddMembers(ctx, groupID, []string{"u1"}, "admin", nil))
	members, err = store.GroupMembers(ctx, groupID)
	require.NoError(t, err)
	assert.True(t, members[0].IsActive)
}

func TestAddMembersUnknownGroup(t *testing.T) {
	store := NewMemoryStore()
	err := store.AddMembers(context.Background(), "no-such-group", []string{"u1"}, "admin", nil)
	assert.ErrorIs(t, err, warden_errors.ErrGroupNotFound)
}

func TestSetGrantExpiryRewritesEdge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	perm := seedPermission(t, store, "billing:read", "billing")
	require.NoError(t, store.AssignPermissionsToUser(ctx, "u1", []string{perm}, "admin", nil))

	yesterday := time.Now().Add(-24 * time.Hour)
	store.SetGrantExpiry("u1", perm, &yesterday)

	grants, err := store.UserPermissions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.NotNil(t, grants[0].ExpiresAt)
	assert.False(t, grants[0].Live(time.Now()))
}

func TestListPermissionsFilterAndPagination(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedPermission(t, store, "teams:read", "teams")
	seedPermission(t, store, "teams:update", "teams")
	seedPermission(t, store, "users:read", "users")

	teams, err := store.ListPermissions(ctx, "teams", 10, 0)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "teams:read", teams[0].Codename)

	page, err := store.ListPermissions(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "users:read", page[0].Codename)

	empty, err := store.ListPermissions(ctx, "", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCodenamesFiltersByModel(t *testing.T) {
	store := NewMemoryStore()
	seedPermission(t, store, "teams:read", "teams")
	seedPermission(t, store, "teams:update", "teams")
	inactive := seedPermission(t, store, "teams:delete", "teams")
	seedPermission(t, store, "users:read", "users")
	require.NoError(t, store.DeactivatePermission(context.Background(), inactive))

	assert.Equal(t, []string{"teams:read", "teams:update"}, store.Codenames("teams"))
}
