// rbac/resolver_test.go
package rbac

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/warden/dao"
	"github.com/dev-mohitbeniwal/warden/model"
)

// fixture wraps a MemoryStore with helpers for building grant topologies.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *dao.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, ctx: context.Background(), store: dao.NewMemoryStore()}
}

func (f *fixture) permission(codename string) string {
	parts := strings.SplitN(codename, ":", 2)
	require.Len(f.t, parts, 2)
	id, err := f.store.CreatePermission(f.ctx, model.Permission{
		Name:           "Can " + parts[1] + " " + parts[0],
		Codename:       codename,
		PermissionType: parts[1],
		ModelName:      parts[0],
		IsActive:       true,
	})
	require.NoError(f.t, err)
	return id
}

func (f *fixture) systemRole(codename string, permissionIDs ...string) string {
	id, err := f.store.CreateRole(f.ctx, model.Role{
		Name:         codename,
		Codename:     codename,
		RoleType:     model.RoleTypeSystem,
		IsActive:     true,
		IsSystemRole: true,
	})
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.AssignPermissionsToRole(f.ctx, id, permissionIDs, "test"))
	return id
}

func (f *fixture) orgRole(codename, organizationID string, permissionIDs ...string) string {
	id, err := f.store.CreateRole(f.ctx, model.Role{
		Name:           codename,
		Codename:       codename,
		RoleType:       model.RoleTypeOrganization,
		OrganizationID: organizationID,
		IsActive:       true,
	})
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.AssignPermissionsToRole(f.ctx, id, permissionIDs, "test"))
	return id
}

func (f *fixture) group(name, organizationID string) string {
	id, err := f.store.CreateGroup(f.ctx, model.UserGroup{
		Name:           name,
		OrganizationID: organizationID,
		IsActive:       true,
	})
	require.NoError(f.t, err)
	return id
}

func (f *fixture) resolve(userID, organizationID string) Set {
	set, err := NewResolver(f.store).Resolve(f.ctx, userID, organizationID, time.Now())
	require.NoError(f.t, err)
	return set
}

func TestResolveGrantlessUserIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.permission("teams:read")

	set := f.resolve("nobody", "org-a")
	assert.Empty(t, set)

	// Unknown organization contexts behave the same as unknown users.
	set = f.resolve("nobody", "org-that-does-not-exist")
	assert.Empty(t, set)
}

func TestResolveUnionsEverySource(t *testing.T) {
	f := newFixture(t)
	direct := f.permission("files:read")
	viaRole := f.permission("teams:read")
	viaGroupDirect := f.permission("users:read")
	viaGroupRole := f.permission("accounts:read")
	// Also reachable directly, to prove duplicates collapse.
	shared := f.permission("reports:read")

	roleID := f.orgRole("editor", "org-a", viaRole, shared)
	groupID := f.group("engineering", "org-a")
	groupRoleID := f.orgRole("auditor", "org-a", viaGroupRole)

	require.NoError(t, f.store.AssignPermissionsToUser(f.ctx, "u1", []string{direct, shared}, "test", nil))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u1", []string{roleID}, "test", nil))
	require.NoError(t, f.store.AddMembers(f.ctx, groupID, []string{"u1"}, "test", nil))
	require.NoError(t, f.store.AssignPermissionsToGroup(f.ctx, groupID, []string{viaGroupDirect}, "test", nil))
	require.NoError(t, f.store.AssignRolesToGroup(f.ctx, groupID, []string{groupRoleID}, "test", nil))

	set := f.resolve("u1", "org-a")
	assert.Equal(t, []string{
		"accounts:read",
		"files:read",
		"reports:read",
		"teams:read",
		"users:read",
	}, set.Codenames())
}

func TestResolveIsDeterministic(t *testing.T) {
	f := newFixture(t)
	roleID := f.orgRole("editor", "org-a", f.permission("teams:read"), f.permission("teams:update"))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u1", []string{roleID}, "test", nil))

	first := f.resolve("u1", "org-a")
	second := f.resolve("u1", "org-a")
	assert.Equal(t, first.Codenames(), second.Codenames())
}

func TestResolveExcludesExpiredGrants(t *testing.T) {
	f := newFixture(t)
	billing := f.permission("billing:read")
	roleID := f.orgRole("editor", "org-a", f.permission("teams:read"))

	require.NoError(t, f.store.AssignPermissionsToUser(f.ctx, "u3", []string{billing}, "test", nil))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u3", []string{roleID}, "test", nil))

	yesterday := time.Now().Add(-24 * time.Hour)
	f.store.SetGrantExpiry("u3", billing, &yesterday)

	set := f.resolve("u3", "org-a")
	assert.False(t, set.Contains("billing:read"))
	assert.True(t, set.Contains("teams:read"))

	// Expiring the role edge drops the role's contribution too.
	f.store.SetGrantExpiry("u3", roleID, &yesterday)
	set = f.resolve("u3", "org-a")
	assert.Empty(t, set)
}

func TestResolveTenantIsolation(t *testing.T) {
	f := newFixture(t)
	orgPerm := f.permission("teams:read")
	sysPerm := f.permission("admin:access")

	orgRoleID := f.orgRole("editor", "org-a", orgPerm)
	sysRoleID := f.systemRole("platform-admin", sysPerm)

	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u4", []string{orgRoleID, sysRoleID}, "test", nil))

	inA := f.resolve("u4", "org-a")
	assert.True(t, inA.Contains("teams:read"))
	assert.True(t, inA.Contains("admin:access"))

	// Organization roles leak nothing outside their owning organization;
	// system roles are visible everywhere.
	inB := f.resolve("u4", "org-b")
	assert.False(t, inB.Contains("teams:read"))
	assert.True(t, inB.Contains("admin:access"))
}

func TestResolveGroupsAreOrganizationScoped(t *testing.T) {
	f := newFixture(t)
	perm := f.permission("files:read")
	groupID := f.group("engineering", "org-a")
	require.NoError(t, f.store.AssignPermissionsToGroup(f.ctx, groupID, []string{perm}, "test", nil))
	require.NoError(t, f.store.AddMembers(f.ctx, groupID, []string{"u2"}, "test", nil))

	assert.True(t, f.resolve("u2", "org-a").Contains("files:read"))
	// The membership edge is live, but the group belongs to org-a.
	assert.Empty(t, f.resolve("u2", "org-b"))
}

func TestResolveExcludesDeactivatedEntities(t *testing.T) {
	f := newFixture(t)
	direct := f.permission("files:read")
	viaRole := f.permission("teams:read")
	viaGroup := f.permission("users:read")

	roleID := f.orgRole("editor", "org-a", viaRole)
	groupID := f.group("engineering", "org-a")
	require.NoError(t, f.store.AssignPermissionsToGroup(f.ctx, groupID, []string{viaGroup}, "test", nil))

	require.NoError(t, f.store.AssignPermissionsToUser(f.ctx, "u1", []string{direct}, "test", nil))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u1", []string{roleID}, "test", nil))
	require.NoError(t, f.store.AddMembers(f.ctx, groupID, []string{"u1"}, "test", nil))

	require.Len(t, f.resolve("u1", "org-a"), 3)

	// Deactivating the role removes its contribution on the next
	// resolution while the assignment edge itself survives.
	require.NoError(t, f.store.DeactivateRole(f.ctx, roleID))
	set := f.resolve("u1", "org-a")
	assert.False(t, set.Contains("teams:read"))
	assert.True(t, set.Contains("files:read"))
	roles, err := f.store.UserRoles(f.ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	require.NoError(t, f.store.DeactivateGroup(f.ctx, groupID))
	set = f.resolve("u1", "org-a")
	assert.False(t, set.Contains("users:read"))

	require.NoError(t, f.store.DeactivatePermission(f.ctx, direct))
	assert.Empty(t, f.resolve("u1", "org-a"))
}

func TestResolveExcludesRemovedMembers(t *testing.T) {
	f := newFixture(t)
	perm := f.permission("files:read")
	groupID := f.group("engineering", "org-a")
	require.NoError(t, f.store.AssignPermissionsToGroup(f.ctx, groupID, []string{perm}, "test", nil))
	require.NoError(t, f.store.AddMembers(f.ctx, groupID, []string{"u1"}, "test", nil))

	assert.True(t, f.resolve("u1", "org-a").Contains("files:read"))

	require.NoError(t, f.store.RemoveMembers(f.ctx, groupID, []string{"u1"}))
	assert.Empty(t, f.resolve("u1", "org-a"))

	// Re-adding reactivates the same edge.
	require.NoError(t, f.store.AddMembers(f.ctx, groupID, []string{"u1"}, "test", nil))
	assert.True(t, f.resolve("u1", "org-a").Contains("files:read"))
}

func TestTeamManagerScenario(t *testing.T) {
	f := newFixture(t)
	roleID := f.orgRole("team-manager", "org-o",
		f.permission("teams:read"),
		f.permission("teams:update"),
		f.permission("users:read"),
	)
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u", []string{roleID}, "test", nil))

	set := f.resolve("u", "org-o")
	assert.True(t, set.Contains("teams:read"))
	assert.True(t, set.Contains("teams:update"))
	assert.False(t, set.Contains("teams:delete"))
}

func TestGroupGrantsCombineWithGroupRoles(t *testing.T) {
	f := newFixture(t)
	files := f.permission("files:read")
	accounts := f.permission("accounts:read")

	orgAdmin := f.orgRole("org-admin", "org-o", accounts)
	groupID := f.group("staff", "org-o")
	require.NoError(t, f.store.AssignPermissionsToGroup(f.ctx, groupID, []string{files}, "test", nil))
	require.NoError(t, f.store.AssignRolesToGroup(f.ctx, groupID, []string{orgAdmin}, "test", nil))
	require.NoError(t, f.store.AddMembers(f.ctx, groupID, []string{"u2"}, "test", nil))

	set := f.resolve("u2", "org-o")
	assert.True(t, set.ContainsAll([]string{"files:read", "accounts:read"}))
}
