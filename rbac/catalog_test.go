// rbac/catalog_test.go
package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
)

func TestPermissionActiveFailsClosed(t *testing.T) {
	f := newFixture(t)
	f.permission("teams:read")
	inactive := f.permission("teams:delete")
	require.NoError(t, f.store.DeactivatePermission(f.ctx, inactive))

	catalog := NewCatalog(f.store)

	assert.True(t, catalog.PermissionActive(f.ctx, "teams:read"))
	assert.False(t, catalog.PermissionActive(f.ctx, "teams:delete"))
	assert.False(t, catalog.PermissionActive(f.ctx, "no:such-codename"))
}

func TestRoleScope(t *testing.T) {
	f := newFixture(t)
	orgRoleID := f.orgRole("editor", "org-a", f.permission("teams:read"))
	sysRoleID := f.systemRole("platform-admin", f.permission("admin:access"))

	catalog := NewCatalog(f.store)

	scope, err := catalog.RoleScope(f.ctx, sysRoleID)
	require.NoError(t, err)
	assert.True(t, scope.System)
	assert.Empty(t, scope.OrganizationID)

	scope, err = catalog.RoleScope(f.ctx, orgRoleID)
	require.NoError(t, err)
	assert.False(t, scope.System)
	assert.Equal(t, "org-a", scope.OrganizationID)

	_, err = catalog.RoleScope(f.ctx, "no-such-role")
	assert.ErrorIs(t, err, warden_errors.ErrRoleNotFound)
}
