// seed/seed_test.go
package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogShape(t *testing.T) {
	permissions := defaultCatalog()

	// 8 models x 5 actions plus the two admin permissions.
	require.Len(t, permissions, len(seedModels)*len(seedActions)+2)

	seen := make(map[string]bool, len(permissions))
	for _, p := range permissions {
		assert.False(t, seen[p.Codename], "duplicate codename %s", p.Codename)
		seen[p.Codename] = true
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.PermissionType)
	}
	assert.True(t, seen["accounts:create"])
	assert.True(t, seen["subscriptions:list"])
	assert.True(t, seen["admin:access"])
	assert.True(t, seen["admin:manage"])
}

func TestSystemRoleSelectors(t *testing.T) {
	permissions := defaultCatalog()
	catalog := make([]string, 0, len(permissions))
	defined := make(map[string]bool, len(permissions))
	for _, p := range permissions {
		catalog = append(catalog, p.Codename)
		defined[p.Codename] = true
	}

	for _, role := range systemRoles {
		codenames := catalog
		if role.Codenames != nil {
			codenames = role.Codenames(catalog)
		}
		require.NotEmpty(t, codenames, "role %s selects no permissions", role.Codename)
		for _, codename := range codenames {
			assert.True(t, defined[codename],
				"role %s references undefined permission %s", role.Codename, codename)
		}
	}
}

func TestTeamManagerSelection(t *testing.T) {
	var teamManager systemRole
	for _, role := range systemRoles {
		if role.Codename == "team-manager" {
			teamManager = role
		}
	}
	require.NotNil(t, teamManager.Codenames)

	codenames := teamManager.Codenames(nil)
	assert.ElementsMatch(t, []string{
		"teams:read", "teams:update", "users:read", "users:update",
	}, codenames)
}

func TestUserRoleIsReadOnly(t *testing.T) {
	var user systemRole
	for _, role := range systemRoles {
		if role.Codename == "user" {
			user = role
		}
	}
	require.NotNil(t, user.Codenames)

	codenames := user.Codenames(nil)
	require.Len(t, codenames, len(seedModels))
	for _, codename := range codenames {
		assert.Contains(t, codename, ":read")
	}
}
