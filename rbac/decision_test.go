// rbac/decision_test.go
package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-test DecisionCache that counts traffic.
type fakeCache struct {
	entries map[string][]string
	hits    int
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]string)}
}

func (c *fakeCache) Get(ctx context.Context, userID, organizationID string) ([]string, bool) {
	codenames, ok := c.entries[userID+":"+organizationID]
	if ok {
		c.hits++
	}
	return codenames, ok
}

func (c *fakeCache) Put(ctx context.Context, userID, organizationID string, codenames []string) {
	c.puts++
	c.entries[userID+":"+organizationID] = codenames
}

func (c *fakeCache) drop(userID, organizationID string) {
	delete(c.entries, userID+":"+organizationID)
}

func TestCheckerFailsClosedOnEmptySubject(t *testing.T) {
	f := newFixture(t)
	checker := NewChecker(f.store)

	allowed, err := checker.HasPermission(f.ctx, "", "teams:read", "org-a")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = checker.HasPermission(f.ctx, "u1", "teams:read", "")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestHasAllHasAnySetLaws(t *testing.T) {
	f := newFixture(t)
	roleID := f.orgRole("editor", "org-a",
		f.permission("teams:read"),
		f.permission("teams:update"),
	)
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u1", []string{roleID}, "test", nil))
	checker := NewChecker(f.store)

	cases := []struct {
		name      string
		codenames []string
		all, any  bool
	}{
		{"subset", []string{"teams:read", "teams:update"}, true, true},
		{"partial", []string{"teams:read", "teams:delete"}, false, true},
		{"disjoint", []string{"teams:delete", "users:read"}, false, false},
		{"empty", nil, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			all, err := checker.HasAllPermissions(f.ctx, "u1", tc.codenames, "org-a")
			require.NoError(t, err)
			assert.Equal(t, tc.all, all)

			any, err := checker.HasAnyPermission(f.ctx, "u1", tc.codenames, "org-a")
			require.NoError(t, err)
			assert.Equal(t, tc.any, any)
		})
	}
}

func TestCheckerHonorsClock(t *testing.T) {
	f := newFixture(t)
	perm := f.permission("billing:read")
	expiry := time.Now().Add(time.Hour)
	require.NoError(t, f.store.AssignPermissionsToUser(f.ctx, "u1", []string{perm}, "test", &expiry))

	now := time.Now()
	checker := NewChecker(f.store, WithClock(func() time.Time { return now }))
	allowed, err := checker.HasPermission(f.ctx, "u1", "billing:read", "org-a")
	require.NoError(t, err)
	assert.True(t, allowed)

	// Move the clock past the expiry; the same grant no longer counts.
	now = now.Add(2 * time.Hour)
	allowed, err = checker.HasPermission(f.ctx, "u1", "billing:read", "org-a")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCheckerUsesDecisionCache(t *testing.T) {
	f := newFixture(t)
	perm := f.permission("teams:read")
	require.NoError(t, f.store.AssignPermissionsToUser(f.ctx, "u1", []string{perm}, "test", nil))

	cache := newFakeCache()
	checker := NewChecker(f.store, WithCache(cache))

	set, err := checker.EffectivePermissions(f.ctx, "u1", "org-a")
	require.NoError(t, err)
	assert.True(t, set.Contains("teams:read"))
	assert.Equal(t, 0, cache.hits)
	assert.Equal(t, 1, cache.puts)

	// Second resolution is served from the cache, so a store mutation is
	// not visible until the entry is dropped.
	require.NoError(t, f.store.AssignPermissionsToUser(f.ctx, "u1", nil, "test", nil))
	set, err = checker.EffectivePermissions(f.ctx, "u1", "org-a")
	require.NoError(t, err)
	assert.True(t, set.Contains("teams:read"))
	assert.Equal(t, 1, cache.hits)

	cache.drop("u1", "org-a")
	set, err = checker.EffectivePermissions(f.ctx, "u1", "org-a")
	require.NoError(t, err)
	assert.False(t, set.Contains("teams:read"))
}

func TestRolesOfFiltersVisibility(t *testing.T) {
	f := newFixture(t)
	orgRoleID := f.orgRole("editor", "org-a", f.permission("teams:read"))
	sysRoleID := f.systemRole("platform-admin", f.permission("admin:access"))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u1", []string{orgRoleID, sysRoleID}, "test", nil))

	checker := NewChecker(f.store)

	roles, err := checker.RolesOf(f.ctx, "u1", "org-a")
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	roles, err = checker.RolesOf(f.ctx, "u1", "org-b")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, sysRoleID, roles[0].Role.ID)
}

func TestBreakdown(t *testing.T) {
	f := newFixture(t)
	direct := f.permission("files:read")
	roleID := f.orgRole("editor", "org-a", f.permission("teams:read"))
	groupID := f.group("engineering", "org-a")
	require.NoError(t, f.store.AssignPermissionsToUser(f.ctx, "u1", []string{direct}, "test", nil))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u1", []string{roleID}, "test", nil))
	require.NoError(t, f.store.AddMembers(f.ctx, groupID, []string{"u1"}, "test", nil))

	checker := NewChecker(f.store)
	breakdown, err := checker.Breakdown(f.ctx, "u1", "org-a")
	require.NoError(t, err)

	assert.Equal(t, "u1", breakdown.UserID)
	assert.Equal(t, "org-a", breakdown.OrganizationID)
	assert.Equal(t, []string{"files:read", "teams:read"}, breakdown.Permissions)
	require.Len(t, breakdown.Roles, 1)
	require.Len(t, breakdown.Groups, 1)
	assert.Equal(t, groupID, breakdown.Groups[0].Group.ID)
}
