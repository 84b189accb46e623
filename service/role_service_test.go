// service/role_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/warden/dao"
	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/util"
)

func newRoleService(store *dao.MemoryStore) *RoleService {
	return NewRoleService(
		store,
		util.NewValidationUtil(),
		util.NewCacheService(),
		util.NewNotificationService(),
		util.NewEventBus(),
	)
}

func TestCreateRoleRejectsInvalidData(t *testing.T) {
	ctx := context.Background()
	svc := newRoleService(dao.NewMemoryStore())

	// Defaulted to an organization role, which needs an owning org.
	_, err := svc.CreateRole(ctx, model.Role{Name: "Editor", Codename: "editor"}, "admin")
	assert.ErrorIs(t, err, warden_errors.ErrInvalidRoleData)

	// System roles must not claim one.
	_, err = svc.CreateRole(ctx, model.Role{
		Name:           "Bad system",
		Codename:       "bad-system",
		RoleType:       model.RoleTypeSystem,
		OrganizationID: "org-a",
	}, "admin")
	assert.ErrorIs(t, err, warden_errors.ErrInvalidRoleData)
}

func TestDeactivateRoleHidesOtherTenants(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	svc := newRoleService(store)

	roleID, err := store.CreateRole(ctx, model.Role{
		Name:           "Editor",
		Codename:       "editor",
		RoleType:       model.RoleTypeOrganization,
		OrganizationID: "org-a",
		IsActive:       true,
	})
	require.NoError(t, err)

	// Another tenant's role is indistinguishable from a missing one.
	err = svc.DeactivateRole(ctx, roleID, "org-b", "admin")
	assert.ErrorIs(t, err, warden_errors.ErrRoleNotFound)

	role, err := store.GetRole(ctx, roleID)
	require.NoError(t, err)
	assert.True(t, role.IsActive)
}

func TestAssignPermissionsRejectsCrossOrganization(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	svc := newRoleService(store)

	roleID, err := store.CreateRole(ctx, model.Role{
		Name:           "Editor",
		Codename:       "editor",
		RoleType:       model.RoleTypeOrganization,
		OrganizationID: "org-a",
		IsActive:       true,
	})
	require.NoError(t, err)

	err = svc.AssignPermissions(ctx, roleID, "org-b", nil, "admin")
	assert.ErrorIs(t, err, warden_errors.ErrCrossOrganization)

	err = svc.AssignPermissions(ctx, "no-such-role", "org-a", nil, "admin")
	assert.ErrorIs(t, err, warden_errors.ErrRoleNotFound)
}

func TestListSystemRoles(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	svc := newRoleService(store)

	_, err := store.CreateRole(ctx, model.Role{
		Name:         "SaaS Administrator",
		Codename:     "saas-administrator",
		RoleType:     model.RoleTypeSystem,
		IsActive:     true,
		IsSystemRole: true,
	})
	require.NoError(t, err)
	_, err = store.CreateRole(ctx, model.Role{
		Name:           "Editor",
		Codename:       "editor",
		RoleType:       model.RoleTypeOrganization,
		OrganizationID: "org-a",
		IsActive:       true,
	})
	require.NoError(t, err)

	roles, err := svc.ListSystemRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "saas-administrator", roles[0].Codename)
}
