// test/mock/grant_service.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/service"
)

// GrantService mocks service.IGrantService for controller tests.
type GrantService struct {
	mock.Mock
}

var _ service.IGrantService = (*GrantService)(nil)

func (m *GrantService) AssignRolesToUser(ctx context.Context, userID string, organizationID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error {
	args := m.Called(ctx, userID, organizationID, roleIDs, grantedBy, expiresAt)
	return args.Error(0)
}

func (m *GrantService) AssignPermissionsToUser(ctx context.Context, userID string, organizationID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error {
	args := m.Called(ctx, userID, organizationID, permissionIDs, grantedBy, expiresAt)
	return args.Error(0)
}

func (m *GrantService) UserRoles(ctx context.Context, userID string) ([]model.RoleGrant, error) {
	args := m.Called(ctx, userID)
	if grants := args.Get(0); grants != nil {
		return grants.([]model.RoleGrant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GrantService) UserPermissions(ctx context.Context, userID string) ([]model.PermissionGrant, error) {
	args := m.Called(ctx, userID)
	if grants := args.Get(0); grants != nil {
		return grants.([]model.PermissionGrant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GrantService) UserGroups(ctx context.Context, userID string) ([]model.GroupMembership, error) {
	args := m.Called(ctx, userID)
	if memberships := args.Get(0); memberships != nil {
		return memberships.([]model.GroupMembership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GrantService) EffectivePermissions(ctx context.Context, userID, organizationID string) (*model.EffectivePermissions, error) {
	args := m.Called(ctx, userID, organizationID)
	if breakdown := args.Get(0); breakdown != nil {
		return breakdown.(*model.EffectivePermissions), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GrantService) Check(ctx context.Context, userID, organizationID, codename string) (bool, error) {
	args := m.Called(ctx, userID, organizationID, codename)
	return args.Bool(0), args.Error(1)
}

func (m *GrantService) CheckAny(ctx context.Context, userID, organizationID string, codenames []string) (bool, error) {
	args := m.Called(ctx, userID, organizationID, codenames)
	return args.Bool(0), args.Error(1)
}

func (m *GrantService) CheckAll(ctx context.Context, userID, organizationID string, codenames []string) (bool, error) {
	args := m.Called(ctx, userID, organizationID, codenames)
	return args.Bool(0), args.Error(1)
}
