// test/mock/permission_service.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/service"
)

// PermissionService mocks service.IPermissionService for controller tests.
type PermissionService struct {
	mock.Mock
}

var _ service.IPermissionService = (*PermissionService)(nil)

func (m *PermissionService) CreatePermission(ctx context.Context, permission model.Permission, creatorID string) (*model.Permission, error) {
	args := m.Called(ctx, permission, creatorID)
	if p := args.Get(0); p != nil {
		return p.(*model.Permission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PermissionService) UpdatePermission(ctx context.Context, permission model.Permission, updaterID string) (*model.Permission, error) {
	args := m.Called(ctx, permission, updaterID)
	if p := args.Get(0); p != nil {
		return p.(*model.Permission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PermissionService) DeactivatePermission(ctx context.Context, permissionID string, deactivatorID string) error {
	args := m.Called(ctx, permissionID, deactivatorID)
	return args.Error(0)
}

func (m *PermissionService) GetPermission(ctx context.Context, permissionID string) (*model.Permission, error) {
	args := m.Called(ctx, permissionID)
	if p := args.Get(0); p != nil {
		return p.(*model.Permission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PermissionService) GetPermissionByCodename(ctx context.Context, codename string) (*model.Permission, error) {
	args := m.Called(ctx, codename)
	if p := args.Get(0); p != nil {
		return p.(*model.Permission), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PermissionService) ListPermissions(ctx context.Context, modelName string, limit, offset int) ([]*model.Permission, error) {
	args := m.Called(ctx, modelName, limit, offset)
	if permissions := args.Get(0); permissions != nil {
		return permissions.([]*model.Permission), args.Error(1)
	}
	return nil, args.Error(1)
}
