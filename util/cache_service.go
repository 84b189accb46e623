// util/cache_service.go

package util

import (
	"context"

	"github.com/dev-mohitbeniwal/warden/db"
	"github.com/dev-mohitbeniwal/warden/model"
)

// CacheService wraps the redis helpers so services depend on a narrow
// facade instead of the db package directly.
type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	return db.GetCachedRole(ctx, roleID)
}

func (c *CacheService) SetRole(ctx context.Context, role model.Role) error {
	return db.CacheRole(ctx, &role)
}

func (c *CacheService) DeleteRole(ctx context.Context, roleID string) error {
	return db.DeleteCachedRole(ctx, roleID)
}

func (c *CacheService) GetGroup(ctx context.Context, groupID string) (*model.UserGroup, error) {
	return db.GetCachedGroup(ctx, groupID)
}

func (c *CacheService) SetGroup(ctx context.Context, group model.UserGroup) error {
	return db.CacheGroup(ctx, &group)
}

func (c *CacheService) DeleteGroup(ctx context.Context, groupID string) error {
	return db.DeleteCachedGroup(ctx, groupID)
}

// InvalidateUser drops every cached effective permission set for a user,
// across all organizations.
func (c *CacheService) InvalidateUser(ctx context.Context, userID string) error {
	return db.InvalidateUserPermissions(ctx, userID)
}

// InvalidateOrganization drops every cached effective permission set
// resolved inside an organization.
func (c *CacheService) InvalidateOrganization(ctx context.Context, organizationID string) error {
	return db.InvalidateOrganizationPermissions(ctx, organizationID)
}

// InvalidateAll drops every cached effective permission set. Used after
// catalog-wide mutations such as permission or role deactivation.
func (c *CacheService) InvalidateAll(ctx context.Context) error {
	return db.InvalidateAllPermissions(ctx)
}
