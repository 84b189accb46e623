// service/role_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/warden/dao"
	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/util"
)

// IRoleService defines the interface for role operations
type IRoleService interface {
	CreateRole(ctx context.Context, role model.Role, creatorID string) (*model.Role, error)
	UpdateRole(ctx context.Context, role model.Role, updaterID string) (*model.Role, error)
	DeactivateRole(ctx context.Context, roleID string, organizationID string, deactivatorID string) error
	GetRole(ctx context.Context, roleID string) (*model.Role, error)
	ListRoles(ctx context.Context, organizationID string, limit, offset int) ([]*model.Role, error)
	ListSystemRoles(ctx context.Context) ([]*model.Role, error)
	AssignPermissions(ctx context.Context, roleID string, organizationID string, permissionIDs []string, grantedBy string) error
	RolePermissions(ctx context.Context, roleID string) ([]model.PermissionGrant, error)
}

// RoleService handles business logic for role operations
type RoleService struct {
	roles           dao.RoleStore
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IRoleService = &RoleService{}

// NewRoleService creates a new instance of RoleService
func NewRoleService(roles dao.RoleStore, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *RoleService {
	service := &RoleService{
		roles:           roles,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventRoleCreated, service.handleRoleCreated)
	eventBus.Subscribe(util.EventRoleUpdated, service.handleRoleUpdated)
	eventBus.Subscribe(util.EventRoleDeactivated, service.handleRoleDeactivated)

	return service
}

func (s *RoleService) handleRoleCreated(ctx context.Context, event util.Event) error {
	role := event.Payload.(model.Role)
	logger.Info("Role created event received", zap.String("roleID", role.ID))

	if err := s.notificationSvc.NotifyRoleChange(ctx, "created", role); err != nil {
		logger.Warn("Failed to send role creation notification", zap.Error(err), zap.String("roleID", role.ID))
	}

	return nil
}

func (s *RoleService) handleRoleUpdated(ctx context.Context, event util.Event) error {
	payload := event.Payload.(map[string]model.Role)
	oldRole, newRole := payload["old"], payload["new"]

	logger.Info("Role updated event received",
		zap.String("roleID", newRole.ID),
		zap.Time("oldUpdatedAt", oldRole.UpdatedAt),
		zap.Time("newUpdatedAt", newRole.UpdatedAt))

	if err := s.notificationSvc.NotifyRoleChange(ctx, "updated", newRole); err != nil {
		logger.Warn("Failed to send role update notification", zap.Error(err), zap.String("roleID", newRole.ID))
		// Continue execution despite the error
	}

	return nil
}

func (s *RoleService) handleRoleDeactivated(ctx context.Context, event util.Event) error {
	roleID := event.Payload.(string)
	logger.Info("Role deactivated event received", zap.String("roleID", roleID))

	if err := s.notificationSvc.NotifyRoleChange(ctx, "deactivated", model.Role{ID: roleID}); err != nil {
		logger.Warn("Failed to send role deactivation notification", zap.Error(err), zap.String("roleID", roleID))
		// Continue execution despite the error
	}

	return nil
}

// CreateRole handles the creation of a new role
func (s *RoleService) CreateRole(ctx context.Context, role model.Role, creatorID string) (*model.Role, error) {
	if role.RoleType == "" {
		role.RoleType = model.RoleTypeOrganization
	}
	role.IsSystemRole = role.RoleType == model.RoleTypeSystem

	if err := s.validationUtil.ValidateRole(role); err != nil {
		return nil, fmt.Errorf("%w: %v", warden_errors.ErrInvalidRoleData, err)
	}

	role.IsActive = true

	roleID, err := s.roles.CreateRole(ctx, role)
	if err != nil {
		logger.Error("Error creating role", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}

	role.ID = roleID

	// Update cache
	if err := s.cacheService.SetRole(ctx, role); err != nil {
		logger.Warn("Failed to cache role", zap.Error(err), zap.String("roleID", roleID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventRoleCreated, role)

	logger.Info("Role created successfully", zap.String("roleID", roleID), zap.String("creatorID", creatorID))
	return &role, nil
}

// UpdateRole handles updates to an existing role
func (s *RoleService) UpdateRole(ctx context.Context, role model.Role, updaterID string) (*model.Role, error) {
	oldRole, err := s.roles.GetRole(ctx, role.ID)
	if err != nil {
		logger.Error("Error retrieving existing role", zap.Error(err), zap.String("roleID", role.ID))
		return nil, err
	}

	// Role type and owning organization are fixed at creation.
	role.RoleType = oldRole.RoleType
	role.OrganizationID = oldRole.OrganizationID
	role.IsSystemRole = oldRole.IsSystemRole

	if err := s.validationUtil.ValidateRole(role); err != nil {
		return nil, fmt.Errorf("%w: %v", warden_errors.ErrInvalidRoleData, err)
	}

	updatedRole, err := s.roles.UpdateRole(ctx, role)
	if err != nil {
		logger.Error("Error updating role", zap.Error(err), zap.String("roleID", role.ID), zap.String("updaterID", updaterID))
		return nil, err
	}

	// Update cache
	if err := s.cacheService.SetRole(ctx, *updatedRole); err != nil {
		logger.Warn("Failed to update role in cache", zap.Error(err), zap.String("roleID", role.ID))
	}
	s.invalidateRoleDecisions(ctx, updatedRole)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventRoleUpdated, map[string]model.Role{
		"old": *oldRole,
		"new": *updatedRole,
	})

	logger.Info("Role updated successfully", zap.String("roleID", role.ID), zap.String("updaterID", updaterID))
	return updatedRole, nil
}

// DeactivateRole soft-deletes a role. Existing assignments stay in the
// graph but stop conferring permissions.
func (s *RoleService) DeactivateRole(ctx context.Context, roleID string, organizationID string, deactivatorID string) error {
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if organizationID != "" && !role.VisibleIn(organizationID) {
		return warden_errors.ErrRoleNotFound
	}

	if err := s.roles.DeactivateRole(ctx, roleID); err != nil {
		logger.Error("Error deactivating role", zap.Error(err), zap.String("roleID", roleID), zap.String("deactivatorID", deactivatorID))
		return err
	}

	// Remove from cache
	if err := s.cacheService.DeleteRole(ctx, roleID); err != nil {
		logger.Warn("Failed to delete role from cache", zap.Error(err), zap.String("roleID", roleID))
	}
	s.invalidateRoleDecisions(ctx, role)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventRoleDeactivated, roleID)

	logger.Info("Role deactivated successfully", zap.String("roleID", roleID), zap.String("deactivatorID", deactivatorID))
	return nil
}

// GetRole retrieves a role by its ID
func (s *RoleService) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	// Try to get from cache first
	cachedRole, err := s.cacheService.GetRole(ctx, roleID)
	if err == nil && cachedRole != nil {
		return cachedRole, nil
	}

	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		if errors.Is(err, warden_errors.ErrRoleNotFound) {
			return nil, warden_errors.ErrRoleNotFound
		}
		logger.Error("Error retrieving role", zap.Error(err), zap.String("roleID", roleID))
		return nil, warden_errors.ErrInternalServer
	}

	// Update cache
	if err := s.cacheService.SetRole(ctx, *role); err != nil {
		logger.Warn("Failed to cache role", zap.Error(err), zap.String("roleID", roleID))
	}

	return role, nil
}

// ListRoles retrieves an organization's roles with pagination
func (s *RoleService) ListRoles(ctx context.Context, organizationID string, limit, offset int) ([]*model.Role, error) {
	roles, err := s.roles.ListRoles(ctx, organizationID, limit, offset)
	if err != nil {
		logger.Error("Error listing roles", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// ListSystemRoles retrieves the global system roles
func (s *RoleService) ListSystemRoles(ctx context.Context) ([]*model.Role, error) {
	roles, err := s.roles.ListSystemRoles(ctx)
	if err != nil {
		logger.Error("Error listing system roles", zap.Error(err))
		return nil, fmt.Errorf("failed to list system roles: %w", err)
	}

	return roles, nil
}

// AssignPermissions atomically replaces the role's permission set. The role
// must be visible in the requesting organization.
func (s *RoleService) AssignPermissions(ctx context.Context, roleID string, organizationID string, permissionIDs []string, grantedBy string) error {
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if organizationID != "" && !role.VisibleIn(organizationID) {
		return warden_errors.ErrCrossOrganization
	}

	if err := s.roles.AssignPermissionsToRole(ctx, roleID, permissionIDs, grantedBy); err != nil {
		logger.Error("Error assigning permissions to role",
			zap.Error(err),
			zap.String("roleID", roleID),
			zap.String("grantedBy", grantedBy))
		return err
	}

	s.invalidateRoleDecisions(ctx, role)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGrantsChanged, map[string]string{"roleID": roleID})

	logger.Info("Permissions assigned to role successfully",
		zap.String("roleID", roleID),
		zap.Int("permissionCount", len(permissionIDs)),
		zap.String("grantedBy", grantedBy))
	return nil
}

// RolePermissions lists the permissions bound to a role
func (s *RoleService) RolePermissions(ctx context.Context, roleID string) ([]model.PermissionGrant, error) {
	grants, err := s.roles.RolePermissions(ctx, roleID)
	if err != nil {
		logger.Error("Error listing role permissions", zap.Error(err), zap.String("roleID", roleID))
		return nil, err
	}

	return grants, nil
}

// invalidateRoleDecisions drops cached decisions affected by a role change.
// A system role can contribute in any organization, so those flush
// everything.
func (s *RoleService) invalidateRoleDecisions(ctx context.Context, role *model.Role) {
	var err error
	if role.RoleType == model.RoleTypeSystem {
		err = s.cacheService.InvalidateAll(ctx)
	} else {
		err = s.cacheService.InvalidateOrganization(ctx, role.OrganizationID)
	}
	if err != nil {
		logger.Warn("Failed to invalidate decision caches", zap.Error(err), zap.String("roleID", role.ID))
	}
}
