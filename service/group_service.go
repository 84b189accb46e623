// service/group_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/warden/dao"
	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/util"
)

// IGroupService defines the interface for group operations
type IGroupService interface {
	CreateGroup(ctx context.Context, group model.UserGroup, creatorID string) (*model.UserGroup, error)
	UpdateGroup(ctx context.Context, group model.UserGroup, updaterID string) (*model.UserGroup, error)
	DeactivateGroup(ctx context.Context, groupID string, organizationID string, deactivatorID string) error
	GetGroup(ctx context.Context, groupID string) (*model.UserGroup, error)
	ListGroups(ctx context.Context, organizationID string, limit, offset int) ([]*model.UserGroup, error)
	AddMembers(ctx context.Context, groupID string, organizationID string, userIDs []string, addedBy string, expiresAt *time.Time) error
	RemoveMembers(ctx context.Context, groupID string, organizationID string, userIDs []string) error
	GroupMembers(ctx context.Context, groupID string) ([]model.GroupMember, error)
	AssignRoles(ctx context.Context, groupID string, organizationID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error
	AssignPermissions(ctx context.Context, groupID string, organizationID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error
	GroupRoles(ctx context.Context, groupID string) ([]model.RoleGrant, error)
	GroupPermissions(ctx context.Context, groupID string) ([]model.PermissionGrant, error)
}

// GroupService handles business logic for group operations
type GroupService struct {
	groups          dao.GroupStore
	roles           dao.RoleStore
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IGroupService = &GroupService{}

// NewGroupService creates a new instance of GroupService
func NewGroupService(groups dao.GroupStore, roles dao.RoleStore, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *GroupService {
	service := &GroupService{
		groups:          groups,
		roles:           roles,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventGroupCreated, service.handleGroupCreated)
	eventBus.Subscribe(util.EventGroupUpdated, service.handleGroupUpdated)
	eventBus.Subscribe(util.EventGroupDeactivated, service.handleGroupDeactivated)

	return service
}

func (s *GroupService) handleGroupCreated(ctx context.Context, event util.Event) error {
	group := event.Payload.(model.UserGroup)
	logger.Info("Group created event received", zap.String("groupID", group.ID))

	if err := s.notificationSvc.NotifyGroupChange(ctx, "created", group); err != nil {
		logger.Warn("Failed to send group creation notification", zap.Error(err), zap.String("groupID", group.ID))
	}

	return nil
}

func (s *GroupService) handleGroupUpdated(ctx context.Context, event util.Event) error {
	group := event.Payload.(model.UserGroup)
	logger.Info("Group updated event received", zap.String("groupID", group.ID))

	if err := s.notificationSvc.NotifyGroupChange(ctx, "updated", group); err != nil {
		logger.Warn("Failed to send group update notification", zap.Error(err), zap.String("groupID", group.ID))
	}

	return nil
}

func (s *GroupService) handleGroupDeactivated(ctx context.Context, event util.Event) error {
	groupID := event.Payload.(string)
	logger.Info("Group deactivated event received", zap.String("groupID", groupID))

	if err := s.notificationSvc.NotifyGroupChange(ctx, "deactivated", model.UserGroup{ID: groupID}); err != nil {
		logger.Warn("Failed to send group deactivation notification", zap.Error(err), zap.String("groupID", groupID))
	}

	return nil
}

// CreateGroup handles the creation of a new group
func (s *GroupService) CreateGroup(ctx context.Context, group model.UserGroup, creatorID string) (*model.UserGroup, error) {
	if err := s.validationUtil.ValidateGroup(group); err != nil {
		return nil, fmt.Errorf("%w: %v", warden_errors.ErrInvalidGroupData, err)
	}

	group.CreatedBy = creatorID
	group.IsActive = true

	groupID, err := s.groups.CreateGroup(ctx, group)
	if err != nil {
		logger.Error("Error creating group", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}

	group.ID = groupID

	// Update cache
	if err := s.cacheService.SetGroup(ctx, group); err != nil {
		logger.Warn("Failed to cache group", zap.Error(err), zap.String("groupID", groupID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGroupCreated, group)

	logger.Info("Group created successfully", zap.String("groupID", groupID), zap.String("creatorID", creatorID))
	return &group, nil
}

// UpdateGroup handles updates to an existing group
func (s *GroupService) UpdateGroup(ctx context.Context, group model.UserGroup, updaterID string) (*model.UserGroup, error) {
	oldGroup, err := s.groups.GetGroup(ctx, group.ID)
	if err != nil {
		logger.Error("Error retrieving existing group", zap.Error(err), zap.String("groupID", group.ID))
		return nil, err
	}

	// The owning organization never changes after creation.
	group.OrganizationID = oldGroup.OrganizationID

	if err := s.validationUtil.ValidateGroup(group); err != nil {
		return nil, fmt.Errorf("%w: %v", warden_errors.ErrInvalidGroupData, err)
	}

	updatedGroup, err := s.groups.UpdateGroup(ctx, group)
	if err != nil {
		logger.Error("Error updating group", zap.Error(err), zap.String("groupID", group.ID), zap.String("updaterID", updaterID))
		return nil, err
	}

	// Update cache
	if err := s.cacheService.SetGroup(ctx, *updatedGroup); err != nil {
		logger.Warn("Failed to update group in cache", zap.Error(err), zap.String("groupID", group.ID))
	}
	s.invalidateGroupDecisions(ctx, updatedGroup.OrganizationID, updatedGroup.ID)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGroupUpdated, *updatedGroup)

	logger.Info("Group updated successfully", zap.String("groupID", group.ID), zap.String("updaterID", updaterID))
	return updatedGroup, nil
}

// DeactivateGroup soft-deletes a group. Memberships stay in the graph but
// stop conferring permissions.
func (s *GroupService) DeactivateGroup(ctx context.Context, groupID string, organizationID string, deactivatorID string) error {
	group, err := s.requireGroupInOrganization(ctx, groupID, organizationID)
	if err != nil {
		return err
	}

	if err := s.groups.DeactivateGroup(ctx, groupID); err != nil {
		logger.Error("Error deactivating group", zap.Error(err), zap.String("groupID", groupID), zap.String("deactivatorID", deactivatorID))
		return err
	}

	// Remove from cache
	if err := s.cacheService.DeleteGroup(ctx, groupID); err != nil {
		logger.Warn("Failed to delete group from cache", zap.Error(err), zap.String("groupID", groupID))
	}
	s.invalidateGroupDecisions(ctx, group.OrganizationID, groupID)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGroupDeactivated, groupID)

	logger.Info("Group deactivated successfully", zap.String("groupID", groupID), zap.String("deactivatorID", deactivatorID))
	return nil
}

// GetGroup retrieves a group by its ID
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*model.UserGroup, error) {
	// Try to get from cache first
	cachedGroup, err := s.cacheService.GetGroup(ctx, groupID)
	if err == nil && cachedGroup != nil {
		return cachedGroup, nil
	}

	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, warden_errors.ErrGroupNotFound) {
			return nil, warden_errors.ErrGroupNotFound
		}
		logger.Error("Error retrieving group", zap.Error(err), zap.String("groupID", groupID))
		return nil, warden_errors.ErrInternalServer
	}

	// Update cache
	if err := s.cacheService.SetGroup(ctx, *group); err != nil {
		logger.Warn("Failed to cache group", zap.Error(err), zap.String("groupID", groupID))
	}

	return group, nil
}

// ListGroups retrieves an organization's groups with pagination
func (s *GroupService) ListGroups(ctx context.Context, organizationID string, limit, offset int) ([]*model.UserGroup, error) {
	groups, err := s.groups.ListGroups(ctx, organizationID, limit, offset)
	if err != nil {
		logger.Error("Error listing groups", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

// AddMembers adds users to a group, optionally with an expiry on the
// membership.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, organizationID string, userIDs []string, addedBy string, expiresAt *time.Time) error {
	if err := s.validationUtil.ValidateExpiry(expiresAt); err != nil {
		return fmt.Errorf("%w: %v", warden_errors.ErrInvalidAssignment, err)
	}
	group, err := s.requireGroupInOrganization(ctx, groupID, organizationID)
	if err != nil {
		return err
	}

	if err := s.groups.AddMembers(ctx, groupID, userIDs, addedBy, expiresAt); err != nil {
		logger.Error("Error adding members to group", zap.Error(err), zap.String("groupID", groupID))
		return err
	}

	s.invalidateMembers(ctx, group.OrganizationID, userIDs)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGrantsChanged, map[string]interface{}{"groupID": groupID, "userIDs": userIDs})

	logger.Info("Members added to group successfully",
		zap.String("groupID", groupID),
		zap.Int("userCount", len(userIDs)),
		zap.String("addedBy", addedBy))
	return nil
}

// RemoveMembers removes users from a group. Membership edges are
// deactivated, not deleted.
func (s *GroupService) RemoveMembers(ctx context.Context, groupID string, organizationID string, userIDs []string) error {
	group, err := s.requireGroupInOrganization(ctx, groupID, organizationID)
	if err != nil {
		return err
	}

	if err := s.groups.RemoveMembers(ctx, groupID, userIDs); err != nil {
		logger.Error("Error removing members from group", zap.Error(err), zap.String("groupID", groupID))
		return err
	}

	s.invalidateMembers(ctx, group.OrganizationID, userIDs)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGrantsChanged, map[string]interface{}{"groupID": groupID, "userIDs": userIDs})

	logger.Info("Members removed from group successfully",
		zap.String("groupID", groupID),
		zap.Int("userCount", len(userIDs)))
	return nil
}

// GroupMembers lists the members of a group
func (s *GroupService) GroupMembers(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	members, err := s.groups.GroupMembers(ctx, groupID)
	if err != nil {
		logger.Error("Error listing group members", zap.Error(err), zap.String("groupID", groupID))
		return nil, err
	}

	return members, nil
}

// AssignRoles atomically replaces the group's role set. Every role must be
// visible in the group's organization.
func (s *GroupService) AssignRoles(ctx context.Context, groupID string, organizationID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error {
	if err := s.validationUtil.ValidateExpiry(expiresAt); err != nil {
		return fmt.Errorf("%w: %v", warden_errors.ErrInvalidAssignment, err)
	}
	group, err := s.requireGroupInOrganization(ctx, groupID, organizationID)
	if err != nil {
		return err
	}

	for _, roleID := range roleIDs {
		role, err := s.roles.GetRole(ctx, roleID)
		if err != nil {
			if errors.Is(err, warden_errors.ErrRoleNotFound) {
				return warden_errors.ErrInvalidAssignment
			}
			return err
		}
		if !role.VisibleIn(group.OrganizationID) {
			return warden_errors.ErrCrossOrganization
		}
	}

	if err := s.groups.AssignRolesToGroup(ctx, groupID, roleIDs, grantedBy, expiresAt); err != nil {
		logger.Error("Error assigning roles to group", zap.Error(err), zap.String("groupID", groupID))
		return err
	}

	s.invalidateGroupDecisions(ctx, group.OrganizationID, groupID)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGrantsChanged, map[string]interface{}{"groupID": groupID, "roleIDs": roleIDs})

	logger.Info("Roles assigned to group successfully",
		zap.String("groupID", groupID),
		zap.Int("roleCount", len(roleIDs)),
		zap.String("grantedBy", grantedBy))
	return nil
}

// AssignPermissions atomically replaces the group's direct permission set.
func (s *GroupService) AssignPermissions(ctx context.Context, groupID string, organizationID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error {
	if err := s.validationUtil.ValidateExpiry(expiresAt); err != nil {
		return fmt.Errorf("%w: %v", warden_errors.ErrInvalidAssignment, err)
	}
	group, err := s.requireGroupInOrganization(ctx, groupID, organizationID)
	if err != nil {
		return err
	}

	if err := s.groups.AssignPermissionsToGroup(ctx, groupID, permissionIDs, grantedBy, expiresAt); err != nil {
		logger.Error("Error assigning permissions to group", zap.Error(err), zap.String("groupID", groupID))
		return err
	}

	s.invalidateGroupDecisions(ctx, group.OrganizationID, groupID)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGrantsChanged, map[string]interface{}{"groupID": groupID, "permissionIDs": permissionIDs})

	logger.Info("Permissions assigned to group successfully",
		zap.String("groupID", groupID),
		zap.Int("permissionCount", len(permissionIDs)),
		zap.String("grantedBy", grantedBy))
	return nil
}

// GroupRoles lists the roles bound to a group
func (s *GroupService) GroupRoles(ctx context.Context, groupID string) ([]model.RoleGrant, error) {
	grants, err := s.groups.GroupRoles(ctx, groupID)
	if err != nil {
		logger.Error("Error listing group roles", zap.Error(err), zap.String("groupID", groupID))
		return nil, err
	}

	return grants, nil
}

// GroupPermissions lists the direct permissions bound to a group
func (s *GroupService) GroupPermissions(ctx context.Context, groupID string) ([]model.PermissionGrant, error) {
	grants, err := s.groups.GroupPermissions(ctx, groupID)
	if err != nil {
		logger.Error("Error listing group permissions", zap.Error(err), zap.String("groupID", groupID))
		return nil, err
	}

	return grants, nil
}

// requireGroupInOrganization loads the group and rejects the request when
// it belongs to another tenant. An empty organizationID skips the check,
// for internal callers.
func (s *GroupService) requireGroupInOrganization(ctx context.Context, groupID, organizationID string) (*model.UserGroup, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if organizationID != "" && group.OrganizationID != organizationID {
		return nil, warden_errors.ErrGroupNotFound
	}
	return group, nil
}

func (s *GroupService) invalidateGroupDecisions(ctx context.Context, organizationID, groupID string) {
	if err := s.cacheService.InvalidateOrganization(ctx, organizationID); err != nil {
		logger.Warn("Failed to invalidate decision caches", zap.Error(err), zap.String("groupID", groupID))
	}
}

func (s *GroupService) invalidateMembers(ctx context.Context, organizationID string, userIDs []string) {
	for _, userID := range userIDs {
		if err := s.cacheService.InvalidateUser(ctx, userID); err != nil {
			logger.Warn("Failed to invalidate decision caches", zap.Error(err), zap.String("userID", userID))
		}
	}
}
