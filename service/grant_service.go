// service/grant_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/warden/audit"
	"github.com/dev-mohitbeniwal/warden/dao"
	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/rbac"
	"github.com/dev-mohitbeniwal/warden/util"
)

// IGrantService is the user-facing grant and decision surface: direct user
// grants, the resolved permission breakdown, and the check operations the
// enforcement layer calls.
type IGrantService interface {
	AssignRolesToUser(ctx context.Context, userID string, organizationID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error
	AssignPermissionsToUser(ctx context.Context, userID string, organizationID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error
	UserRoles(ctx context.Context, userID string) ([]model.RoleGrant, error)
	UserPermissions(ctx context.Context, userID string) ([]model.PermissionGrant, error)
	UserGroups(ctx context.Context, userID string) ([]model.GroupMembership, error)
	EffectivePermissions(ctx context.Context, userID, organizationID string) (*model.EffectivePermissions, error)
	Check(ctx context.Context, userID, organizationID, codename string) (bool, error)
	CheckAny(ctx context.Context, userID, organizationID string, codenames []string) (bool, error)
	CheckAll(ctx context.Context, userID, organizationID string, codenames []string) (bool, error)
}

// GrantService handles business logic for user grants and access decisions
type GrantService struct {
	grants         dao.UserGrantStore
	roles          dao.RoleStore
	checker        *rbac.Checker
	auditService   audit.Service
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
	eventBus       *util.EventBus
}

var _ IGrantService = &GrantService{}

// NewGrantService creates a new instance of GrantService
func NewGrantService(grants dao.UserGrantStore, roles dao.RoleStore, checker *rbac.Checker, auditService audit.Service, validationUtil *util.ValidationUtil, cacheService *util.CacheService, eventBus *util.EventBus) *GrantService {
	return &GrantService{
		grants:         grants,
		roles:          roles,
		checker:        checker,
		auditService:   auditService,
		validationUtil: validationUtil,
		cacheService:   cacheService,
		eventBus:       eventBus,
	}
}

// AssignRolesToUser atomically replaces the user's direct role set. Every
// role must be visible in the requesting organization.
func (s *GrantService) AssignRolesToUser(ctx context.Context, userID string, organizationID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error {
	if err := s.validationUtil.ValidateExpiry(expiresAt); err != nil {
		return fmt.Errorf("%w: %v", warden_errors.ErrInvalidAssignment, err)
	}

	for _, roleID := range roleIDs {
		role, err := s.roles.GetRole(ctx, roleID)
		if err != nil {
			if errors.Is(err, warden_errors.ErrRoleNotFound) {
				return warden_errors.ErrInvalidAssignment
			}
			return err
		}
		if organizationID != "" && !role.VisibleIn(organizationID) {
			return warden_errors.ErrCrossOrganization
		}
	}

	if err := s.grants.AssignRolesToUser(ctx, userID, roleIDs, grantedBy, expiresAt); err != nil {
		logger.Error("Error assigning roles to user", zap.Error(err), zap.String("userID", userID))
		return err
	}

	s.invalidateUser(ctx, userID)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGrantsChanged, map[string]interface{}{"userID": userID, "roleIDs": roleIDs})

	logger.Info("Roles assigned to user successfully",
		zap.String("userID", userID),
		zap.Int("roleCount", len(roleIDs)),
		zap.String("grantedBy", grantedBy))
	return nil
}

// AssignPermissionsToUser atomically replaces the user's direct permission
// set.
func (s *GrantService) AssignPermissionsToUser(ctx context.Context, userID string, organizationID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error {
	if err := s.validationUtil.ValidateExpiry(expiresAt); err != nil {
		return fmt.Errorf("%w: %v", warden_errors.ErrInvalidAssignment, err)
	}

	if err := s.grants.AssignPermissionsToUser(ctx, userID, permissionIDs, grantedBy, expiresAt); err != nil {
		logger.Error("Error assigning permissions to user", zap.Error(err), zap.String("userID", userID))
		return err
	}

	s.invalidateUser(ctx, userID)

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventGrantsChanged, map[string]interface{}{"userID": userID, "permissionIDs": permissionIDs})

	logger.Info("Permissions assigned to user successfully",
		zap.String("userID", userID),
		zap.Int("permissionCount", len(permissionIDs)),
		zap.String("grantedBy", grantedBy))
	return nil
}

// UserRoles lists the user's direct role grants, including inactive and
// expired edges for audit purposes
func (s *GrantService) UserRoles(ctx context.Context, userID string) ([]model.RoleGrant, error) {
	grants, err := s.grants.UserRoles(ctx, userID)
	if err != nil {
		logger.Error("Error listing user roles", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	return grants, nil
}

// UserPermissions lists the user's direct permission grants
func (s *GrantService) UserPermissions(ctx context.Context, userID string) ([]model.PermissionGrant, error) {
	grants, err := s.grants.UserPermissions(ctx, userID)
	if err != nil {
		logger.Error("Error listing user permissions", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	return grants, nil
}

// UserGroups lists the user's group memberships
func (s *GrantService) UserGroups(ctx context.Context, userID string) ([]model.GroupMembership, error) {
	memberships, err := s.grants.UserGroups(ctx, userID)
	if err != nil {
		logger.Error("Error listing user groups", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	return memberships, nil
}

// EffectivePermissions returns the resolved codename set plus the live
// roles and groups that contributed to it. A display surface, not a
// decision surface.
func (s *GrantService) EffectivePermissions(ctx context.Context, userID, organizationID string) (*model.EffectivePermissions, error) {
	breakdown, err := s.checker.Breakdown(ctx, userID, organizationID)
	if err != nil {
		logger.Error("Error resolving effective permissions",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("organizationID", organizationID))
		return nil, err
	}

	return breakdown, nil
}

// Check answers a single permission question and writes a decision audit
// entry. Resolution errors come back as errors, never as a grant.
func (s *GrantService) Check(ctx context.Context, userID, organizationID, codename string) (bool, error) {
	allowed, err := s.checker.HasPermission(ctx, userID, codename, organizationID)
	if err != nil {
		return false, err
	}

	s.logDecision(ctx, userID, organizationID, codename, allowed)
	return allowed, nil
}

// CheckAny answers whether the user holds at least one of the codenames
func (s *GrantService) CheckAny(ctx context.Context, userID, organizationID string, codenames []string) (bool, error) {
	allowed, err := s.checker.HasAnyPermission(ctx, userID, codenames, organizationID)
	if err != nil {
		return false, err
	}

	s.logDecision(ctx, userID, organizationID, fmt.Sprintf("any-of[%d]", len(codenames)), allowed)
	return allowed, nil
}

// CheckAll answers whether the user holds every one of the codenames
func (s *GrantService) CheckAll(ctx context.Context, userID, organizationID string, codenames []string) (bool, error) {
	allowed, err := s.checker.HasAllPermissions(ctx, userID, codenames, organizationID)
	if err != nil {
		return false, err
	}

	s.logDecision(ctx, userID, organizationID, fmt.Sprintf("all-of[%d]", len(codenames)), allowed)
	return allowed, nil
}

func (s *GrantService) logDecision(ctx context.Context, userID, organizationID, codename string, allowed bool) {
	auditLog := audit.AuditLog{
		Timestamp:      time.Now(),
		UserID:         userID,
		OrganizationID: organizationID,
		Action:         "ACCESS_CHECK",
		Codename:       codename,
		AccessGranted:  allowed,
	}
	if err := s.auditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
}

func (s *GrantService) invalidateUser(ctx context.Context, userID string) {
	if err := s.cacheService.InvalidateUser(ctx, userID); err != nil {
		logger.Warn("Failed to invalidate decision caches", zap.Error(err), zap.String("userID", userID))
	}
}
