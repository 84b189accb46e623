// service/permission_service.go
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

// IPermissionService defines the interface for permission catalog operations
type IPermissionService interface {
	CreatePermission(ctx context.Context, permission model.Permission, creatorID string) (*model.Permission, error)
	UpdatePermission(ctx context.Context, permission model.Permission, updaterID string) (*model.Permission, error)
	DeactivatePermission(ctx context.Context, permissionID string, deactivatorID string) error
	GetPermission(ctx context.Context, permissionID string) (*model.Permission, error)
	GetPermissionByCodename(ctx context.Context, codename string) (*model.Permission, error)
	ListPermissions(ctx context.Context, modelName string, limit, offset int) ([]*model.Permission, error)
}

// PermissionService handles business logic for the permission catalog
type PermissionService struct {
	permissions     dao.PermissionStore
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IPermissionService = &PermissionService{}

// NewPermissionService creates a new instance of PermissionService
func NewPermissionService(permissions dao.PermissionStore, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *PermissionService {
	service := &PermissionService{
		permissions:     permissions,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventPermissionCreated, service.handlePermissionCreated)
	eventBus.Subscribe(util.EventPermissionUpdated, service.handlePermissionUpdated)
	eventBus.Subscribe(util.EventPermissionDeactivated, service.handlePermissionDeactivated)

	return service
}

func (s *PermissionService) handlePermissionCreated(ctx context.Context, event util.Event) error {
	permission := event.Payload.(model.Permission)
	logger.Info("Permission created event received", zap.String("permissionID", permission.ID))

	if err := s.notificationSvc.NotifyPermissionChange(ctx, "created", permission); err != nil {
		logger.Warn("Failed to send permission creation notification", zap.Error(err), zap.String("permissionID", permission.ID))
	}

	return nil
}

func (s *PermissionService) handlePermissionUpdated(ctx context.Context, event util.Event) error {
	permission := event.Payload.(model.Permission)
	logger.Info("Permission updated event received", zap.String("permissionID", permission.ID))

	if err := s.notificationSvc.NotifyPermissionChange(ctx, "updated", permission); err != nil {
		logger.Warn("Failed to send permission update notification", zap.Error(err), zap.String("permissionID", permission.ID))
	}

	return nil
}

func (s *PermissionService) handlePermissionDeactivated(ctx context.Context, event util.Event) error {
	permissionID := event.Payload.(string)
	logger.Info("Permission deactivated event received", zap.String("permissionID", permissionID))

	if err := s.notificationSvc.NotifyPermissionChange(ctx, "deactivated", model.Permission{ID: permissionID}); err != nil {
		logger.Warn("Failed to send permission deactivation notification", zap.Error(err), zap.String("permissionID", permissionID))
	}

	return nil
}

// CreatePermission registers a new permission in the catalog
func (s *PermissionService) CreatePermission(ctx context.Context, permission model.Permission, creatorID string) (*model.Permission, error) {
	if err := s.validationUtil.ValidatePermission(permission); err != nil {
		return nil, fmt.Errorf("%w: %v", warden_errors.ErrInvalidPermissionData, err)
	}

	permission.IsActive = true

	permissionID, err := s.permissions.CreatePermission(ctx, permission)
	if err != nil {
		logger.Error("Error creating permission", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}

	permission.ID = permissionID

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventPermissionCreated, permission)

	logger.Info("Permission created successfully",
		zap.String("permissionID", permissionID),
		zap.String("codename", permission.Codename),
		zap.String("creatorID", creatorID))
	return &permission, nil
}

// UpdatePermission handles updates to an existing permission
func (s *PermissionService) UpdatePermission(ctx context.Context, permission model.Permission, updaterID string) (*model.Permission, error) {
	if err := s.validationUtil.ValidatePermission(permission); err != nil {
		return nil, fmt.Errorf("%w: %v", warden_errors.ErrInvalidPermissionData, err)
	}

	updatedPermission, err := s.permissions.UpdatePermission(ctx, permission)
	if err != nil {
		logger.Error("Error updating permission", zap.Error(err), zap.String("permissionID", permission.ID), zap.String("updaterID", updaterID))
		return nil, err
	}

	// Permission definitions feed every cached decision, so a change
	// flushes everything.
	if err := s.cacheService.InvalidateAll(ctx); err != nil {
		logger.Warn("Failed to invalidate permission caches", zap.Error(err))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventPermissionUpdated, *updatedPermission)

	logger.Info("Permission updated successfully", zap.String("permissionID", permission.ID), zap.String("updaterID", updaterID))
	return updatedPermission, nil
}

// DeactivatePermission soft-deletes a permission from the catalog
func (s *PermissionService) DeactivatePermission(ctx context.Context, permissionID string, deactivatorID string) error {
	if err := s.permissions.DeactivatePermission(ctx, permissionID); err != nil {
		logger.Error("Error deactivating permission", zap.Error(err), zap.String("permissionID", permissionID), zap.String("deactivatorID", deactivatorID))
		return err
	}

	if err := s.cacheService.InvalidateAll(ctx); err != nil {
		logger.Warn("Failed to invalidate permission caches", zap.Error(err))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, util.EventPermissionDeactivated, permissionID)

	logger.Info("Permission deactivated successfully", zap.String("permissionID", permissionID), zap.String("deactivatorID", deactivatorID))
	return nil
}

// GetPermission retrieves a permission by its ID
func (s *PermissionService) GetPermission(ctx context.Context, permissionID string) (*model.Permission, error) {
	permission, err := s.permissions.GetPermission(ctx, permissionID)
	if err != nil {
		if errors.Is(err, warden_errors.ErrPermissionNotFound) {
			return nil, warden_errors.ErrPermissionNotFound
		}
		logger.Error("Error retrieving permission", zap.Error(err), zap.String("permissionID", permissionID))
		return nil, warden_errors.ErrInternalServer
	}

	return permission, nil
}

// GetPermissionByCodename retrieves a permission by its codename
func (s *PermissionService) GetPermissionByCodename(ctx context.Context, codename string) (*model.Permission, error) {
	permission, err := s.permissions.PermissionByCodename(ctx, codename)
	if err != nil {
		if errors.Is(err, warden_errors.ErrPermissionNotFound) {
			return nil, warden_errors.ErrPermissionNotFound
		}
		logger.Error("Error retrieving permission by codename", zap.Error(err), zap.String("codename", codename))
		return nil, warden_errors.ErrInternalServer
	}

	return permission, nil
}

// ListPermissions retrieves permissions, optionally filtered by model name
func (s *PermissionService) ListPermissions(ctx context.Context, modelName string, limit, offset int) ([]*model.Permission, error) {
	permissions, err := s.permissions.ListPermissions(ctx, modelName, limit, offset)
	if err != nil {
		logger.Error("Error listing permissions", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return permissions, nil
}
