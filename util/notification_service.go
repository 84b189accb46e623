// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a message queue client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyRoleChange(ctx context.Context, changeType string, role model.Role) error {
	// In a real implementation, you might send this to a message queue or external notification service
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: New role created",
			zap.String("roleID", role.ID),
			zap.String("roleName", role.Name))
	case "updated":
		logger.Info("NOTIFICATION: Role updated",
			zap.String("roleID", role.ID),
			zap.String("roleName", role.Name))
	case "deactivated":
		logger.Info("NOTIFICATION: Role deactivated",
			zap.String("roleID", role.ID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}

func (n *NotificationService) NotifyPermissionChange(ctx context.Context, changeType string, permission model.Permission) error {
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: New permission created",
			zap.String("permissionID", permission.ID),
			zap.String("codename", permission.Codename))
	case "updated":
		logger.Info("NOTIFICATION: Permission updated",
			zap.String("permissionID", permission.ID),
			zap.String("codename", permission.Codename))
	case "deactivated":
		logger.Info("NOTIFICATION: Permission deactivated",
			zap.String("permissionID", permission.ID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}

func (n *NotificationService) NotifyGroupChange(ctx context.Context, changeType string, group model.UserGroup) error {
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: New group created",
			zap.String("groupID", group.ID),
			zap.String("groupName", group.Name),
			zap.String("organizationID", group.OrganizationID))
	case "updated":
		logger.Info("NOTIFICATION: Group updated",
			zap.String("groupID", group.ID),
			zap.String("groupName", group.Name))
	case "deactivated":
		logger.Info("NOTIFICATION: Group deactivated",
			zap.String("groupID", group.ID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}

func (n *NotificationService) NotifyGrantsChanged(ctx context.Context, userID, organizationID string) error {
	logger.Info("NOTIFICATION: Grants changed",
		zap.String("userID", userID),
		zap.String("organizationID", organizationID))

	return nil
}
