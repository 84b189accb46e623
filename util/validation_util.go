// util/validation_util.go

package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/dev-mohitbeniwal/warden/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidatePermission(permission model.Permission) error {
	if permission.Name == "" {
		return fmt.Errorf("permission name cannot be empty")
	}
	if permission.Codename == "" {
		return fmt.Errorf("permission codename cannot be empty")
	}
	if !strings.Contains(permission.Codename, ":") {
		return fmt.Errorf("permission codename must be of the form model:action")
	}
	if permission.ModelName == "" {
		return fmt.Errorf("permission model name cannot be empty")
	}
	switch permission.PermissionType {
	case model.PermissionTypeCreate, model.PermissionTypeRead, model.PermissionTypeUpdate,
		model.PermissionTypeDelete, model.PermissionTypeList, model.PermissionTypeCustom:
	default:
		return fmt.Errorf("unknown permission type: %s", permission.PermissionType)
	}
	return nil
}

func (v *ValidationUtil) ValidateRole(role model.Role) error {
	if role.Name == "" {
		return fmt.Errorf("role name cannot be empty")
	}
	if role.Codename == "" {
		return fmt.Errorf("role codename cannot be empty")
	}
	switch role.RoleType {
	case model.RoleTypeSystem:
		// System roles belong to no organization.
		if role.OrganizationID != "" {
			return fmt.Errorf("system role cannot have an organization ID")
		}
	case model.RoleTypeOrganization, model.RoleTypeCustom:
		if role.OrganizationID == "" {
			return fmt.Errorf("role organization ID cannot be empty")
		}
	default:
		return fmt.Errorf("unknown role type: %s", role.RoleType)
	}
	return nil
}

func (v *ValidationUtil) ValidateGroup(group model.UserGroup) error {
	if group.Name == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	if group.OrganizationID == "" {
		return fmt.Errorf("group organization ID cannot be empty")
	}
	return nil
}

// ValidateExpiry rejects expiry timestamps already in the past. A nil
// expiry is a permanent grant.
func (v *ValidationUtil) ValidateExpiry(expiresAt *time.Time) error {
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return fmt.Errorf("expiry must be in the future")
	}
	return nil
}
