// controller/controllers.go
package controller

import "github.com/dev-mohitbeniwal/warden/service"

type Controllers struct {
	Permission *PermissionController
	Role       *RoleController
	Group      *GroupController
	UserGrant  *UserGrantController
	Access     *AccessController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Permission: NewPermissionController(services.Permission, services.Enforcer),
		Role:       NewRoleController(services.Role, services.Enforcer),
		Group:      NewGroupController(services.Group, services.Enforcer),
		UserGrant:  NewUserGrantController(services.Grant, services.Enforcer),
		Access:     NewAccessController(services.Grant),
	}
}
