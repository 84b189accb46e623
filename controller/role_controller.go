// controller/role_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/rbac"
	"github.com/dev-mohitbeniwal/warden/service"
	"github.com/dev-mohitbeniwal/warden/util"
	helper_util "github.com/dev-mohitbeniwal/warden/util/helper"
)

type RoleController struct {
	roleService service.IRoleService
	enforcer    *rbac.Enforcer
}

func NewRoleController(roleService service.IRoleService, enforcer *rbac.Enforcer) *RoleController {
	return &RoleController{
		roleService: roleService,
		enforcer:    enforcer,
	}
}

type assignPermissionsRequest struct {
	PermissionIDs []string `json:"permissionIds" binding:"required"`
}

// RegisterRoutes registers the organization-scoped role routes
func (rc *RoleController) RegisterRoutes(r *gin.RouterGroup) {
	roles := r.Group("/organizations/:orgId/rbac/roles")
	{
		roles.GET("", rc.enforcer.Require("roles", rbac.ActionList), rc.ListRoles)
		roles.POST("", rc.enforcer.Require("roles", rbac.ActionCreate), rc.CreateRole)
		roles.GET("/:id", rc.enforcer.Require("roles", rbac.ActionRead), rc.GetRole)
		roles.PUT("/:id", rc.enforcer.Require("roles", rbac.ActionUpdate), rc.UpdateRole)
		roles.DELETE("/:id", rc.enforcer.Require("roles", rbac.ActionDelete), rc.DeactivateRole)
		roles.GET("/:id/permissions", rc.enforcer.Require("roles", rbac.ActionRead), rc.RolePermissions)
		roles.POST("/:id/assign-permissions",
			rc.enforcer.RequireAll(rbac.Codename("roles", rbac.ActionUpdate), rbac.Codename("permissions", rbac.ActionUpdate)),
			rc.AssignPermissions)
	}
}

// RegisterSystemRoutes registers the global system-role routes
func (rc *RoleController) RegisterSystemRoutes(r *gin.RouterGroup) {
	systemRoles := r.Group("/rbac/system-roles")
	{
		systemRoles.GET("", rc.enforcer.Require("roles", rbac.ActionList), rc.ListSystemRoles)
		systemRoles.GET("/:id/permissions", rc.enforcer.Require("roles", rbac.ActionRead), rc.RolePermissions)
	}
}

// CreateRole endpoint
func (rc *RoleController) CreateRole(c *gin.Context) {
	var role model.Role
	if err := c.ShouldBindJSON(&role); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid role data", warden_errors.ErrInvalidRoleData)
		return
	}
	role.OrganizationID = c.Param("orgId")
	creatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", warden_errors.ErrUnauthorized)
		return
	}

	createdRole, err := rc.roleService.CreateRole(c, role, creatorID)
	if err != nil {
		switch {
		case errors.Is(err, warden_errors.ErrRoleConflict):
			util.RespondWithError(c, http.StatusConflict, "Role already exists", err)
		case errors.Is(err, warden_errors.ErrInvalidRoleData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid role data", err)
		case errors.Is(err, warden_errors.ErrInvalidAssignment):
			util.RespondWithError(c, http.StatusBadRequest, "Organization not found", err)
		case errors.Is(err, warden_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create role", warden_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdRole)
}

// UpdateRole endpoint
func (rc *RoleController) UpdateRole(c *gin.Context) {
	roleID := c.Param("id")
	var role model.Role
	if err := c.ShouldBindJSON(&role); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid role data", err)
		return
	}
	role.ID = roleID
	updaterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedRole, err := rc.roleService.UpdateRole(c, role, updaterID)
	if err != nil {
		switch {
		case errors.Is(err, warden_errors.ErrRoleNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		case errors.Is(err, warden_errors.ErrInvalidRoleData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid role data", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update role", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedRole)
}

// DeactivateRole endpoint
func (rc *RoleController) DeactivateRole(c *gin.Context) {
	roleID := c.Param("id")
	deactivatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := rc.roleService.DeactivateRole(c, roleID, c.Param("orgId"), deactivatorID); err != nil {
		if errors.Is(err, warden_errors.ErrRoleNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate role", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetRole endpoint
func (rc *RoleController) GetRole(c *gin.Context) {
	roleID := c.Param("id")

	role, err := rc.roleService.GetRole(c, roleID)
	if err != nil {
		if errors.Is(err, warden_errors.ErrRoleNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve role", err)
		}
		return
	}

	// Another tenant's role is indistinguishable from a missing one.
	if !role.VisibleIn(c.Param("orgId")) {
		util.RespondWithError(c, http.StatusNotFound, "Role not found", warden_errors.ErrRoleNotFound)
		return
	}

	c.JSON(http.StatusOK, role)
}

// ListRoles endpoint
func (rc *RoleController) ListRoles(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	roles, err := rc.roleService.ListRoles(c, c.Param("orgId"), limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list roles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles, "limit": limit, "offset": offset})
}

// ListSystemRoles endpoint
func (rc *RoleController) ListSystemRoles(c *gin.Context) {
	roles, err := rc.roleService.ListSystemRoles(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list system roles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

// RolePermissions endpoint
func (rc *RoleController) RolePermissions(c *gin.Context) {
	roleID := c.Param("id")

	grants, err := rc.roleService.RolePermissions(c, roleID)
	if err != nil {
		if errors.Is(err, warden_errors.ErrRoleNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to list role permissions", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"permissions": grants})
}

// AssignPermissions endpoint. Atomically replaces the role's permission set.
func (rc *RoleController) AssignPermissions(c *gin.Context) {
	roleID := c.Param("id")
	var req assignPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", err)
		return
	}
	grantedBy, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := rc.roleService.AssignPermissions(c, roleID, c.Param("orgId"), req.PermissionIDs, grantedBy); err != nil {
		switch {
		case errors.Is(err, warden_errors.ErrRoleNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		case errors.Is(err, warden_errors.ErrCrossOrganization):
			util.RespondWithError(c, http.StatusBadRequest, "Role belongs to another organization", err)
		case errors.Is(err, warden_errors.ErrInvalidAssignment):
			util.RespondWithError(c, http.StatusBadRequest, "Unknown permission in assignment", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to assign permissions", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
