// controller/permission_controller.go
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

type PermissionController struct {
	permissionService service.IPermissionService
	enforcer          *rbac.Enforcer
}

func NewPermissionController(permissionService service.IPermissionService, enforcer *rbac.Enforcer) *PermissionController {
	return &PermissionController{
		permissionService: permissionService,
		enforcer:          enforcer,
	}
}

// RegisterRoutes registers the API routes for the global permission catalog
func (pc *PermissionController) RegisterRoutes(r *gin.RouterGroup) {
	permissions := r.Group("/rbac/permissions")
	{
		permissions.GET("", pc.enforcer.Require("permissions", rbac.ActionList), pc.ListPermissions)
		permissions.POST("", pc.enforcer.Require("permissions", rbac.ActionCreate), pc.CreatePermission)
		permissions.GET("/:id", pc.enforcer.Require("permissions", rbac.ActionRead), pc.GetPermission)
		permissions.PUT("/:id", pc.enforcer.Require("permissions", rbac.ActionUpdate), pc.UpdatePermission)
		permissions.DELETE("/:id", pc.enforcer.Require("permissions", rbac.ActionDelete), pc.DeactivatePermission)
	}
}

// CreatePermission endpoint
func (pc *PermissionController) CreatePermission(c *gin.Context) {
	var permission model.Permission
	if err := c.ShouldBindJSON(&permission); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid permission data", warden_errors.ErrInvalidPermissionData)
		return
	}
	creatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", warden_errors.ErrUnauthorized)
		return
	}

	createdPermission, err := pc.permissionService.CreatePermission(c, permission, creatorID)
	if err != nil {
		switch {
		case errors.Is(err, warden_errors.ErrPermissionConflict):
			util.RespondWithError(c, http.StatusConflict, "Permission already exists", err)
		case errors.Is(err, warden_errors.ErrInvalidPermissionData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid permission data", err)
		case errors.Is(err, warden_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create permission", warden_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdPermission)
}

// UpdatePermission endpoint
func (pc *PermissionController) UpdatePermission(c *gin.Context) {
	permissionID := c.Param("id")
	var permission model.Permission
	if err := c.ShouldBindJSON(&permission); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid permission data", err)
		return
	}
	permission.ID = permissionID
	updaterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedPermission, err := pc.permissionService.UpdatePermission(c, permission, updaterID)
	if err != nil {
		switch {
		case errors.Is(err, warden_errors.ErrPermissionNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		case errors.Is(err, warden_errors.ErrInvalidPermissionData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid permission data", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update permission", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedPermission)
}

// DeactivatePermission endpoint
func (pc *PermissionController) DeactivatePermission(c *gin.Context) {
	permissionID := c.Param("id")
	deactivatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := pc.permissionService.DeactivatePermission(c, permissionID, deactivatorID); err != nil {
		if errors.Is(err, warden_errors.ErrPermissionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate permission", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPermission endpoint
func (pc *PermissionController) GetPermission(c *gin.Context) {
	permissionID := c.Param("id")

	permission, err := pc.permissionService.GetPermission(c, permissionID)
	if err != nil {
		if errors.Is(err, warden_errors.ErrPermissionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve permission", err)
		}
		return
	}

	c.JSON(http.StatusOK, permission)
}

// ListPermissions endpoint
func (pc *PermissionController) ListPermissions(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}
	modelName := c.Query("model_name")

	permissions, err := pc.permissionService.ListPermissions(c, modelName, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list permissions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"permissions": permissions, "limit": limit, "offset": offset})
}
