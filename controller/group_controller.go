// controller/group_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/rbac"
	"github.com/dev-mohitbeniwal/warden/service"
	"github.com/dev-mohitbeniwal/warden/util"
	helper_util "github.com/dev-mohitbeniwal/warden/util/helper"
)

type GroupController struct {
	groupService service.IGroupService
	enforcer     *rbac.Enforcer
}

func NewGroupController(groupService service.IGroupService, enforcer *rbac.Enforcer) *GroupController {
	return &GroupController{
		groupService: groupService,
		enforcer:     enforcer,
	}
}

type memberChangeRequest struct {
	UserIDs   []string   `json:"userIds" binding:"required"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type assignRolesRequest struct {
	RoleIDs   []string   `json:"roleIds" binding:"required"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type assignGroupPermissionsRequest struct {
	PermissionIDs []string   `json:"permissionIds" binding:"required"`
	ExpiresAt     *time.Time `json:"expiresAt"`
}

// RegisterRoutes registers the organization-scoped group routes
func (gc *GroupController) RegisterRoutes(r *gin.RouterGroup) {
	groups := r.Group("/organizations/:orgId/rbac/groups")
	{
		groups.GET("", gc.enforcer.Require("groups", rbac.ActionList), gc.ListGroups)
		groups.POST("", gc.enforcer.Require("groups", rbac.ActionCreate), gc.CreateGroup)
		groups.GET("/:id", gc.enforcer.Require("groups", rbac.ActionRead), gc.GetGroup)
		groups.PUT("/:id", gc.enforcer.Require("groups", rbac.ActionUpdate), gc.UpdateGroup)
		groups.DELETE("/:id", gc.enforcer.Require("groups", rbac.ActionDelete), gc.DeactivateGroup)
		groups.GET("/:id/members", gc.enforcer.Require("groups", rbac.ActionRead), gc.GroupMembers)
		groups.POST("/:id/add-members",
			gc.enforcer.RequireAll(rbac.Codename("groups", rbac.ActionUpdate), rbac.Codename("users", rbac.ActionUpdate)),
			gc.AddMembers)
		groups.POST("/:id/remove-members",
			gc.enforcer.RequireAll(rbac.Codename("groups", rbac.ActionUpdate), rbac.Codename("users", rbac.ActionUpdate)),
			gc.RemoveMembers)
		groups.GET("/:id/roles", gc.enforcer.Require("groups", rbac.ActionRead), gc.GroupRoles)
		groups.POST("/:id/assign-roles",
			gc.enforcer.RequireAll(rbac.Codename("groups", rbac.ActionUpdate), rbac.Codename("roles", rbac.ActionUpdate)),
			gc.AssignRoles)
		groups.GET("/:id/permissions", gc.enforcer.Require("groups", rbac.ActionRead), gc.GroupPermissions)
		groups.POST("/:id/assign-permissions",
			gc.enforcer.RequireAll(rbac.Codename("groups", rbac.ActionUpdate), rbac.Codename("permissions", rbac.ActionUpdate)),
			gc.AssignPermissions)
	}
}

// CreateGroup endpoint
func (gc *GroupController) CreateGroup(c *gin.Context) {
	var group model.UserGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid group data", warden_errors.ErrInvalidGroupData)
		return
	}
	group.OrganizationID = c.Param("orgId")
	creatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", warden_errors.ErrUnauthorized)
		return
	}

	createdGroup, err := gc.groupService.CreateGroup(c, group, creatorID)
	if err != nil {
		switch {
		case errors.Is(err, warden_errors.ErrGroupConflict):
			util.RespondWithError(c, http.StatusConflict, "Group already exists", err)
		case errors.Is(err, warden_errors.ErrInvalidGroupData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid group data", err)
		case errors.Is(err, warden_errors.ErrInvalidAssignment):
			util.RespondWithError(c, http.StatusBadRequest, "Organization not found", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create group", warden_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdGroup)
}

// UpdateGroup endpoint
func (gc *GroupController) UpdateGroup(c *gin.Context) {
	groupID := c.Param("id")
	var group model.UserGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid group data", err)
		return
	}
	group.ID = groupID
	updaterID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedGroup, err := gc.groupService.UpdateGroup(c, group, updaterID)
	if err != nil {
		switch {
		case errors.Is(err, warden_errors.ErrGroupNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Group not found", err)
		case errors.Is(err, warden_errors.ErrInvalidGroupData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid group data", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update group", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedGroup)
}

// DeactivateGroup endpoint
func (gc *GroupController) DeactivateGroup(c *gin.Context) {
	groupID := c.Param("id")
	deactivatorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := gc.groupService.DeactivateGroup(c, groupID, c.Param("orgId"), deactivatorID); err != nil {
		if errors.Is(err, warden_errors.ErrGroupNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Group not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate group", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetGroup endpoint
func (gc *GroupController) GetGroup(c *gin.Context) {
	groupID := c.Param("id")

	group, err := gc.groupService.GetGroup(c, groupID)
	if err != nil {
		if errors.Is(err, warden_errors.ErrGroupNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Group not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve group", err)
		}
		return
	}

	// Another tenant's group is indistinguishable from a missing one.
	if group.OrganizationID != c.Param("orgId") {
		util.RespondWithError(c, http.StatusNotFound, "Group not found", warden_errors.ErrGroupNotFound)
		return
	}

	c.JSON(http.StatusOK, group)
}

// ListGroups endpoint
func (gc *GroupController) ListGroups(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	groups, err := gc.groupService.ListGroups(c, c.Param("orgId"), limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list groups", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups, "limit": limit, "offset": offset})
}

// AddMembers endpoint
func (gc *GroupController) AddMembers(c *gin.Context) {
	groupID := c.Param("id")
	var req memberChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid member data", err)
		return
	}
	addedBy, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := gc.groupService.AddMembers(c, groupID, c.Param("orgId"), req.UserIDs, addedBy, req.ExpiresAt); err != nil {
		gc.respondGrantError(c, err, "Failed to add members")
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveMembers endpoint. Membership edges are deactivated, not deleted.
func (gc *GroupController) RemoveMembers(c *gin.Context) {
	groupID := c.Param("id")
	var req memberChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid member data", err)
		return
	}

	if err := gc.groupService.RemoveMembers(c, groupID, c.Param("orgId"), req.UserIDs); err != nil {
		gc.respondGrantError(c, err, "Failed to remove members")
		return
	}

	c.Status(http.StatusNoContent)
}

// GroupMembers endpoint
func (gc *GroupController) GroupMembers(c *gin.Context) {
	groupID := c.Param("id")

	members, err := gc.groupService.GroupMembers(c, groupID)
	if err != nil {
		gc.respondGrantError(c, err, "Failed to list members")
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// AssignRoles endpoint. Atomically replaces the group's role set.
func (gc *GroupController) AssignRoles(c *gin.Context) {
	groupID := c.Param("id")
	var req assignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", err)
		return
	}
	grantedBy, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := gc.groupService.AssignRoles(c, groupID, c.Param("orgId"), req.RoleIDs, grantedBy, req.ExpiresAt); err != nil {
		gc.respondGrantError(c, err, "Failed to assign roles")
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignPermissions endpoint. Atomically replaces the group's direct
// permission set.
func (gc *GroupController) AssignPermissions(c *gin.Context) {
	groupID := c.Param("id")
	var req assignGroupPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", err)
		return
	}
	grantedBy, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := gc.groupService.AssignPermissions(c, groupID, c.Param("orgId"), req.PermissionIDs, grantedBy, req.ExpiresAt); err != nil {
		gc.respondGrantError(c, err, "Failed to assign permissions")
		return
	}

	c.Status(http.StatusNoContent)
}

// GroupRoles endpoint
func (gc *GroupController) GroupRoles(c *gin.Context) {
	groupID := c.Param("id")

	grants, err := gc.groupService.GroupRoles(c, groupID)
	if err != nil {
		gc.respondGrantError(c, err, "Failed to list group roles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": grants})
}

// GroupPermissions endpoint
func (gc *GroupController) GroupPermissions(c *gin.Context) {
	groupID := c.Param("id")

	grants, err := gc.groupService.GroupPermissions(c, groupID)
	if err != nil {
		gc.respondGrantError(c, err, "Failed to list group permissions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"permissions": grants})
}

func (gc *GroupController) respondGrantError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, warden_errors.ErrGroupNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Group not found", err)
	case errors.Is(err, warden_errors.ErrCrossOrganization):
		util.RespondWithError(c, http.StatusBadRequest, "Cross-organization assignment rejected", err)
	case errors.Is(err, warden_errors.ErrInvalidAssignment):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, err)
	}
}
