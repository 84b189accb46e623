// controller/user_grant_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/rbac"
	"github.com/dev-mohitbeniwal/warden/service"
	"github.com/dev-mohitbeniwal/warden/util"
)

// UserGrantController exposes the per-user grant surface: direct role and
// permission assignments plus the resolved effective-permission breakdown.
type UserGrantController struct {
	grantService service.IGrantService
	enforcer     *rbac.Enforcer
}

func NewUserGrantController(grantService service.IGrantService, enforcer *rbac.Enforcer) *UserGrantController {
	return &UserGrantController{
		grantService: grantService,
		enforcer:     enforcer,
	}
}

type assignUserRolesRequest struct {
	RoleIDs   []string   `json:"roleIds" binding:"required"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type assignUserPermissionsRequest struct {
	PermissionIDs []string   `json:"permissionIds" binding:"required"`
	ExpiresAt     *time.Time `json:"expiresAt"`
}

// RegisterRoutes registers the organization-scoped user grant routes
func (uc *UserGrantController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/organizations/:orgId/rbac/users")
	{
		users.GET("/:userId/permissions", uc.enforcer.Require("users", rbac.ActionRead), uc.EffectivePermissions)
		users.GET("/:userId/roles", uc.enforcer.Require("users", rbac.ActionRead), uc.UserRoles)
		users.GET("/:userId/groups", uc.enforcer.Require("users", rbac.ActionRead), uc.UserGroups)
		users.POST("/:userId/assign-roles",
			uc.enforcer.RequireAll(rbac.Codename("roles", rbac.ActionUpdate), rbac.Codename("users", rbac.ActionUpdate)),
			uc.AssignRoles)
		users.POST("/:userId/assign-permissions",
			uc.enforcer.RequireAll(rbac.Codename("permissions", rbac.ActionUpdate), rbac.Codename("users", rbac.ActionUpdate)),
			uc.AssignPermissions)
	}
}

// EffectivePermissions endpoint. Returns the resolved codename set plus the
// contributing roles and groups. Informational; access decisions go through
// the check endpoint.
func (uc *UserGrantController) EffectivePermissions(c *gin.Context) {
	breakdown, err := uc.grantService.EffectivePermissions(c, c.Param("userId"), c.Param("orgId"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve permissions", err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// UserRoles endpoint
func (uc *UserGrantController) UserRoles(c *gin.Context) {
	grants, err := uc.grantService.UserRoles(c, c.Param("userId"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list user roles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": grants})
}

// UserGroups endpoint
func (uc *UserGrantController) UserGroups(c *gin.Context) {
	memberships, err := uc.grantService.UserGroups(c, c.Param("userId"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list user groups", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": memberships})
}

// AssignRoles endpoint. Atomically replaces the user's direct role set.
func (uc *UserGrantController) AssignRoles(c *gin.Context) {
	var req assignUserRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", err)
		return
	}
	grantedBy, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := uc.grantService.AssignRolesToUser(c, c.Param("userId"), c.Param("orgId"), req.RoleIDs, grantedBy, req.ExpiresAt); err != nil {
		uc.respondGrantError(c, err, "Failed to assign roles")
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignPermissions endpoint. Atomically replaces the user's direct
// permission set.
func (uc *UserGrantController) AssignPermissions(c *gin.Context) {
	var req assignUserPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", err)
		return
	}
	grantedBy, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := uc.grantService.AssignPermissionsToUser(c, c.Param("userId"), c.Param("orgId"), req.PermissionIDs, grantedBy, req.ExpiresAt); err != nil {
		uc.respondGrantError(c, err, "Failed to assign permissions")
		return
	}

	c.Status(http.StatusNoContent)
}

func (uc *UserGrantController) respondGrantError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, warden_errors.ErrCrossOrganization):
		util.RespondWithError(c, http.StatusBadRequest, "Cross-organization assignment rejected", err)
	case errors.Is(err, warden_errors.ErrInvalidAssignment):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, err)
	}
}
