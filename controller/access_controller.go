// controller/access_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/service"
	"github.com/dev-mohitbeniwal/warden/util"
)

// AccessController exposes the decision endpoint. Callers ask yes/no
// questions; they never receive the permission set to decide locally.
type AccessController struct {
	grantService service.IGrantService
}

func NewAccessController(grantService service.IGrantService) *AccessController {
	return &AccessController{grantService: grantService}
}

type checkRequest struct {
	UserID         string   `json:"userId"`
	OrganizationID string   `json:"organizationId"`
	Codenames      []string `json:"codenames" binding:"required,min=1"`
	RequireAll     bool     `json:"requireAll"`
}

type checkResponse struct {
	Allowed bool `json:"allowed"`
}

// RegisterRoutes registers the decision routes
func (ac *AccessController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/rbac/check", ac.Check)
}

// Check endpoint. Defaults to the caller's own identity and organization;
// checking another user requires the users:read permission.
func (ac *AccessController) Check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid check request", err)
		return
	}

	callerID, err := util.GetUserIDFromContext(c)
	if err != nil || callerID == "" {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", warden_errors.ErrUnauthorized)
		return
	}

	targetID := req.UserID
	if targetID == "" {
		targetID = callerID
	}
	organizationID := req.OrganizationID
	if organizationID == "" {
		organizationID = c.GetString("organizationID")
	}

	if targetID != callerID {
		canInspect, err := ac.grantService.Check(c, callerID, organizationID, "users:read")
		if err != nil {
			util.RespondWithError(c, http.StatusInternalServerError, "Permission check failed", err)
			return
		}
		if !canInspect {
			util.RespondWithError(c, http.StatusForbidden, "Access denied", warden_errors.ErrAccessDenied)
			return
		}
	}

	var allowed bool
	if req.RequireAll {
		allowed, err = ac.grantService.CheckAll(c, targetID, organizationID, req.Codenames)
	} else {
		allowed, err = ac.grantService.CheckAny(c, targetID, organizationID, req.Codenames)
	}
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Permission check failed", err)
		return
	}

	c.JSON(http.StatusOK, checkResponse{Allowed: allowed})
}
