// controller/role_controller_test.go
package controller

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/warden/dao"
	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/service"
	"github.com/dev-mohitbeniwal/warden/util"
)

// A role owned by org-a cannot be managed through org-b's routes. The
// mismatch is a data error, answered 400 before anything mutates.
func TestAssignRolePermissionsCrossOrganization(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()

	roleID, err := store.CreateRole(ctx, model.Role{
		Name:           "Editor",
		Codename:       "editor",
		RoleType:       model.RoleTypeOrganization,
		OrganizationID: "org-a",
		IsActive:       true,
	})
	require.NoError(t, err)
	permissionID, err := store.CreatePermission(ctx, model.Permission{
		Name:           "Can read teams",
		Codename:       "teams:read",
		PermissionType: model.PermissionTypeRead,
		ModelName:      "teams",
		IsActive:       true,
	})
	require.NoError(t, err)

	svc := service.NewRoleService(
		store,
		util.NewValidationUtil(),
		util.NewCacheService(),
		util.NewNotificationService(),
		util.NewEventBus(),
	)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", "admin")
		c.Next()
	})
	api := router.Group("/api/v1")
	NewRoleController(svc, newAssignmentEnforcer(t, "roles:update", "permissions:update")).RegisterRoutes(api)

	w := postJSON(router, "/api/v1/organizations/org-b/rbac/roles/"+roleID+"/assign-permissions",
		gin.H{"permissionIds": []string{permissionID}})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was bound to the role.
	grants, err := store.RolePermissions(ctx, roleID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}
