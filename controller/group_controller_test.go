// controller/group_controller_test.go
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

func newGroupRouter(store *dao.MemoryStore, userID string, t *testing.T) *gin.Engine {
	svc := service.NewGroupService(
		store,
		store,
		util.NewValidationUtil(),
		util.NewCacheService(),
		util.NewNotificationService(),
		util.NewEventBus(),
	)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	api := router.Group("/api/v1")
	NewGroupController(svc, newAssignmentEnforcer(t, "groups:update", "roles:update")).RegisterRoutes(api)
	return router
}

// A group in org-b cannot receive a role owned by org-a. Answered 400, and
// the group's role set stays untouched.
func TestAssignGroupRolesCrossOrganization(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()

	groupID, err := store.CreateGroup(ctx, model.UserGroup{
		Name:           "Support",
		OrganizationID: "org-b",
		IsActive:       true,
	})
	require.NoError(t, err)
	roleID, err := store.CreateRole(ctx, model.Role{
		Name:           "Editor",
		Codename:       "editor",
		RoleType:       model.RoleTypeOrganization,
		OrganizationID: "org-a",
		IsActive:       true,
	})
	require.NoError(t, err)

	router := newGroupRouter(store, "admin", t)

	w := postJSON(router, "/api/v1/organizations/org-b/rbac/groups/"+groupID+"/assign-roles",
		gin.H{"roleIds": []string{roleID}})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	grants, err := store.GroupRoles(ctx, groupID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

// An org-a group is invisible through org-b's routes entirely.
func TestAssignGroupRolesOtherTenantGroup(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()

	groupID, err := store.CreateGroup(ctx, model.UserGroup{
		Name:           "Support",
		OrganizationID: "org-a",
		IsActive:       true,
	})
	require.NoError(t, err)

	router := newGroupRouter(store, "admin", t)

	w := postJSON(router, "/api/v1/organizations/org-b/rbac/groups/"+groupID+"/assign-roles",
		gin.H{"roleIds": []string{"r1"}})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
