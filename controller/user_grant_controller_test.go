// controller/user_grant_controller_test.go
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/warden/dao"
	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/model"
	"github.com/dev-mohitbeniwal/warden/rbac"
	"github.com/dev-mohitbeniwal/warden/test/mock"
)

// newAssignmentEnforcer builds an enforcer whose store grants "admin" the
// given codenames through a system role, so the grant maintenance guards
// pass in every organization.
func newAssignmentEnforcer(t *testing.T, codenames ...string) *rbac.Enforcer {
	t.Helper()
	ctx := context.Background()
	store := dao.NewMemoryStore()

	var permissionIDs []string
	for _, codename := range codenames {
		modelName, action, _ := strings.Cut(codename, ":")
		id, err := store.CreatePermission(ctx, model.Permission{
			Name:           "Can " + action + " " + modelName,
			Codename:       codename,
			PermissionType: action,
			ModelName:      modelName,
			IsActive:       true,
		})
		require.NoError(t, err)
		permissionIDs = append(permissionIDs, id)
	}

	roleID, err := store.CreateRole(ctx, model.Role{
		Name:         "grant admin",
		Codename:     "grant-admin",
		RoleType:     model.RoleTypeSystem,
		IsActive:     true,
		IsSystemRole: true,
	})
	require.NoError(t, err)
	require.NoError(t, store.AssignPermissionsToRole(ctx, roleID, permissionIDs, "test"))
	require.NoError(t, store.AssignRolesToUser(ctx, "admin", []string{roleID}, "test", nil))

	return rbac.NewEnforcer(rbac.NewChecker(store))
}

func newUserGrantRouter(svc *mock.GrantService, enforcer *rbac.Enforcer, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	api := router.Group("/api/v1")
	NewUserGrantController(svc, enforcer).RegisterRoutes(api)
	return router
}

func postJSON(router *gin.Engine, path string, payload gin.H) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	router.ServeHTTP(w, req)
	return w
}

func TestAssignUserRolesEndpoint(t *testing.T) {
	svc := new(mock.GrantService)
	enforcer := newAssignmentEnforcer(t, "roles:update", "users:update")
	router := newUserGrantRouter(svc, enforcer, "admin")

	svc.On("AssignRolesToUser", testify_mock.Anything, "u1", "org-a", []string{"r1"}, "admin", (*time.Time)(nil)).
		Return(nil)

	w := postJSON(router, "/api/v1/organizations/org-a/rbac/users/u1/assign-roles", gin.H{"roleIds": []string{"r1"}})

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

// Assigning a role owned by another organization is invalid input, not a
// caller-privilege failure. The endpoint answers 400, never 403.
func TestAssignUserRolesCrossOrganization(t *testing.T) {
	svc := new(mock.GrantService)
	enforcer := newAssignmentEnforcer(t, "roles:update", "users:update")
	router := newUserGrantRouter(svc, enforcer, "admin")

	svc.On("AssignRolesToUser", testify_mock.Anything, "u1", "org-b", []string{"r1"}, "admin", (*time.Time)(nil)).
		Return(warden_errors.ErrCrossOrganization)

	w := postJSON(router, "/api/v1/organizations/org-b/rbac/users/u1/assign-roles", gin.H{"roleIds": []string{"r1"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestAssignUserPermissionsCrossOrganization(t *testing.T) {
	svc := new(mock.GrantService)
	enforcer := newAssignmentEnforcer(t, "permissions:update", "users:update")
	router := newUserGrantRouter(svc, enforcer, "admin")

	svc.On("AssignPermissionsToUser", testify_mock.Anything, "u1", "org-b", []string{"p1"}, "admin", (*time.Time)(nil)).
		Return(warden_errors.ErrCrossOrganization)

	w := postJSON(router, "/api/v1/organizations/org-b/rbac/users/u1/assign-permissions", gin.H{"permissionIds": []string{"p1"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestAssignUserRolesInvalidAssignment(t *testing.T) {
	svc := new(mock.GrantService)
	enforcer := newAssignmentEnforcer(t, "roles:update", "users:update")
	router := newUserGrantRouter(svc, enforcer, "admin")

	svc.On("AssignRolesToUser", testify_mock.Anything, "u1", "org-a", []string{"missing"}, "admin", (*time.Time)(nil)).
		Return(warden_errors.ErrInvalidAssignment)

	w := postJSON(router, "/api/v1/organizations/org-a/rbac/users/u1/assign-roles", gin.H{"roleIds": []string{"missing"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignUserRolesRequiresBothGuards(t *testing.T) {
	svc := new(mock.GrantService)
	// Only one of the two guarded codenames is held.
	enforcer := newAssignmentEnforcer(t, "roles:update")
	router := newUserGrantRouter(svc, enforcer, "admin")

	w := postJSON(router, "/api/v1/organizations/org-a/rbac/users/u1/assign-roles", gin.H{"roleIds": []string{"r1"}})

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "AssignRolesToUser", testify_mock.Anything, testify_mock.Anything, testify_mock.Anything, testify_mock.Anything, testify_mock.Anything, testify_mock.Anything)
}
