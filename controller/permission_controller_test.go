// controller/permission_controller_test.go
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

// newCatalogEnforcer builds an enforcer whose store grants "admin" the full
// permissions:{action} set in org-a and grants "viewer" nothing.
func newCatalogEnforcer(t *testing.T) *rbac.Enforcer {
	t.Helper()
	ctx := context.Background()
	store := dao.NewMemoryStore()

	var permissionIDs []string
	for _, action := range []string{
		rbac.ActionCreate, rbac.ActionRead, rbac.ActionUpdate, rbac.ActionDelete, rbac.ActionList,
	} {
		id, err := store.CreatePermission(ctx, model.Permission{
			Name:           "Can " + action + " permissions",
			Codename:       rbac.Codename("permissions", action),
			PermissionType: action,
			ModelName:      "permissions",
			IsActive:       true,
		})
		require.NoError(t, err)
		permissionIDs = append(permissionIDs, id)
	}

	roleID, err := store.CreateRole(ctx, model.Role{
		Name:         "catalog admin",
		Codename:     "catalog-admin",
		RoleType:     model.RoleTypeSystem,
		IsActive:     true,
		IsSystemRole: true,
	})
	require.NoError(t, err)
	require.NoError(t, store.AssignPermissionsToRole(ctx, roleID, permissionIDs, "test"))
	require.NoError(t, store.AssignRolesToUser(ctx, "admin", []string{roleID}, "test", nil))

	return rbac.NewEnforcer(rbac.NewChecker(store))
}

func newPermissionRouter(svc *mock.PermissionService, enforcer *rbac.Enforcer, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("organizationID", "org-a")
		c.Next()
	})
	api := router.Group("/api/v1")
	NewPermissionController(svc, enforcer).RegisterRoutes(api)
	return router
}

func TestCreatePermissionEndpoint(t *testing.T) {
	svc := new(mock.PermissionService)
	router := newPermissionRouter(svc, newCatalogEnforcer(t), "admin")

	created := &model.Permission{
		ID:             "p1",
		Name:           "Can read teams",
		Codename:       "teams:read",
		PermissionType: model.PermissionTypeRead,
		ModelName:      "teams",
		IsActive:       true,
	}
	svc.On("CreatePermission", testify_mock.Anything, testify_mock.AnythingOfType("model.Permission"), "admin").
		Return(created, nil)

	body, _ := json.Marshal(gin.H{
		"name":            "Can read teams",
		"codename":        "teams:read",
		"permission_type": "read",
		"model_name":      "teams",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rbac/permissions", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var got model.Permission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "p1", got.ID)
	svc.AssertExpectations(t)
}

func TestCreatePermissionConflict(t *testing.T) {
	svc := new(mock.PermissionService)
	router := newPermissionRouter(svc, newCatalogEnforcer(t), "admin")

	svc.On("CreatePermission", testify_mock.Anything, testify_mock.AnythingOfType("model.Permission"), "admin").
		Return(nil, warden_errors.ErrPermissionConflict)

	body, _ := json.Marshal(gin.H{"name": "dup", "codename": "teams:read"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rbac/permissions", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPermissionRoutesEnforceCatalogPermissions(t *testing.T) {
	svc := new(mock.PermissionService)
	router := newPermissionRouter(svc, newCatalogEnforcer(t), "viewer")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rbac/permissions", nil)
	router.ServeHTTP(w, req)

	// The service is never consulted for a denied request.
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "ListPermissions")
}

func TestGetPermissionNotFound(t *testing.T) {
	svc := new(mock.PermissionService)
	router := newPermissionRouter(svc, newCatalogEnforcer(t), "admin")

	svc.On("GetPermission", testify_mock.Anything, "missing").
		Return(nil, warden_errors.ErrPermissionNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rbac/permissions/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPermissionsPassesFilter(t *testing.T) {
	svc := new(mock.PermissionService)
	router := newPermissionRouter(svc, newCatalogEnforcer(t), "admin")

	svc.On("ListPermissions", testify_mock.Anything, "teams", 10, 0).
		Return([]*model.Permission{{ID: "p1", Codename: "teams:read"}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rbac/permissions?model_name=teams&limit=10", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Permissions []model.Permission `json:"permissions"`
		Limit       int                `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Permissions, 1)
	assert.Equal(t, 10, payload.Limit)
	svc.AssertExpectations(t)
}
