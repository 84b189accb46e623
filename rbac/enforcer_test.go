// rbac/enforcer_test.go
package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setIdentity(userID, organizationID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		if organizationID != "" {
			c.Set("organizationID", organizationID)
		}
		c.Next()
	}
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	f := newFixture(t)
	roleID := f.orgRole("editor", "org-a", f.permission("teams:read"))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "u1", []string{roleID}, "test", nil))
	enforcer := NewEnforcer(NewChecker(f.store))

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	t.Run("no identity is 401", func(t *testing.T) {
		router := gin.New()
		router.GET("/teams", enforcer.Require("teams", ActionRead), ok)
		w := performRequest(router, http.MethodGet, "/teams")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing permission is 403", func(t *testing.T) {
		router := gin.New()
		router.Use(setIdentity("u1", "org-a"))
		router.DELETE("/teams", enforcer.Require("teams", ActionDelete), ok)
		w := performRequest(router, http.MethodDelete, "/teams")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("held permission passes", func(t *testing.T) {
		router := gin.New()
		router.Use(setIdentity("u1", "org-a"))
		router.GET("/teams", enforcer.Require("teams", ActionRead), ok)
		w := performRequest(router, http.MethodGet, "/teams")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("orgId parameter overrides token organization", func(t *testing.T) {
		router := gin.New()
		router.Use(setIdentity("u1", "org-a"))
		router.GET("/organizations/:orgId/teams", enforcer.Require("teams", ActionRead), ok)
		// The role only exists in org-a, so acting inside org-b denies.
		w := performRequest(router, http.MethodGet, "/organizations/org-b/teams")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = performRequest(router, http.MethodGet, "/organizations/org-a/teams")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAllIsConjunctive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	f := newFixture(t)
	roleID := f.orgRole("editor", "org-a",
		f.permission("groups:update"),
		f.permission("users:update"),
	)
	partialRoleID := f.orgRole("viewer", "org-a", f.permission("groups:read"))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "full", []string{roleID}, "test", nil))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "partial", []string{partialRoleID}, "test", nil))
	enforcer := NewEnforcer(NewChecker(f.store))

	newRouter := func(userID string) *gin.Engine {
		router := gin.New()
		router.Use(setIdentity(userID, "org-a"))
		router.POST("/members",
			enforcer.RequireAll("groups:update", "users:update"),
			func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	w := performRequest(newRouter("full"), http.MethodPost, "/members")
	assert.Equal(t, http.StatusOK, w.Code)

	// Holding only part of the composite set is still a deny.
	w = performRequest(newRouter("partial"), http.MethodPost, "/members")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEnforcementStrategies(t *testing.T) {
	f := newFixture(t)
	adminRole := f.systemRole("platform-admin", f.permission("admin:access"))
	editorRole := f.orgRole("editor", "org-a", f.permission("documents:update"))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "admin", []string{adminRole}, "test", nil))
	require.NoError(t, f.store.AssignRolesToUser(f.ctx, "editor", []string{editorRole}, "test", nil))
	checker := NewChecker(f.store)

	doc := ResourceRef{ModelName: "documents", ID: "d1", OwnerID: "owner", OrganizationID: "org-a"}

	t.Run("model strategy", func(t *testing.T) {
		s := ModelStrategy{Checker: checker}
		allowed, err := s.Check(f.ctx, Subject{UserID: "editor", OrganizationID: "org-a"}, ActionUpdate, doc)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = s.Check(f.ctx, Subject{UserID: "editor", OrganizationID: "org-a"}, ActionDelete, doc)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("owner strategy", func(t *testing.T) {
		s := OwnerStrategy{Checker: checker}
		allowed, err := s.Check(f.ctx, Subject{UserID: "owner", OrganizationID: "org-a"}, ActionUpdate, doc)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = s.Check(f.ctx, Subject{UserID: "admin", OrganizationID: "org-a"}, ActionUpdate, doc)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = s.Check(f.ctx, Subject{UserID: "editor", OrganizationID: "org-a"}, ActionUpdate, doc)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("organization strategy", func(t *testing.T) {
		s := OrganizationStrategy{Checker: checker}
		allowed, err := s.Check(f.ctx, Subject{UserID: "editor", OrganizationID: "org-a"}, ActionUpdate, doc)
		require.NoError(t, err)
		assert.True(t, allowed)

		// Acting from another organization fails before the permission is
		// even consulted.
		allowed, err = s.Check(f.ctx, Subject{UserID: "editor", OrganizationID: "org-b"}, ActionUpdate, doc)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
