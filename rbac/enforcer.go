// rbac/enforcer.go
package rbac

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/warden/logging"
)

// HTTP-style actions an enforcement check maps onto permissions. List is a
// distinct permission from read: a user may read one entity without being
// allowed to enumerate all of them.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionList   = "list"
)

// Codename maps a (resource model, action) pair to the permission codename
// that governs it.
func Codename(modelName, action string) string {
	return modelName + ":" + action
}

// Enforcer maps incoming requests to required permission codenames and asks
// the decision API whether to allow them.
type Enforcer struct {
	checker *Checker
}

func NewEnforcer(checker *Checker) *Enforcer {
	return &Enforcer{checker: checker}
}

// Allow checks the single codename implied by (modelName, action).
func (e *Enforcer) Allow(ctx context.Context, userID, organizationID, modelName, action string) (bool, error) {
	return e.checker.HasPermission(ctx, userID, Codename(modelName, action), organizationID)
}

// AllowAll checks a composite operation. Operations touching multiple
// resources require every implicated codename.
func (e *Enforcer) AllowAll(ctx context.Context, userID, organizationID string, codenames []string) (bool, error) {
	return e.checker.HasAllPermissions(ctx, userID, codenames, organizationID)
}

// AllowAny checks operations explicitly documented as "any".
func (e *Enforcer) AllowAny(ctx context.Context, userID, organizationID string, codenames []string) (bool, error) {
	return e.checker.HasAnyPermission(ctx, userID, codenames, organizationID)
}

// Require returns gin middleware enforcing the single codename implied by
// (modelName, action). The acting user and organization come from the
// request context set by the auth middleware; organization-scoped routes
// override the organization with their :orgId parameter.
func (e *Enforcer) Require(modelName, action string) gin.HandlerFunc {
	return e.RequireAll(Codename(modelName, action))
}

// RequireAll returns gin middleware requiring every listed codename.
func (e *Enforcer) RequireAll(codenames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		organizationID := c.Param("orgId")
		if organizationID == "" {
			organizationID = c.GetString("organizationID")
		}

		allowed, err := e.checker.HasAllPermissions(c.Request.Context(), userID, codenames, organizationID)
		if err != nil {
			logger.Error("Permission check failed",
				zap.Error(err),
				zap.String("userID", userID),
				zap.Strings("codenames", codenames))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "permission check failed"})
			c.Abort()
			return
		}

		if !allowed {
			logger.Warn("Access denied",
				zap.String("userID", userID),
				zap.String("organizationID", organizationID),
				zap.Strings("codenames", codenames),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Subject is the acting identity an enforcement strategy decides for.
type Subject struct {
	UserID         string
	OrganizationID string
}

// ResourceRef identifies the resource a request touches.
type ResourceRef struct {
	ModelName      string
	ID             string
	OwnerID        string
	OrganizationID string
}

// Strategy is one of a closed set of enforcement variants. Request handlers
// pick the variant matching how their resource is protected instead of
// subclassing anything.
type Strategy interface {
	Check(ctx context.Context, subject Subject, action string, resource ResourceRef) (bool, error)
}

// ModelStrategy allows the action when the subject holds the model-level
// permission for it.
type ModelStrategy struct {
	Checker *Checker
}

func (s ModelStrategy) Check(ctx context.Context, subject Subject, action string, resource ResourceRef) (bool, error) {
	return s.Checker.HasPermission(ctx, subject.UserID, Codename(resource.ModelName, action), subject.OrganizationID)
}

// OwnerStrategy allows the owner of the resource outright; anyone else
// needs the admin:access permission.
type OwnerStrategy struct {
	Checker *Checker
}

func (s OwnerStrategy) Check(ctx context.Context, subject Subject, action string, resource ResourceRef) (bool, error) {
	if resource.OwnerID != "" && resource.OwnerID == subject.UserID {
		return true, nil
	}
	return s.Checker.HasPermission(ctx, subject.UserID, "admin:access", subject.OrganizationID)
}

// OrganizationStrategy requires the subject to act within the resource's
// organization before the model-level permission is even consulted.
type OrganizationStrategy struct {
	Checker *Checker
}

func (s OrganizationStrategy) Check(ctx context.Context, subject Subject, action string, resource ResourceRef) (bool, error) {
	if resource.OrganizationID == "" || resource.OrganizationID != subject.OrganizationID {
		return false, nil
	}
	return s.Checker.HasPermission(ctx, subject.UserID, Codename(resource.ModelName, action), subject.OrganizationID)
}
