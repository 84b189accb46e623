// rbac/catalog.go
package rbac

import (
	"context"

	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/model"
)

// CatalogSource reads the definitional tables: which permissions and roles
// exist and whether they are currently usable.
type CatalogSource interface {
	PermissionByCodename(ctx context.Context, codename string) (*model.Permission, error)
	RoleByID(ctx context.Context, roleID string) (*model.Role, error)
}

// Scope is the tenant scope of a role: system-wide, or owned by exactly one
// organization.
type Scope struct {
	System         bool   `json:"system"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// Catalog is a read-only view over the definitional tables. It has no side
// effects and fails closed on anything it does not recognize.
type Catalog struct {
	source CatalogSource
}

func NewCatalog(source CatalogSource) *Catalog {
	return &Catalog{source: source}
}

// PermissionActive reports whether codename names an active permission.
// Unknown codenames and lookup failures both report false.
func (c *Catalog) PermissionActive(ctx context.Context, codename string) bool {
	permission, err := c.source.PermissionByCodename(ctx, codename)
	if err != nil || permission == nil {
		return false
	}
	return permission.IsActive
}

// RoleScope returns the tenant scope of a role, used to enforce isolation
// at resolution time.
func (c *Catalog) RoleScope(ctx context.Context, roleID string) (Scope, error) {
	role, err := c.source.RoleByID(ctx, roleID)
	if err != nil {
		return Scope{}, err
	}
	if role == nil {
		return Scope{}, warden_errors.ErrRoleNotFound
	}
	if role.RoleType == model.RoleTypeSystem {
		return Scope{System: true}, nil
	}
	return Scope{OrganizationID: role.OrganizationID}, nil
}
