// model/rbac.go
package model

import "time"

// Permission types. "custom" covers anything outside the CRUD+list set,
// such as the admin:access / admin:manage permissions.
const (
	PermissionTypeCreate = "create"
	PermissionTypeRead   = "read"
	PermissionTypeUpdate = "update"
	PermissionTypeDelete = "delete"
	PermissionTypeList   = "list"
	PermissionTypeCustom = "custom"
)

// Role types. System roles have no owning organization and are visible in
// every organization context.
const (
	RoleTypeSystem       = "system"
	RoleTypeOrganization = "organization"
	RoleTypeCustom       = "custom"
)

type Permission struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Codename       string    `json:"codename"` // "{model}:{action}", globally unique
	Description    string    `json:"description,omitempty"`
	PermissionType string    `json:"permission_type"`
	ModelName      string    `json:"model_name"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Role struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Codename       string    `json:"codename"`
	Description    string    `json:"description,omitempty"`
	RoleType       string    `json:"role_type"`
	OrganizationID string    `json:"organization_id,omitempty"` // empty for system roles
	IsActive       bool      `json:"is_active"`
	IsSystemRole   bool      `json:"is_system_role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// VisibleIn reports whether the role may contribute permissions when
// resolving inside organizationID. System roles are visible everywhere;
// every other role only inside its owning organization.
func (r Role) VisibleIn(organizationID string) bool {
	if r.RoleType == RoleTypeSystem {
		return true
	}
	return r.OrganizationID != "" && r.OrganizationID == organizationID
}

type UserGroup struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	OrganizationID string    `json:"organization_id"`
	CreatedBy      string    `json:"created_by,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Grant is the metadata every grant edge carries. An edge with a nil
// ExpiresAt never expires on its own.
type Grant struct {
	GrantedBy string     `json:"granted_by,omitempty"`
	GrantedAt time.Time  `json:"granted_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// Live reports whether the edge itself is usable at asOf. Liveness of the
// entities on either side of the edge is checked separately.
func (g Grant) Live(asOf time.Time) bool {
	if !g.IsActive {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(asOf)
}

// PermissionGrant is a user→permission, role→permission or group→permission
// edge together with the permission it points at.
type PermissionGrant struct {
	Permission Permission `json:"permission"`
	Grant
}

// RoleGrant is a user→role or group→role edge together with the role.
type RoleGrant struct {
	Role Role `json:"role"`
	Grant
}

// GroupMembership is a user→group edge together with the group.
type GroupMembership struct {
	Group UserGroup `json:"group"`
	Grant
}

// GroupMember is the user side of a membership edge, used when listing the
// members of a group.
type GroupMember struct {
	UserID string `json:"user_id"`
	Grant
}

// EffectivePermissions is the audit/debugging view returned by the
// users/{id}/permissions endpoint: the resolved codename set plus the roles
// and groups that contributed to it. Clients must not make access decisions
// from this; they ask the decision endpoints instead.
type EffectivePermissions struct {
	UserID         string            `json:"user_id"`
	OrganizationID string            `json:"organization_id"`
	Permissions    []string          `json:"permissions"`
	Roles          []RoleGrant       `json:"roles"`
	Groups         []GroupMembership `json:"groups"`
}
