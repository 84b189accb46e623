// rbac/resolver.go
package rbac

import (
	"context"
	"sort"
	"time"

	"github.com/dev-mohitbeniwal/warden/model"
)

// GrantReader is the read surface of the grant store the resolver walks.
// Implementations return edge rows with the referenced entity embedded, so
// liveness and tenant visibility can be checked here in one place. Unknown
// subjects yield empty slices, not errors.
type GrantReader interface {
	UserPermissions(ctx context.Context, userID string) ([]model.PermissionGrant, error)
	UserRoles(ctx context.Context, userID string) ([]model.RoleGrant, error)
	UserGroups(ctx context.Context, userID string) ([]model.GroupMembership, error)
	RolePermissions(ctx context.Context, roleID string) ([]model.PermissionGrant, error)
	GroupPermissions(ctx context.Context, groupID string) ([]model.PermissionGrant, error)
	GroupRoles(ctx context.Context, groupID string) ([]model.RoleGrant, error)
}

// Set is an effective permission set keyed by codename.
type Set map[string]struct{}

func (s Set) Add(codename string) {
	s[codename] = struct{}{}
}

func (s Set) Contains(codename string) bool {
	_, ok := s[codename]
	return ok
}

// ContainsAll reports codenames ⊆ s. Vacuously true for an empty list.
func (s Set) ContainsAll(codenames []string) bool {
	for _, codename := range codenames {
		if !s.Contains(codename) {
			return false
		}
	}
	return true
}

// ContainsAny reports a non-empty intersection with codenames.
func (s Set) ContainsAny(codenames []string) bool {
	for _, codename := range codenames {
		if s.Contains(codename) {
			return true
		}
	}
	return false
}

// Codenames returns the set sorted, for stable API responses.
func (s Set) Codenames() []string {
	codenames := make([]string, 0, len(s))
	for codename := range s {
		codenames = append(codenames, codename)
	}
	sort.Strings(codenames)
	return codenames
}

// Resolver computes effective permission sets. Resolution is a pure read:
// it never mutates grant data, so any number of resolutions may run
// concurrently.
type Resolver struct {
	grants GrantReader
}

func NewResolver(grants GrantReader) *Resolver {
	return &Resolver{grants: grants}
}

// Resolve returns the union of direct, role-derived and group-derived
// permissions for userID inside organizationID at asOf.
//
// Grants are purely additive: there is no deny primitive and no precedence,
// so absence from the union is the only way to withhold access. Revoking a
// single permission that arrived via a role means removing the role; that
// coarseness is a known limitation of the model.
//
// Expired edges, inactive entities and roles/groups owned by a different
// organization contribute nothing. They are silently excluded, never an
// error: a corrupt catalog degrades to reduced access, not elevated access.
func (r *Resolver) Resolve(ctx context.Context, userID, organizationID string, asOf time.Time) (Set, error) {
	set := make(Set)

	// Direct grants.
	direct, err := r.grants.UserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	addPermissions(set, direct, asOf)

	// Role-derived grants. A role contributes only when the assignment edge
	// is live and the role is active and visible in this organization.
	userRoles, err := r.grants.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, rg := range userRoles {
		if !rg.Live(asOf) || !rg.Role.IsActive || !rg.Role.VisibleIn(organizationID) {
			continue
		}
		if err := r.addRolePermissions(ctx, set, rg.Role.ID, asOf); err != nil {
			return nil, err
		}
	}

	// Group-derived grants. Groups are always organization-scoped; a group
	// from another organization contributes nothing even when the
	// membership edge itself is live.
	memberships, err := r.grants.UserGroups(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if !m.Live(asOf) || !m.Group.IsActive || m.Group.OrganizationID != organizationID {
			continue
		}

		groupPerms, err := r.grants.GroupPermissions(ctx, m.Group.ID)
		if err != nil {
			return nil, err
		}
		addPermissions(set, groupPerms, asOf)

		// Group-assigned roles contribute exactly as user-assigned roles
		// do, including the visibility check: a cross-organization role
		// must not leak through a group either.
		groupRoles, err := r.grants.GroupRoles(ctx, m.Group.ID)
		if err != nil {
			return nil, err
		}
		for _, rg := range groupRoles {
			if !rg.Live(asOf) || !rg.Role.IsActive || !rg.Role.VisibleIn(organizationID) {
				continue
			}
			if err := r.addRolePermissions(ctx, set, rg.Role.ID, asOf); err != nil {
				return nil, err
			}
		}
	}

	return set, nil
}

func (r *Resolver) addRolePermissions(ctx context.Context, set Set, roleID string, asOf time.Time) error {
	rolePerms, err := r.grants.RolePermissions(ctx, roleID)
	if err != nil {
		return err
	}
	addPermissions(set, rolePerms, asOf)
	return nil
}

func addPermissions(set Set, grants []model.PermissionGrant, asOf time.Time) {
	for _, g := range grants {
		if g.Live(asOf) && g.Permission.IsActive {
			set.Add(g.Permission.Codename)
		}
	}
}
