// rbac/decision.go
package rbac

import (
	"context"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
)

// DecisionCache is an optional, short-TTL cache of resolved permission
// sets. A miss or a cache failure always falls through to a fresh
// resolution; correctness never depends on the cache being present.
type DecisionCache interface {
	Get(ctx context.Context, userID, organizationID string) ([]string, bool)
	Put(ctx context.Context, userID, organizationID string, codenames []string)
}

// Checker is the decision API request-handling code asks for yes/no access
// decisions. All answers fail closed: unknown users, organizations and
// codenames are simply not held.
type Checker struct {
	resolver *Resolver
	grants   GrantReader
	cache    DecisionCache
	now      func() time.Time
}

type CheckerOption func(*Checker)

// WithCache attaches a decision cache to the checker.
func WithCache(cache DecisionCache) CheckerOption {
	return func(c *Checker) { c.cache = cache }
}

// WithClock overrides the evaluation clock.
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) { c.now = now }
}

func NewChecker(grants GrantReader, opts ...CheckerOption) *Checker {
	checker := &Checker{
		resolver: NewResolver(grants),
		grants:   grants,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(checker)
	}
	return checker
}

// EffectivePermissions returns the full resolved codename set for the user
// in the given organization context.
func (c *Checker) EffectivePermissions(ctx context.Context, userID, organizationID string) (Set, error) {
	if userID == "" || organizationID == "" {
		return make(Set), nil
	}

	if c.cache != nil {
		if codenames, ok := c.cache.Get(ctx, userID, organizationID); ok {
			set := make(Set, len(codenames))
			for _, codename := range codenames {
				set.Add(codename)
			}
			return set, nil
		}
	}

	set, err := c.resolver.Resolve(ctx, userID, organizationID, c.now())
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Put(ctx, userID, organizationID, set.Codenames())
	}
	return set, nil
}

// HasPermission reports whether the user holds codename in the given
// organization context.
func (c *Checker) HasPermission(ctx context.Context, userID, codename, organizationID string) (bool, error) {
	set, err := c.EffectivePermissions(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	return set.Contains(codename), nil
}

// HasAnyPermission reports whether the user holds at least one of the
// codenames.
func (c *Checker) HasAnyPermission(ctx context.Context, userID string, codenames []string, organizationID string) (bool, error) {
	set, err := c.EffectivePermissions(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	return set.ContainsAny(codenames), nil
}

// HasAllPermissions reports whether the user holds every one of the
// codenames.
func (c *Checker) HasAllPermissions(ctx context.Context, userID string, codenames []string, organizationID string) (bool, error) {
	set, err := c.EffectivePermissions(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	return set.ContainsAll(codenames), nil
}

// RolesOf returns the user's live, organization-visible role assignments.
// Display only; access decisions go through the permission checks.
func (c *Checker) RolesOf(ctx context.Context, userID, organizationID string) ([]model.RoleGrant, error) {
	userRoles, err := c.grants.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	asOf := c.now()
	visible := make([]model.RoleGrant, 0, len(userRoles))
	for _, rg := range userRoles {
		if rg.Live(asOf) && rg.Role.IsActive && rg.Role.VisibleIn(organizationID) {
			visible = append(visible, rg)
		}
	}
	return visible, nil
}

// GroupsOf returns the user's live group memberships in the organization.
func (c *Checker) GroupsOf(ctx context.Context, userID, organizationID string) ([]model.GroupMembership, error) {
	memberships, err := c.grants.UserGroups(ctx, userID)
	if err != nil {
		return nil, err
	}
	asOf := c.now()
	visible := make([]model.GroupMembership, 0, len(memberships))
	for _, m := range memberships {
		if m.Live(asOf) && m.Group.IsActive && m.Group.OrganizationID == organizationID {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

// Breakdown returns the effective set together with the contributing roles
// and groups, for the audit/introspection endpoint.
func (c *Checker) Breakdown(ctx context.Context, userID, organizationID string) (*model.EffectivePermissions, error) {
	set, err := c.EffectivePermissions(ctx, userID, organizationID)
	if err != nil {
		return nil, err
	}
	roles, err := c.RolesOf(ctx, userID, organizationID)
	if err != nil {
		return nil, err
	}
	groups, err := c.GroupsOf(ctx, userID, organizationID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Resolved permission breakdown",
		zap.String("userID", userID),
		zap.String("organizationID", organizationID),
		zap.Int("permissions", len(set)))

	return &model.EffectivePermissions{
		UserID:         userID,
		OrganizationID: organizationID,
		Permissions:    set.Codenames(),
		Roles:          roles,
		Groups:         groups,
	}, nil
}
