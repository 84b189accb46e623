// dao/memory_store.go
package dao

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	"github.com/dev-mohitbeniwal/warden/model"
)

// edgeKey identifies a grant edge by its two endpoints.
type edgeKey struct {
	subjectID string
	objectID  string
}

// MemoryStore is an in-process grant store: entity tables plus an arena of
// grant edges indexed by (subjectID, objectID) for O(1) membership lookup.
// It implements the same store interfaces as the Neo4j DAOs, backs the
// engine tests, and works as a standalone backend for embedded use.
type MemoryStore struct {
	mu sync.RWMutex

	permissions           map[string]model.Permission
	permissionsByCodename map[string]string // codename → permission ID
	roles                 map[string]model.Role
	groups                map[string]model.UserGroup

	userPermissions  map[edgeKey]model.Grant // user → permission
	userRoles        map[edgeKey]model.Grant // user → role
	memberships      map[edgeKey]model.Grant // user → group
	rolePermissions  map[edgeKey]model.Grant // role → permission
	groupPermissions map[edgeKey]model.Grant // group → permission
	groupRoles       map[edgeKey]model.Grant // group → role
}

var (
	_ PermissionStore = (*MemoryStore)(nil)
	_ RoleStore       = (*MemoryStore)(nil)
	_ GroupStore      = (*MemoryStore)(nil)
	_ UserGrantStore  = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		permissions:           make(map[string]model.Permission),
		permissionsByCodename: make(map[string]string),
		roles:                 make(map[string]model.Role),
		groups:                make(map[string]model.UserGroup),
		userPermissions:       make(map[edgeKey]model.Grant),
		userRoles:             make(map[edgeKey]model.Grant),
		memberships:           make(map[edgeKey]model.Grant),
		rolePermissions:       make(map[edgeKey]model.Grant),
		groupPermissions:      make(map[edgeKey]model.Grant),
		groupRoles:            make(map[edgeKey]model.Grant),
	}
}

// RoleByID adapts GetRole to the catalog's naming.
func (s *MemoryStore) RoleByID(ctx context.Context, roleID string) (*model.Role, error) {
	return s.GetRole(ctx, roleID)
}

// --- PermissionStore ---

func (s *MemoryStore) CreatePermission(ctx context.Context, permission model.Permission) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if permission.ID == "" {
		permission.ID = uuid.New().String()
	}
	if _, exists := s.permissionsByCodename[permission.Codename]; exists {
		return "", warden_errors.ErrPermissionConflict
	}
	now := time.Now()
	permission.CreatedAt = now
	permission.UpdatedAt = now
	s.permissions[permission.ID] = permission
	s.permissionsByCodename[permission.Codename] = permission.ID
	return permission.ID, nil
}

func (s *MemoryStore) UpdatePermission(ctx context.Context, permission model.Permission) (*model.Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.permissions[permission.ID]
	if !ok {
		return nil, warden_errors.ErrPermissionNotFound
	}
	delete(s.permissionsByCodename, existing.Codename)
	permission.CreatedAt = existing.CreatedAt
	permission.UpdatedAt = time.Now()
	s.permissions[permission.ID] = permission
	s.permissionsByCodename[permission.Codename] = permission.ID
	return &permission, nil
}

func (s *MemoryStore) DeactivatePermission(ctx context.Context, permissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	permission, ok := s.permissions[permissionID]
	if !ok {
		return warden_errors.ErrPermissionNotFound
	}
	permission.IsActive = false
	permission.UpdatedAt = time.Now()
	s.permissions[permissionID] = permission
	return nil
}

func (s *MemoryStore) GetPermission(ctx context.Context, permissionID string) (*model.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	permission, ok := s.permissions[permissionID]
	if !ok {
		return nil, warden_errors.ErrPermissionNotFound
	}
	return &permission, nil
}

func (s *MemoryStore) PermissionByCodename(ctx context.Context, codename string) (*model.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.permissionsByCodename[codename]
	if !ok {
		return nil, warden_errors.ErrPermissionNotFound
	}
	permission := s.permissions[id]
	return &permission, nil
}

func (s *MemoryStore) ListPermissions(ctx context.Context, modelName string, limit, offset int) ([]*model.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var permissions []*model.Permission
	for id := range s.permissions {
		permission := s.permissions[id]
		if modelName != "" && permission.ModelName != modelName {
			continue
		}
		permissions = append(permissions, &permission)
	}
	sort.Slice(permissions, func(i, j int) bool {
		if permissions[i].ModelName != permissions[j].ModelName {
			return permissions[i].ModelName < permissions[j].ModelName
		}
		return permissions[i].Codename < permissions[j].Codename
	})
	return paginate(permissions, limit, offset), nil
}

// --- RoleStore ---

func (s *MemoryStore) CreateRole(ctx context.Context, role model.Role) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	for _, existing := range s.roles {
		if existing.Codename == role.Codename && existing.OrganizationID == role.OrganizationID {
			return "", warden_errors.ErrRoleConflict
		}
	}
	now := time.Now()
	role.CreatedAt = now
	role.UpdatedAt = now
	s.roles[role.ID] = role
	return role.ID, nil
}

func (s *MemoryStore) UpdateRole(ctx context.Context, role model.Role) (*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.roles[role.ID]
	if !ok {
		return nil, warden_errors.ErrRoleNotFound
	}
	role.CreatedAt = existing.CreatedAt
	role.UpdatedAt = time.Now()
	s.roles[role.ID] = role
	return &role, nil
}

func (s *MemoryStore) DeactivateRole(ctx context.Context, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[roleID]
	if !ok {
		return warden_errors.ErrRoleNotFound
	}
	role.IsActive = false
	role.UpdatedAt = time.Now()
	s.roles[roleID] = role
	return nil
}

func (s *MemoryStore) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[roleID]
	if !ok {
		return nil, warden_errors.ErrRoleNotFound
	}
	return &role, nil
}

func (s *MemoryStore) ListRoles(ctx context.Context, organizationID string, limit, offset int) ([]*model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roles []*model.Role
	for id := range s.roles {
		role := s.roles[id]
		if role.OrganizationID != organizationID {
			continue
		}
		roles = append(roles, &role)
	}
	sortRoles(roles)
	return paginate(roles, limit, offset), nil
}

func (s *MemoryStore) ListSystemRoles(ctx context.Context) ([]*model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roles []*model.Role
	for id := range s.roles {
		role := s.roles[id]
		if role.RoleType != model.RoleTypeSystem {
			continue
		}
		roles = append(roles, &role)
	}
	sortRoles(roles)
	return roles, nil
}

func (s *MemoryStore) AssignPermissionsToRole(ctx context.Context, roleID string, permissionIDs []string, grantedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[roleID]; !ok {
		return warden_errors.ErrRoleNotFound
	}
	for _, permissionID := range permissionIDs {
		if _, ok := s.permissions[permissionID]; !ok {
			return warden_errors.ErrInvalidAssignment
		}
	}

	// Replacement bind: validated above, so the whole set applies at once.
	clearEdges(s.rolePermissions, roleID)
	now := time.Now()
	for _, permissionID := range permissionIDs {
		s.rolePermissions[edgeKey{roleID, permissionID}] = model.Grant{
			GrantedBy: grantedBy,
			GrantedAt: now,
			IsActive:  true,
		}
	}
	return nil
}

func (s *MemoryStore) RolePermissions(ctx context.Context, roleID string) ([]model.PermissionGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissionGrantsLocked(s.rolePermissions, roleID), nil
}

// --- GroupStore ---

func (s *MemoryStore) CreateGroup(ctx context.Context, group model.UserGroup) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	for _, existing := range s.groups {
		if existing.Name == group.Name && existing.OrganizationID == group.OrganizationID {
			return "", warden_errors.ErrGroupConflict
		}
	}
	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now
	s.groups[group.ID] = group
	return group.ID, nil
}

func (s *MemoryStore) UpdateGroup(ctx context.Context, group model.UserGroup) (*model.UserGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.groups[group.ID]
	if !ok {
		return nil, warden_errors.ErrGroupNotFound
	}
	group.CreatedAt = existing.CreatedAt
	group.UpdatedAt = time.Now()
	s.groups[group.ID] = group
	return &group, nil
}

func (s *MemoryStore) DeactivateGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return warden_errors.ErrGroupNotFound
	}
	group.IsActive = false
	group.UpdatedAt = time.Now()
	s.groups[groupID] = group
	return nil
}

func (s *MemoryStore) GetGroup(ctx context.Context, groupID string) (*model.UserGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, warden_errors.ErrGroupNotFound
	}
	return &group, nil
}

func (s *MemoryStore) ListGroups(ctx context.Context, organizationID string, limit, offset int) ([]*model.UserGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*model.UserGroup
	for id := range s.groups {
		group := s.groups[id]
		if group.OrganizationID != organizationID {
			continue
		}
		groups = append(groups, &group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return paginate(groups, limit, offset), nil
}

func (s *MemoryStore) AddMembers(ctx context.Context, groupID string, userIDs []string, addedBy string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return warden_errors.ErrGroupNotFound
	}
	now := time.Now()
	for _, userID := range userIDs {
		s.memberships[edgeKey{userID, groupID}] = model.Grant{
			GrantedBy: addedBy,
			GrantedAt: now,
			ExpiresAt: expiresAt,
			IsActive:  true,
		}
	}
	return nil
}

func (s *MemoryStore) RemoveMembers(ctx context.Context, groupID string, userIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, userID := range userIDs {
		key := edgeKey{userID, groupID}
		if grant, ok := s.memberships[key]; ok {
			grant.IsActive = false
			s.memberships[key] = grant
		}
	}
	return nil
}

func (s *MemoryStore) GroupMembers(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []model.GroupMember
	for key, grant := range s.memberships {
		if key.objectID != groupID {
			continue
		}
		members = append(members, model.GroupMember{UserID: key.subjectID, Grant: grant})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

func (s *MemoryStore) AssignRolesToGroup(ctx context.Context, groupID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return warden_errors.ErrGroupNotFound
	}
	for _, roleID := range roleIDs {
		if _, ok := s.roles[roleID]; !ok {
			return warden_errors.ErrInvalidAssignment
		}
	}

	clearEdges(s.groupRoles, groupID)
	now := time.Now()
	for _, roleID := range roleIDs {
		s.groupRoles[edgeKey{groupID, roleID}] = model.Grant{
			GrantedBy: grantedBy,
			GrantedAt: now,
			ExpiresAt: expiresAt,
			IsActive:  true,
		}
	}
	return nil
}

func (s *MemoryStore) AssignPermissionsToGroup(ctx context.Context, groupID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return warden_errors.ErrGroupNotFound
	}
	for _, permissionID := range permissionIDs {
		if _, ok := s.permissions[permissionID]; !ok {
			return warden_errors.ErrInvalidAssignment
		}
	}

	clearEdges(s.groupPermissions, groupID)
	now := time.Now()
	for _, permissionID := range permissionIDs {
		s.groupPermissions[edgeKey{groupID, permissionID}] = model.Grant{
			GrantedBy: grantedBy,
			GrantedAt: now,
			ExpiresAt: expiresAt,
			IsActive:  true,
		}
	}
	return nil
}

func (s *MemoryStore) GroupRoles(ctx context.Context, groupID string) ([]model.RoleGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roleGrantsLocked(s.groupRoles, groupID), nil
}

func (s *MemoryStore) GroupPermissions(ctx context.Context, groupID string) ([]model.PermissionGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissionGrantsLocked(s.groupPermissions, groupID), nil
}

// --- UserGrantStore ---

func (s *MemoryStore) AssignRolesToUser(ctx context.Context, userID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, roleID := range roleIDs {
		if _, ok := s.roles[roleID]; !ok {
			return warden_errors.ErrInvalidAssignment
		}
	}

	clearEdges(s.userRoles, userID)
	now := time.Now()
	for _, roleID := range roleIDs {
		s.userRoles[edgeKey{userID, roleID}] = model.Grant{
			GrantedBy: grantedBy,
			GrantedAt: now,
			ExpiresAt: expiresAt,
			IsActive:  true,
		}
	}
	return nil
}

func (s *MemoryStore) AssignPermissionsToUser(ctx context.Context, userID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, permissionID := range permissionIDs {
		if _, ok := s.permissions[permissionID]; !ok {
			return warden_errors.ErrInvalidAssignment
		}
	}

	clearEdges(s.userPermissions, userID)
	now := time.Now()
	for _, permissionID := range permissionIDs {
		s.userPermissions[edgeKey{userID, permissionID}] = model.Grant{
			GrantedBy: grantedBy,
			GrantedAt: now,
			ExpiresAt: expiresAt,
			IsActive:  true,
		}
	}
	return nil
}

func (s *MemoryStore) UserRoles(ctx context.Context, userID string) ([]model.RoleGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roleGrantsLocked(s.userRoles, userID), nil
}

func (s *MemoryStore) UserPermissions(ctx context.Context, userID string) ([]model.PermissionGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissionGrantsLocked(s.userPermissions, userID), nil
}

func (s *MemoryStore) UserGroups(ctx context.Context, userID string) ([]model.GroupMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var memberships []model.GroupMembership
	for key, grant := range s.memberships {
		if key.subjectID != userID {
			continue
		}
		group, ok := s.groups[key.objectID]
		if !ok {
			continue
		}
		memberships = append(memberships, model.GroupMembership{Group: group, Grant: grant})
	}
	sort.Slice(memberships, func(i, j int) bool { return memberships[i].Group.ID < memberships[j].Group.ID })
	return memberships, nil
}

// --- helpers ---

func (s *MemoryStore) permissionGrantsLocked(edges map[edgeKey]model.Grant, subjectID string) []model.PermissionGrant {
	var grants []model.PermissionGrant
	for key, grant := range edges {
		if key.subjectID != subjectID {
			continue
		}
		permission, ok := s.permissions[key.objectID]
		if !ok {
			continue
		}
		grants = append(grants, model.PermissionGrant{Permission: permission, Grant: grant})
	}
	sort.Slice(grants, func(i, j int) bool {
		return grants[i].Permission.Codename < grants[j].Permission.Codename
	})
	return grants
}

func (s *MemoryStore) roleGrantsLocked(edges map[edgeKey]model.Grant, subjectID string) []model.RoleGrant {
	var grants []model.RoleGrant
	for key, grant := range edges {
		if key.subjectID != subjectID {
			continue
		}
		role, ok := s.roles[key.objectID]
		if !ok {
			continue
		}
		grants = append(grants, model.RoleGrant{Role: role, Grant: grant})
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].Role.ID < grants[j].Role.ID })
	return grants
}

func sortRoles(roles []*model.Role) {
	sort.Slice(roles, func(i, j int) bool {
		if roles[i].Codename != roles[j].Codename {
			return roles[i].Codename < roles[j].Codename
		}
		return roles[i].ID < roles[j].ID
	})
}

func clearEdges(edges map[edgeKey]model.Grant, subjectID string) {
	for key := range edges {
		if key.subjectID == subjectID {
			delete(edges, key)
		}
	}
}

func paginate[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// SetGrantExpiry rewrites the expiry on an existing user→role or
// user→permission edge. Test helper for exercising expired grants without
// waiting on the clock.
func (s *MemoryStore) SetGrantExpiry(userID, objectID string, expiresAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{userID, objectID}
	if grant, ok := s.userRoles[key]; ok {
		grant.ExpiresAt = expiresAt
		s.userRoles[key] = grant
	}
	if grant, ok := s.userPermissions[key]; ok {
		grant.ExpiresAt = expiresAt
		s.userPermissions[key] = grant
	}
}

// Codenames is a convenience for assertions: the active codenames defined
// for a model, sorted.
func (s *MemoryStore) Codenames(modelName string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var codenames []string
	for _, permission := range s.permissions {
		if !permission.IsActive {
			continue
		}
		if modelName != "" && !strings.HasPrefix(permission.Codename, modelName+":") {
			continue
		}
		codenames = append(codenames, permission.Codename)
	}
	sort.Strings(codenames)
	return codenames
}
