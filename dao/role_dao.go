// dao/role_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/warden/audit"
	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
	warden_neo4j "github.com/dev-mohitbeniwal/warden/model/neo4j"
)

type RoleDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewRoleDAO(driver neo4j.Driver, auditService audit.Service) *RoleDAO {
	dao := &RoleDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Role", zap.Error(err))
	}
	return dao
}

func (dao *RoleDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Role ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_role_id IF NOT EXISTS
        FOR (r:` + warden_neo4j.LabelRole + `) REQUIRE r.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Role ID", zap.Error(err))
		return err
	}

	return nil
}

func (dao *RoleDAO) CreateRole(ctx context.Context, role model.Role) (string, error) {
	start := time.Now()
	logger.Info("Creating new role", zap.String("roleName", role.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if role.ID == "" {
		role.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		// Codename uniqueness is scoped per organization; system roles
		// share one global namespace.
		checkQuery := `
		MATCH (r:` + warden_neo4j.LabelRole + ` {codename: $codename})
		WHERE coalesce(r.organizationID, '') = $organizationID
		RETURN r.id
		`
		checkResult, err := transaction.Run(checkQuery, map[string]interface{}{
			"codename":       role.Codename,
			"organizationID": role.OrganizationID,
		})
		if err != nil {
			logger.Error("Failed to check role codename", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}
		if checkResult.Next() {
			return nil, warden_errors.ErrRoleConflict
		}

		query := `
		CREATE (r:` + warden_neo4j.LabelRole + ` {
			id: $id,
			name: $name,
			codename: $codename,
			description: $description,
			roleType: $roleType,
			isActive: true,
			createdAt: $createdAt,
			updatedAt: $updatedAt
		})
		`

		if role.OrganizationID != "" {
			query += `
			SET r.organizationID = $organizationID
			WITH r
			MATCH (o:` + warden_neo4j.LabelOrganization + ` {id: $organizationID})
			MERGE (r)-[:` + warden_neo4j.RelPartOf + `]->(o)
			`
		}

		query += `
		RETURN r.id as id
		`

		now := time.Now().Format(time.RFC3339)
		params := map[string]interface{}{
			"id":          role.ID,
			"name":        role.Name,
			"codename":    role.Codename,
			"description": role.Description,
			"roleType":    role.RoleType,
			"createdAt":   now,
			"updatedAt":   now,
		}
		if role.OrganizationID != "" {
			params["organizationID"] = role.OrganizationID
		}

		logger.Debug("Create role query",
			zap.String("query", query),
			zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute create role query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		// No row back means the organization match failed.
		if role.OrganizationID != "" {
			return nil, warden_errors.ErrInvalidAssignment
		}
		return nil, warden_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create role",
			zap.Error(err),
			zap.String("roleName", role.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	roleID := fmt.Sprintf("%v", result)
	logger.Info("Role created successfully",
		zap.String("roleID", roleID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:      time.Now(),
		UserID:         requestingUser(ctx),
		OrganizationID: role.OrganizationID,
		Action:         "CREATE_ROLE",
		ResourceID:     roleID,
		AccessGranted:  true,
		ChangeDetails:  createRoleChangeDetails(nil, &role),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return roleID, nil
}

func (dao *RoleDAO) UpdateRole(ctx context.Context, role model.Role) (*model.Role, error) {
	start := time.Now()
	logger.Info("Updating role", zap.String("roleID", role.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldRole, err := dao.GetRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	var updatedRole *model.Role
	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		// Role type and owning organization are fixed at creation.
		query := `
		MATCH (r:` + warden_neo4j.LabelRole + ` {id: $id})
		SET r += $props
		RETURN r
		`

		params := map[string]interface{}{
			"id": role.ID,
			"props": map[string]interface{}{
				warden_neo4j.AttrName:      role.Name,
				"description":              role.Description,
				warden_neo4j.AttrIsActive:  role.IsActive,
				warden_neo4j.AttrUpdatedAt: time.Now().Format(time.RFC3339),
			},
		}

		logger.Debug("Update role query", zap.String("query", query), zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute update role query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			updatedRole, err = mapNodeToRole(node)
			if err != nil {
				return nil, fmt.Errorf("failed to map role node to struct: %w", err)
			}
			return nil, nil
		}

		return nil, warden_errors.ErrRoleNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update role",
			zap.Error(err),
			zap.String("roleID", role.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Info("Role updated successfully",
		zap.String("roleID", role.ID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:      time.Now(),
		UserID:         requestingUser(ctx),
		OrganizationID: oldRole.OrganizationID,
		Action:         "UPDATE_ROLE",
		ResourceID:     role.ID,
		AccessGranted:  true,
		ChangeDetails:  createRoleChangeDetails(oldRole, updatedRole),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedRole, nil
}

// DeactivateRole soft-deletes a role. Users and groups keep their HAS_ROLE
// edges but the role stops contributing permissions.
func (dao *RoleDAO) DeactivateRole(ctx context.Context, roleID string) error {
	start := time.Now()
	logger.Info("Deactivating role", zap.String("roleID", roleID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
		MATCH (r:` + warden_neo4j.LabelRole + ` {id: $id})
		SET r.isActive = false, r.updatedAt = $updatedAt
		RETURN r.id
		`
		result, err := transaction.Run(query, map[string]interface{}{
			"id":        roleID,
			"updatedAt": time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}

		if !result.Next() {
			return nil, warden_errors.ErrRoleNotFound
		}

		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to deactivate role",
			zap.Error(err),
			zap.String("roleID", roleID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Role deactivated successfully",
		zap.String("roleID", roleID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DEACTIVATE_ROLE",
		ResourceID:    roleID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *RoleDAO) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	start := time.Now()
	logger.Info("Retrieving role", zap.String("roleID", roleID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:` + warden_neo4j.LabelRole + ` {id: $id})
    RETURN r
    `
	result, err := session.Run(query, map[string]interface{}{"id": roleID})
	if err != nil {
		logger.Error("Failed to execute get role query",
			zap.Error(err),
			zap.String("roleID", roleID),
			zap.Duration("duration", time.Since(start)))
		return nil, warden_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		role, err := mapNodeToRole(node)
		if err != nil {
			logger.Error("Failed to map role node to struct",
				zap.Error(err),
				zap.String("roleID", roleID))
			return nil, warden_errors.ErrInternalServer
		}
		return role, nil
	}

	logger.Warn("Role not found",
		zap.String("roleID", roleID),
		zap.Duration("duration", time.Since(start)))
	return nil, warden_errors.ErrRoleNotFound
}

func (dao *RoleDAO) ListRoles(ctx context.Context, organizationID string, limit, offset int) ([]*model.Role, error) {
	start := time.Now()
	logger.Info("Listing roles",
		zap.String("organizationID", organizationID),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:` + warden_neo4j.LabelRole + ` {organizationID: $organizationID})
    RETURN r
    ORDER BY r.codename
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"organizationID": organizationID,
		"limit":          limit,
		"offset":         offset,
	})
	if err != nil {
		logger.Error("Failed to execute list roles query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, warden_errors.ErrDatabaseOperation
	}

	var roles []*model.Role
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		role, err := mapNodeToRole(node)
		if err != nil {
			logger.Error("Failed to map role node to struct", zap.Error(err))
			return nil, warden_errors.ErrInternalServer
		}
		roles = append(roles, role)
	}

	logger.Info("Roles listed successfully",
		zap.Int("count", len(roles)),
		zap.Duration("duration", time.Since(start)))

	return roles, nil
}

func (dao *RoleDAO) ListSystemRoles(ctx context.Context) ([]*model.Role, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:` + warden_neo4j.LabelRole + ` {roleType: $roleType})
    RETURN r
    ORDER BY r.codename
    `
	result, err := session.Run(query, map[string]interface{}{
		"roleType": model.RoleTypeSystem,
	})
	if err != nil {
		logger.Error("Failed to execute list system roles query", zap.Error(err))
		return nil, warden_errors.ErrDatabaseOperation
	}

	var roles []*model.Role
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		role, err := mapNodeToRole(node)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		roles = append(roles, role)
	}

	return roles, nil
}

// AssignPermissionsToRole replaces the role's permission set in a single
// transaction. Every permission ID must exist or nothing is written.
func (dao *RoleDAO) AssignPermissionsToRole(ctx context.Context, roleID string, permissionIDs []string, grantedBy string) error {
	start := time.Now()
	logger.Info("Assigning permissions to role",
		zap.String("roleID", roleID),
		zap.Int("permissionCount", len(permissionIDs)))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		roleResult, err := transaction.Run(`
		MATCH (r:`+warden_neo4j.LabelRole+` {id: $roleID})
		RETURN r.id
		`, map[string]interface{}{"roleID": roleID})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}
		if !roleResult.Next() {
			return nil, warden_errors.ErrRoleNotFound
		}

		countResult, err := transaction.Run(`
		UNWIND $permissionIDs AS permissionID
		MATCH (p:`+warden_neo4j.LabelPermission+` {id: permissionID})
		RETURN count(p) AS matched
		`, map[string]interface{}{"permissionIDs": permissionIDs})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}
		if countResult.Next() {
			matched := countResult.Record().Values[0].(int64)
			if matched != int64(len(permissionIDs)) {
				return nil, warden_errors.ErrInvalidAssignment
			}
		}

		query := `
		MATCH (r:` + warden_neo4j.LabelRole + ` {id: $roleID})
		OPTIONAL MATCH (r)-[old:` + warden_neo4j.RelRoleGrants + `]->(:` + warden_neo4j.LabelPermission + `)
		DELETE old
		WITH DISTINCT r
		UNWIND $permissionIDs AS permissionID
		MATCH (p:` + warden_neo4j.LabelPermission + ` {id: permissionID})
		MERGE (r)-[e:` + warden_neo4j.RelRoleGrants + `]->(p)
		SET e += $edgeProps
		`
		params := map[string]interface{}{
			"roleID":        roleID,
			"permissionIDs": permissionIDs,
			"edgeProps":     grantEdgeParams(grantedBy, nil),
		}

		logger.Debug("Assign permissions to role query",
			zap.String("query", query),
			zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute assign permissions query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}
		return result.Consume()
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to assign permissions to role",
			zap.Error(err),
			zap.String("roleID", roleID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Permissions assigned to role successfully",
		zap.String("roleID", roleID),
		zap.Duration("duration", duration))

	// Audit trail
	changeDetails, _ := json.Marshal(map[string]interface{}{
		"action":        "permissions_replaced",
		"permissionIDs": permissionIDs,
	})
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "ASSIGN_PERMISSIONS_TO_ROLE",
		ResourceID:    roleID,
		AccessGranted: true,
		ChangeDetails: changeDetails,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *RoleDAO) RolePermissions(ctx context.Context, roleID string) ([]model.PermissionGrant, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:` + warden_neo4j.LabelRole + ` {id: $roleID})-[e:` + warden_neo4j.RelRoleGrants + `]->(p:` + warden_neo4j.LabelPermission + `)
    RETURN p, e
    ORDER BY p.codename
    `
	result, err := session.Run(query, map[string]interface{}{"roleID": roleID})
	if err != nil {
		logger.Error("Failed to execute role permissions query",
			zap.Error(err),
			zap.String("roleID", roleID))
		return nil, warden_errors.ErrDatabaseOperation
	}

	var grants []model.PermissionGrant
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		rel := result.Record().Values[1].(neo4j.Relationship)

		permission, err := mapNodeToPermission(node)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		grant, err := mapEdgeToGrant(rel)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		grants = append(grants, model.PermissionGrant{Permission: *permission, Grant: grant})
	}

	return grants, nil
}

// Helper function to create change details for audit log
func createRoleChangeDetails(oldRole, newRole *model.Role) json.RawMessage {
	changes := make(map[string]interface{})
	if oldRole == nil {
		changes["action"] = "created"
	} else if newRole == nil {
		changes["action"] = "deleted"
	} else {
		changes["action"] = "updated"
		if oldRole.Name != newRole.Name {
			changes["name"] = map[string]string{"old": oldRole.Name, "new": newRole.Name}
		}
		if oldRole.Description != newRole.Description {
			changes["description"] = map[string]string{"old": oldRole.Description, "new": newRole.Description}
		}
		if oldRole.IsActive != newRole.IsActive {
			changes["isActive"] = map[string]bool{"old": oldRole.IsActive, "new": newRole.IsActive}
		}
	}
	changeDetails, _ := json.Marshal(changes)
	return changeDetails
}
