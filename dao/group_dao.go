// dao/group_dao.go
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

type GroupDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewGroupDAO(driver neo4j.Driver, auditService audit.Service) *GroupDAO {
	dao := &GroupDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Group", zap.Error(err))
	}
	return dao
}

func (dao *GroupDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Group ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_group_id IF NOT EXISTS
        FOR (g:` + warden_neo4j.LabelGroup + `) REQUIRE g.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Group ID", zap.Error(err))
		return err
	}

	return nil
}

func (dao *GroupDAO) CreateGroup(ctx context.Context, group model.UserGroup) (string, error) {
	start := time.Now()
	logger.Info("Creating new group",
		zap.String("groupName", group.Name),
		zap.String("organizationID", group.OrganizationID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		checkQuery := `
		MATCH (g:` + warden_neo4j.LabelGroup + ` {name: $name, organizationID: $organizationID})
		RETURN g.id
		`
		checkResult, err := transaction.Run(checkQuery, map[string]interface{}{
			"name":           group.Name,
			"organizationID": group.OrganizationID,
		})
		if err != nil {
			logger.Error("Failed to check group name", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}
		if checkResult.Next() {
			return nil, warden_errors.ErrGroupConflict
		}

		query := `
		MATCH (o:` + warden_neo4j.LabelOrganization + ` {id: $organizationID})
		CREATE (g:` + warden_neo4j.LabelGroup + ` {
			id: $id,
			name: $name,
			description: $description,
			organizationID: $organizationID,
			createdBy: $createdBy,
			isActive: true,
			createdAt: $createdAt,
			updatedAt: $updatedAt
		})
		MERGE (g)-[:` + warden_neo4j.RelPartOf + `]->(o)
		RETURN g.id as id
		`

		now := time.Now().Format(time.RFC3339)
		params := map[string]interface{}{
			"id":             group.ID,
			"name":           group.Name,
			"description":    group.Description,
			"organizationID": group.OrganizationID,
			"createdBy":      group.CreatedBy,
			"createdAt":      now,
			"updatedAt":      now,
		}

		logger.Debug("Create group query",
			zap.String("query", query),
			zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute create group query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		// No row back means the organization match failed.
		return nil, warden_errors.ErrInvalidAssignment
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create group",
			zap.Error(err),
			zap.String("groupName", group.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	groupID := fmt.Sprintf("%v", result)
	logger.Info("Group created successfully",
		zap.String("groupID", groupID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:      time.Now(),
		UserID:         requestingUser(ctx),
		OrganizationID: group.OrganizationID,
		Action:         "CREATE_GROUP",
		ResourceID:     groupID,
		AccessGranted:  true,
		ChangeDetails:  createGroupChangeDetails(nil, &group),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return groupID, nil
}

func (dao *GroupDAO) UpdateGroup(ctx context.Context, group model.UserGroup) (*model.UserGroup, error) {
	start := time.Now()
	logger.Info("Updating group", zap.String("groupID", group.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldGroup, err := dao.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	var updatedGroup *model.UserGroup
	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		// The owning organization never changes after creation.
		query := `
		MATCH (g:` + warden_neo4j.LabelGroup + ` {id: $id})
		SET g += $props
		RETURN g
		`

		params := map[string]interface{}{
			"id": group.ID,
			"props": map[string]interface{}{
				warden_neo4j.AttrName:      group.Name,
				"description":              group.Description,
				warden_neo4j.AttrIsActive:  group.IsActive,
				warden_neo4j.AttrUpdatedAt: time.Now().Format(time.RFC3339),
			},
		}

		logger.Debug("Update group query", zap.String("query", query), zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute update group query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			updatedGroup, err = mapNodeToGroup(node)
			if err != nil {
				return nil, fmt.Errorf("failed to map group node to struct: %w", err)
			}
			return nil, nil
		}

		return nil, warden_errors.ErrGroupNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update group",
			zap.Error(err),
			zap.String("groupID", group.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Info("Group updated successfully",
		zap.String("groupID", group.ID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:      time.Now(),
		UserID:         requestingUser(ctx),
		OrganizationID: oldGroup.OrganizationID,
		Action:         "UPDATE_GROUP",
		ResourceID:     group.ID,
		AccessGranted:  true,
		ChangeDetails:  createGroupChangeDetails(oldGroup, updatedGroup),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedGroup, nil
}

// DeactivateGroup soft-deletes a group. Memberships and group grants stay in
// the graph but stop contributing to resolution.
func (dao *GroupDAO) DeactivateGroup(ctx context.Context, groupID string) error {
	start := time.Now()
	logger.Info("Deactivating group", zap.String("groupID", groupID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
		MATCH (g:` + warden_neo4j.LabelGroup + ` {id: $id})
		SET g.isActive = false, g.updatedAt = $updatedAt
		RETURN g.id
		`
		result, err := transaction.Run(query, map[string]interface{}{
			"id":        groupID,
			"updatedAt": time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}

		if !result.Next() {
			return nil, warden_errors.ErrGroupNotFound
		}

		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to deactivate group",
			zap.Error(err),
			zap.String("groupID", groupID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Group deactivated successfully",
		zap.String("groupID", groupID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DEACTIVATE_GROUP",
		ResourceID:    groupID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *GroupDAO) GetGroup(ctx context.Context, groupID string) (*model.UserGroup, error) {
	start := time.Now()
	logger.Info("Retrieving group", zap.String("groupID", groupID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (g:` + warden_neo4j.LabelGroup + ` {id: $id})
    RETURN g
    `
	result, err := session.Run(query, map[string]interface{}{"id": groupID})
	if err != nil {
		logger.Error("Failed to execute get group query",
			zap.Error(err),
			zap.String("groupID", groupID),
			zap.Duration("duration", time.Since(start)))
		return nil, warden_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		group, err := mapNodeToGroup(node)
		if err != nil {
			logger.Error("Failed to map group node to struct",
				zap.Error(err),
				zap.String("groupID", groupID))
			return nil, warden_errors.ErrInternalServer
		}
		return group, nil
	}

	logger.Warn("Group not found",
		zap.String("groupID", groupID),
		zap.Duration("duration", time.Since(start)))
	return nil, warden_errors.ErrGroupNotFound
}

func (dao *GroupDAO) ListGroups(ctx context.Context, organizationID string, limit, offset int) ([]*model.UserGroup, error) {
	start := time.Now()
	logger.Info("Listing groups",
		zap.String("organizationID", organizationID),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (g:` + warden_neo4j.LabelGroup + ` {organizationID: $organizationID})
    RETURN g
    ORDER BY g.name
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"organizationID": organizationID,
		"limit":          limit,
		"offset":         offset,
	})
	if err != nil {
		logger.Error("Failed to execute list groups query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, warden_errors.ErrDatabaseOperation
	}

	var groups []*model.UserGroup
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		group, err := mapNodeToGroup(node)
		if err != nil {
			logger.Error("Failed to map group node to struct", zap.Error(err))
			return nil, warden_errors.ErrInternalServer
		}
		groups = append(groups, group)
	}

	logger.Info("Groups listed successfully",
		zap.Int("count", len(groups)),
		zap.Duration("duration", time.Since(start)))

	return groups, nil
}

// AddMembers creates or refreshes MEMBER_OF edges for the given users.
// Re-adding a removed member reactivates the existing edge.
func (dao *GroupDAO) AddMembers(ctx context.Context, groupID string, userIDs []string, addedBy string, expiresAt *time.Time) error {
	start := time.Now()
	logger.Info("Adding members to group",
		zap.String("groupID", groupID),
		zap.Int("userCount", len(userIDs)))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		groupResult, err := transaction.Run(`
		MATCH (g:`+warden_neo4j.LabelGroup+` {id: $groupID})
		RETURN g.id
		`, map[string]interface{}{"groupID": groupID})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}
		if !groupResult.Next() {
			return nil, warden_errors.ErrGroupNotFound
		}

		// Users live in an external identity system, so their nodes are
		// merged on demand.
		query := `
		MATCH (g:` + warden_neo4j.LabelGroup + ` {id: $groupID})
		UNWIND $userIDs AS userID
		MERGE (u:` + warden_neo4j.LabelUser + ` {id: userID})
		MERGE (u)-[e:` + warden_neo4j.RelMemberOf + `]->(g)
		SET e += $edgeProps
		`
		params := map[string]interface{}{
			"groupID":   groupID,
			"userIDs":   userIDs,
			"edgeProps": grantEdgeParams(addedBy, expiresAt),
		}

		logger.Debug("Add members query", zap.String("query", query), zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute add members query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}
		return result.Consume()
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to add members to group",
			zap.Error(err),
			zap.String("groupID", groupID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Members added to group successfully",
		zap.String("groupID", groupID),
		zap.Duration("duration", duration))

	// Audit trail
	changeDetails, _ := json.Marshal(map[string]interface{}{
		"action":  "members_added",
		"userIDs": userIDs,
	})
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "ADD_GROUP_MEMBERS",
		ResourceID:    groupID,
		AccessGranted: true,
		ChangeDetails: changeDetails,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

// RemoveMembers deactivates the membership edges. The rows survive for
// audit history.
func (dao *GroupDAO) RemoveMembers(ctx context.Context, groupID string, userIDs []string) error {
	start := time.Now()
	logger.Info("Removing members from group",
		zap.String("groupID", groupID),
		zap.Int("userCount", len(userIDs)))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
		MATCH (u:` + warden_neo4j.LabelUser + `)-[e:` + warden_neo4j.RelMemberOf + `]->(g:` + warden_neo4j.LabelGroup + ` {id: $groupID})
		WHERE u.id IN $userIDs
		SET e.isActive = false
		`
		result, err := transaction.Run(query, map[string]interface{}{
			"groupID": groupID,
			"userIDs": userIDs,
		})
		if err != nil {
			logger.Error("Failed to execute remove members query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}
		return result.Consume()
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to remove members from group",
			zap.Error(err),
			zap.String("groupID", groupID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Members removed from group successfully",
		zap.String("groupID", groupID),
		zap.Duration("duration", duration))

	// Audit trail
	changeDetails, _ := json.Marshal(map[string]interface{}{
		"action":  "members_removed",
		"userIDs": userIDs,
	})
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "REMOVE_GROUP_MEMBERS",
		ResourceID:    groupID,
		AccessGranted: true,
		ChangeDetails: changeDetails,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *GroupDAO) GroupMembers(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + warden_neo4j.LabelUser + `)-[e:` + warden_neo4j.RelMemberOf + `]->(g:` + warden_neo4j.LabelGroup + ` {id: $groupID})
    RETURN u.id, e
    ORDER BY u.id
    `
	result, err := session.Run(query, map[string]interface{}{"groupID": groupID})
	if err != nil {
		logger.Error("Failed to execute group members query",
			zap.Error(err),
			zap.String("groupID", groupID))
		return nil, warden_errors.ErrDatabaseOperation
	}

	var members []model.GroupMember
	for result.Next() {
		userID := result.Record().Values[0].(string)
		rel := result.Record().Values[1].(neo4j.Relationship)

		grant, err := mapEdgeToGrant(rel)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		members = append(members, model.GroupMember{UserID: userID, Grant: grant})
	}

	return members, nil
}

// AssignRolesToGroup replaces the group's role set in a single transaction.
func (dao *GroupDAO) AssignRolesToGroup(ctx context.Context, groupID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error {
	return dao.replaceGroupGrants(ctx, groupID, roleIDs, grantedBy, expiresAt,
		warden_neo4j.LabelRole, warden_neo4j.RelHasRole, "ASSIGN_ROLES_TO_GROUP")
}

// AssignPermissionsToGroup replaces the group's direct permission set in a
// single transaction.
func (dao *GroupDAO) AssignPermissionsToGroup(ctx context.Context, groupID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error {
	return dao.replaceGroupGrants(ctx, groupID, permissionIDs, grantedBy, expiresAt,
		warden_neo4j.LabelPermission, warden_neo4j.RelHasPermission, "ASSIGN_PERMISSIONS_TO_GROUP")
}

func (dao *GroupDAO) replaceGroupGrants(ctx context.Context, groupID string, targetIDs []string, grantedBy string, expiresAt *time.Time, targetLabel, relType, auditAction string) error {
	start := time.Now()
	logger.Info("Replacing group grants",
		zap.String("groupID", groupID),
		zap.String("relType", relType),
		zap.Int("targetCount", len(targetIDs)))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		groupResult, err := transaction.Run(`
		MATCH (g:`+warden_neo4j.LabelGroup+` {id: $groupID})
		RETURN g.id
		`, map[string]interface{}{"groupID": groupID})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}
		if !groupResult.Next() {
			return nil, warden_errors.ErrGroupNotFound
		}

		countResult, err := transaction.Run(`
		UNWIND $targetIDs AS targetID
		MATCH (t:`+targetLabel+` {id: targetID})
		RETURN count(t) AS matched
		`, map[string]interface{}{"targetIDs": targetIDs})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}
		if countResult.Next() {
			matched := countResult.Record().Values[0].(int64)
			if matched != int64(len(targetIDs)) {
				return nil, warden_errors.ErrInvalidAssignment
			}
		}

		query := `
		MATCH (g:` + warden_neo4j.LabelGroup + ` {id: $groupID})
		OPTIONAL MATCH (g)-[old:` + relType + `]->(:` + targetLabel + `)
		DELETE old
		WITH DISTINCT g
		UNWIND $targetIDs AS targetID
		MATCH (t:` + targetLabel + ` {id: targetID})
		MERGE (g)-[e:` + relType + `]->(t)
		SET e += $edgeProps
		`
		params := map[string]interface{}{
			"groupID":   groupID,
			"targetIDs": targetIDs,
			"edgeProps": grantEdgeParams(grantedBy, expiresAt),
		}

		logger.Debug("Replace group grants query",
			zap.String("query", query),
			zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute replace group grants query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}
		return result.Consume()
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to replace group grants",
			zap.Error(err),
			zap.String("groupID", groupID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Group grants replaced successfully",
		zap.String("groupID", groupID),
		zap.Duration("duration", duration))

	// Audit trail
	changeDetails, _ := json.Marshal(map[string]interface{}{
		"action":    "grants_replaced",
		"targetIDs": targetIDs,
	})
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        auditAction,
		ResourceID:    groupID,
		AccessGranted: true,
		ChangeDetails: changeDetails,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *GroupDAO) GroupRoles(ctx context.Context, groupID string) ([]model.RoleGrant, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (g:` + warden_neo4j.LabelGroup + ` {id: $groupID})-[e:` + warden_neo4j.RelHasRole + `]->(r:` + warden_neo4j.LabelRole + `)
    RETURN r, e
    ORDER BY r.codename
    `
	result, err := session.Run(query, map[string]interface{}{"groupID": groupID})
	if err != nil {
		logger.Error("Failed to execute group roles query",
			zap.Error(err),
			zap.String("groupID", groupID))
		return nil, warden_errors.ErrDatabaseOperation
	}

	var grants []model.RoleGrant
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		rel := result.Record().Values[1].(neo4j.Relationship)

		role, err := mapNodeToRole(node)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		grant, err := mapEdgeToGrant(rel)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		grants = append(grants, model.RoleGrant{Role: *role, Grant: grant})
	}

	return grants, nil
}

func (dao *GroupDAO) GroupPermissions(ctx context.Context, groupID string) ([]model.PermissionGrant, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (g:` + warden_neo4j.LabelGroup + ` {id: $groupID})-[e:` + warden_neo4j.RelHasPermission + `]->(p:` + warden_neo4j.LabelPermission + `)
    RETURN p, e
    ORDER BY p.codename
    `
	result, err := session.Run(query, map[string]interface{}{"groupID": groupID})
	if err != nil {
		logger.Error("Failed to execute group permissions query",
			zap.Error(err),
			zap.String("groupID", groupID))
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
func createGroupChangeDetails(oldGroup, newGroup *model.UserGroup) json.RawMessage {
	changes := make(map[string]interface{})
	if oldGroup == nil {
		changes["action"] = "created"
	} else if newGroup == nil {
		changes["action"] = "deleted"
	} else {
		changes["action"] = "updated"
		if oldGroup.Name != newGroup.Name {
			changes["name"] = map[string]string{"old": oldGroup.Name, "new": newGroup.Name}
		}
		if oldGroup.Description != newGroup.Description {
			changes["description"] = map[string]string{"old": oldGroup.Description, "new": newGroup.Description}
		}
		if oldGroup.IsActive != newGroup.IsActive {
			changes["isActive"] = map[string]bool{"old": oldGroup.IsActive, "new": newGroup.IsActive}
		}
	}
	changeDetails, _ := json.Marshal(changes)
	return changeDetails
}
