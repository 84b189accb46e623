// dao/grant_dao.go
package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/warden/audit"
	warden_errors "github.com/dev-mohitbeniwal/warden/errors"
	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
	warden_neo4j "github.com/dev-mohitbeniwal/warden/model/neo4j"
)

// GrantDAO manages the user-side grant edges and the per-user reads the
// resolver walks on every decision.
type GrantDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewGrantDAO(driver neo4j.Driver, auditService audit.Service) *GrantDAO {
	return &GrantDAO{Driver: driver, AuditService: auditService}
}

// AssignRolesToUser replaces the user's direct role set in a single
// transaction. Every role ID must exist or nothing is written.
func (dao *GrantDAO) AssignRolesToUser(ctx context.Context, userID string, roleIDs []string, grantedBy string, expiresAt *time.Time) error {
	return dao.replaceUserGrants(ctx, userID, roleIDs, grantedBy, expiresAt,
		warden_neo4j.LabelRole, warden_neo4j.RelHasRole, "ASSIGN_ROLES_TO_USER")
}

// AssignPermissionsToUser replaces the user's direct permission set in a
// single transaction.
func (dao *GrantDAO) AssignPermissionsToUser(ctx context.Context, userID string, permissionIDs []string, grantedBy string, expiresAt *time.Time) error {
	return dao.replaceUserGrants(ctx, userID, permissionIDs, grantedBy, expiresAt,
		warden_neo4j.LabelPermission, warden_neo4j.RelHasPermission, "ASSIGN_PERMISSIONS_TO_USER")
}

func (dao *GrantDAO) replaceUserGrants(ctx context.Context, userID string, targetIDs []string, grantedBy string, expiresAt *time.Time, targetLabel, relType, auditAction string) error {
	start := time.Now()
	logger.Info("Replacing user grants",
		zap.String("userID", userID),
		zap.String("relType", relType),
		zap.Int("targetCount", len(targetIDs)))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
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

		// Users live in an external identity system, so their nodes are
		// merged on demand.
		query := `
		MERGE (u:` + warden_neo4j.LabelUser + ` {id: $userID})
		WITH u
		OPTIONAL MATCH (u)-[old:` + relType + `]->(:` + targetLabel + `)
		DELETE old
		WITH DISTINCT u
		UNWIND $targetIDs AS targetID
		MATCH (t:` + targetLabel + ` {id: targetID})
		MERGE (u)-[e:` + relType + `]->(t)
		SET e += $edgeProps
		`
		params := map[string]interface{}{
			"userID":    userID,
			"targetIDs": targetIDs,
			"edgeProps": grantEdgeParams(grantedBy, expiresAt),
		}

		logger.Debug("Replace user grants query",
			zap.String("query", query),
			zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute replace user grants query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}
		return result.Consume()
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to replace user grants",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("User grants replaced successfully",
		zap.String("userID", userID),
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
		ResourceID:    userID,
		AccessGranted: true,
		ChangeDetails: changeDetails,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *GrantDAO) UserRoles(ctx context.Context, userID string) ([]model.RoleGrant, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + warden_neo4j.LabelUser + ` {id: $userID})-[e:` + warden_neo4j.RelHasRole + `]->(r:` + warden_neo4j.LabelRole + `)
    RETURN r, e
    ORDER BY r.codename
    `
	result, err := session.Run(query, map[string]interface{}{"userID": userID})
	if err != nil {
		logger.Error("Failed to execute user roles query",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", time.Since(start)))
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

func (dao *GrantDAO) UserPermissions(ctx context.Context, userID string) ([]model.PermissionGrant, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + warden_neo4j.LabelUser + ` {id: $userID})-[e:` + warden_neo4j.RelHasPermission + `]->(p:` + warden_neo4j.LabelPermission + `)
    RETURN p, e
    ORDER BY p.codename
    `
	result, err := session.Run(query, map[string]interface{}{"userID": userID})
	if err != nil {
		logger.Error("Failed to execute user permissions query",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", time.Since(start)))
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

func (dao *GrantDAO) UserGroups(ctx context.Context, userID string) ([]model.GroupMembership, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + warden_neo4j.LabelUser + ` {id: $userID})-[e:` + warden_neo4j.RelMemberOf + `]->(g:` + warden_neo4j.LabelGroup + `)
    RETURN g, e
    ORDER BY g.name
    `
	result, err := session.Run(query, map[string]interface{}{"userID": userID})
	if err != nil {
		logger.Error("Failed to execute user groups query",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", time.Since(start)))
		return nil, warden_errors.ErrDatabaseOperation
	}

	var memberships []model.GroupMembership
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		rel := result.Record().Values[1].(neo4j.Relationship)

		group, err := mapNodeToGroup(node)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		grant, err := mapEdgeToGrant(rel)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		memberships = append(memberships, model.GroupMembership{Group: *group, Grant: grant})
	}

	return memberships, nil
}
