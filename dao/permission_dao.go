// dao/permission_dao.go
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

type PermissionDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewPermissionDAO(driver neo4j.Driver, auditService audit.Service) *PermissionDAO {
	dao := &PermissionDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraints(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraints for Permission", zap.Error(err))
	}
	return dao
}

// EnsureUniqueConstraints guarantees permission IDs and codenames are
// unique across the graph. Codename uniqueness is global, not per tenant.
func (dao *PermissionDAO) EnsureUniqueConstraints(ctx context.Context) error {
	logger.Info("Ensuring unique constraints on Permission")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		queries := []string{
			`CREATE CONSTRAINT unique_permission_id IF NOT EXISTS
			 FOR (p:` + warden_neo4j.LabelPermission + `) REQUIRE p.id IS UNIQUE`,
			`CREATE CONSTRAINT unique_permission_codename IF NOT EXISTS
			 FOR (p:` + warden_neo4j.LabelPermission + `) REQUIRE p.codename IS UNIQUE`,
		}
		for _, query := range queries {
			if _, err := transaction.Run(query, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraints on Permission", zap.Error(err))
		return err
	}

	return nil
}

func (dao *PermissionDAO) CreatePermission(ctx context.Context, permission model.Permission) (string, error) {
	start := time.Now()
	logger.Info("Creating new permission", zap.String("codename", permission.Codename))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if permission.ID == "" {
		permission.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		checkQuery := `
		MATCH (p:` + warden_neo4j.LabelPermission + ` {codename: $codename})
		RETURN p.id
		`
		checkResult, err := transaction.Run(checkQuery, map[string]interface{}{
			"codename": permission.Codename,
		})
		if err != nil {
			logger.Error("Failed to check permission codename", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}
		if checkResult.Next() {
			return nil, warden_errors.ErrPermissionConflict
		}

		query := `
		CREATE (p:` + warden_neo4j.LabelPermission + ` {
			id: $id,
			name: $name,
			codename: $codename,
			description: $description,
			permissionType: $permissionType,
			modelName: $modelName,
			isActive: true,
			createdAt: $createdAt,
			updatedAt: $updatedAt
		})
		RETURN p.id as id
		`

		now := time.Now().Format(time.RFC3339)
		params := map[string]interface{}{
			"id":             permission.ID,
			"name":           permission.Name,
			"codename":       permission.Codename,
			"description":    permission.Description,
			"permissionType": permission.PermissionType,
			"modelName":      permission.ModelName,
			"createdAt":      now,
			"updatedAt":      now,
		}

		logger.Debug("Create permission query",
			zap.String("query", query),
			zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute create permission query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, warden_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create permission",
			zap.Error(err),
			zap.String("codename", permission.Codename),
			zap.Duration("duration", duration))
		return "", err
	}

	permissionID := fmt.Sprintf("%v", result)
	logger.Info("Permission created successfully",
		zap.String("permissionID", permissionID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "CREATE_PERMISSION",
		ResourceID:    permissionID,
		Codename:      permission.Codename,
		AccessGranted: true,
		ChangeDetails: createPermissionChangeDetails(nil, &permission),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return permissionID, nil
}

func (dao *PermissionDAO) UpdatePermission(ctx context.Context, permission model.Permission) (*model.Permission, error) {
	start := time.Now()
	logger.Info("Updating permission", zap.String("permissionID", permission.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldPermission, err := dao.GetPermission(ctx, permission.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}

	var updatedPermission *model.Permission
	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
		MATCH (p:` + warden_neo4j.LabelPermission + ` {id: $id})
		SET p += $props
		RETURN p
		`

		params := map[string]interface{}{
			"id": permission.ID,
			"props": map[string]interface{}{
				warden_neo4j.AttrName:      permission.Name,
				warden_neo4j.AttrCodename:  permission.Codename,
				"description":              permission.Description,
				"permissionType":           permission.PermissionType,
				"modelName":                permission.ModelName,
				warden_neo4j.AttrIsActive:  permission.IsActive,
				warden_neo4j.AttrUpdatedAt: time.Now().Format(time.RFC3339),
			},
		}

		logger.Debug("Update permission query", zap.String("query", query), zap.Any("params", params))

		result, err := transaction.Run(query, params)
		if err != nil {
			logger.Error("Failed to execute update permission query", zap.Error(err))
			return nil, warden_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			updatedPermission, err = mapNodeToPermission(node)
			if err != nil {
				return nil, fmt.Errorf("failed to map permission node to struct: %w", err)
			}
			return nil, nil
		}

		return nil, warden_errors.ErrPermissionNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update permission",
			zap.Error(err),
			zap.String("permissionID", permission.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Info("Permission updated successfully",
		zap.String("permissionID", permission.ID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "UPDATE_PERMISSION",
		ResourceID:    permission.ID,
		Codename:      permission.Codename,
		AccessGranted: true,
		ChangeDetails: createPermissionChangeDetails(oldPermission, updatedPermission),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedPermission, nil
}

// DeactivatePermission soft-deletes a permission. Every grant pointing at it
// stays in the graph but stops contributing to resolution.
func (dao *PermissionDAO) DeactivatePermission(ctx context.Context, permissionID string) error {
	start := time.Now()
	logger.Info("Deactivating permission", zap.String("permissionID", permissionID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
		MATCH (p:` + warden_neo4j.LabelPermission + ` {id: $id})
		SET p.isActive = false, p.updatedAt = $updatedAt
		RETURN p.id
		`
		result, err := transaction.Run(query, map[string]interface{}{
			"id":        permissionID,
			"updatedAt": time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, warden_errors.ErrDatabaseOperation
		}

		if !result.Next() {
			return nil, warden_errors.ErrPermissionNotFound
		}

		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to deactivate permission",
			zap.Error(err),
			zap.String("permissionID", permissionID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Permission deactivated successfully",
		zap.String("permissionID", permissionID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DEACTIVATE_PERMISSION",
		ResourceID:    permissionID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *PermissionDAO) GetPermission(ctx context.Context, permissionID string) (*model.Permission, error) {
	start := time.Now()
	logger.Info("Retrieving permission", zap.String("permissionID", permissionID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
	MATCH (p:` + warden_neo4j.LabelPermission + ` {id: $id})
	RETURN p
	`
	result, err := session.Run(query, map[string]interface{}{"id": permissionID})
	if err != nil {
		logger.Error("Failed to execute get permission query",
			zap.Error(err),
			zap.String("permissionID", permissionID),
			zap.Duration("duration", time.Since(start)))
		return nil, warden_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		permission, err := mapNodeToPermission(node)
		if err != nil {
			logger.Error("Failed to map permission node to struct",
				zap.Error(err),
				zap.String("permissionID", permissionID))
			return nil, warden_errors.ErrInternalServer
		}
		return permission, nil
	}

	logger.Warn("Permission not found",
		zap.String("permissionID", permissionID),
		zap.Duration("duration", time.Since(start)))
	return nil, warden_errors.ErrPermissionNotFound
}

func (dao *PermissionDAO) PermissionByCodename(ctx context.Context, codename string) (*model.Permission, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
	MATCH (p:` + warden_neo4j.LabelPermission + ` {codename: $codename})
	RETURN p
	`
	result, err := session.Run(query, map[string]interface{}{"codename": codename})
	if err != nil {
		logger.Error("Failed to execute permission by codename query",
			zap.Error(err),
			zap.String("codename", codename))
		return nil, warden_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		permission, err := mapNodeToPermission(node)
		if err != nil {
			return nil, warden_errors.ErrInternalServer
		}
		return permission, nil
	}

	return nil, warden_errors.ErrPermissionNotFound
}

func (dao *PermissionDAO) ListPermissions(ctx context.Context, modelName string, limit, offset int) ([]*model.Permission, error) {
	start := time.Now()
	logger.Info("Listing permissions",
		zap.String("modelName", modelName),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
	MATCH (p:` + warden_neo4j.LabelPermission + `)
	`
	params := map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	}
	if modelName != "" {
		query += `
		WHERE p.modelName = $modelName
		`
		params["modelName"] = modelName
	}
	query += `
	RETURN p
	ORDER BY p.codename
	SKIP $offset
	LIMIT $limit
	`

	result, err := session.Run(query, params)
	if err != nil {
		logger.Error("Failed to execute list permissions query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, warden_errors.ErrDatabaseOperation
	}

	var permissions []*model.Permission
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		permission, err := mapNodeToPermission(node)
		if err != nil {
			logger.Error("Failed to map permission node to struct", zap.Error(err))
			return nil, warden_errors.ErrInternalServer
		}
		permissions = append(permissions, permission)
	}

	logger.Info("Permissions listed successfully",
		zap.Int("count", len(permissions)),
		zap.Duration("duration", time.Since(start)))

	return permissions, nil
}

// Helper function to create change details for audit log
func createPermissionChangeDetails(oldPermission, newPermission *model.Permission) json.RawMessage {
	changes := make(map[string]interface{})
	if oldPermission == nil {
		changes["action"] = "created"
	} else if newPermission == nil {
		changes["action"] = "deleted"
	} else {
		changes["action"] = "updated"
		if oldPermission.Name != newPermission.Name {
			changes["name"] = map[string]string{"old": oldPermission.Name, "new": newPermission.Name}
		}
		if oldPermission.Codename != newPermission.Codename {
			changes["codename"] = map[string]string{"old": oldPermission.Codename, "new": newPermission.Codename}
		}
		if oldPermission.Description != newPermission.Description {
			changes["description"] = map[string]string{"old": oldPermission.Description, "new": newPermission.Description}
		}
		if oldPermission.IsActive != newPermission.IsActive {
			changes["isActive"] = map[string]bool{"old": oldPermission.IsActive, "new": newPermission.IsActive}
		}
	}
	changeDetails, _ := json.Marshal(changes)
	return changeDetails
}
