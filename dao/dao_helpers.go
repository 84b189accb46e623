// dao/dao_helpers.go
package dao

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dev-mohitbeniwal/warden/model"
	warden_neo4j "github.com/dev-mohitbeniwal/warden/model/neo4j"
	helper_util "github.com/dev-mohitbeniwal/warden/util/helper"
)

// requestingUser pulls the acting user out of the request context for audit
// entries. Background jobs and seeds have no acting user.
func requestingUser(ctx context.Context) string {
	if userID, ok := ctx.Value("requestingUserID").(string); ok {
		return userID
	}
	return "system"
}

func mapNodeToPermission(node neo4j.Node) (*model.Permission, error) {
	props := node.Props
	permission := &model.Permission{}

	permission.ID = props[warden_neo4j.AttrID].(string)
	permission.Name = props[warden_neo4j.AttrName].(string)
	permission.Codename = props[warden_neo4j.AttrCodename].(string)
	if description, ok := props["description"].(string); ok {
		permission.Description = description
	}
	permission.PermissionType = props["permissionType"].(string)
	permission.ModelName = props["modelName"].(string)
	permission.IsActive = props[warden_neo4j.AttrIsActive].(bool)

	var err error
	if permission.CreatedAt, err = helper_util.ParseTime(props[warden_neo4j.AttrCreatedAt].(string)); err != nil {
		return nil, err
	}
	if permission.UpdatedAt, err = helper_util.ParseTime(props[warden_neo4j.AttrUpdatedAt].(string)); err != nil {
		return nil, err
	}

	return permission, nil
}

func mapNodeToRole(node neo4j.Node) (*model.Role, error) {
	props := node.Props
	role := &model.Role{}

	role.ID = props[warden_neo4j.AttrID].(string)
	role.Name = props[warden_neo4j.AttrName].(string)
	role.Codename = props[warden_neo4j.AttrCodename].(string)
	if description, ok := props["description"].(string); ok {
		role.Description = description
	}
	role.RoleType = props["roleType"].(string)
	if organizationID, ok := props["organizationID"].(string); ok {
		role.OrganizationID = organizationID
	}
	role.IsActive = props[warden_neo4j.AttrIsActive].(bool)
	role.IsSystemRole = role.RoleType == model.RoleTypeSystem

	var err error
	if role.CreatedAt, err = helper_util.ParseTime(props[warden_neo4j.AttrCreatedAt].(string)); err != nil {
		return nil, err
	}
	if role.UpdatedAt, err = helper_util.ParseTime(props[warden_neo4j.AttrUpdatedAt].(string)); err != nil {
		return nil, err
	}

	return role, nil
}

func mapNodeToGroup(node neo4j.Node) (*model.UserGroup, error) {
	props := node.Props
	group := &model.UserGroup{}

	group.ID = props[warden_neo4j.AttrID].(string)
	group.Name = props[warden_neo4j.AttrName].(string)
	if description, ok := props["description"].(string); ok {
		group.Description = description
	}
	group.OrganizationID = props["organizationID"].(string)
	if createdBy, ok := props["createdBy"].(string); ok {
		group.CreatedBy = createdBy
	}
	group.IsActive = props[warden_neo4j.AttrIsActive].(bool)

	var err error
	if group.CreatedAt, err = helper_util.ParseTime(props[warden_neo4j.AttrCreatedAt].(string)); err != nil {
		return nil, err
	}
	if group.UpdatedAt, err = helper_util.ParseTime(props[warden_neo4j.AttrUpdatedAt].(string)); err != nil {
		return nil, err
	}

	return group, nil
}

// mapEdgeToGrant reads the grant metadata off a relationship.
func mapEdgeToGrant(rel neo4j.Relationship) (model.Grant, error) {
	props := rel.Props
	grant := model.Grant{}

	if grantedBy, ok := props[warden_neo4j.EdgeGrantedBy].(string); ok {
		grant.GrantedBy = grantedBy
	}
	if grantedAt, ok := props[warden_neo4j.EdgeGrantedAt].(string); ok {
		parsed, err := helper_util.ParseTime(grantedAt)
		if err != nil {
			return model.Grant{}, err
		}
		grant.GrantedAt = parsed
	}
	expiresAt, err := helper_util.ParseNullableTime(props[warden_neo4j.EdgeExpiresAt])
	if err != nil {
		return model.Grant{}, err
	}
	grant.ExpiresAt = expiresAt
	if isActive, ok := props[warden_neo4j.EdgeIsActive].(bool); ok {
		grant.IsActive = isActive
	}

	return grant, nil
}

// grantEdgeParams builds the edge property map written on new grant edges.
func grantEdgeParams(grantedBy string, expiresAt *time.Time) map[string]interface{} {
	props := map[string]interface{}{
		warden_neo4j.EdgeGrantedBy: grantedBy,
		warden_neo4j.EdgeGrantedAt: time.Now().Format(time.RFC3339),
		warden_neo4j.EdgeIsActive:  true,
	}
	if expiresAt != nil {
		props[warden_neo4j.EdgeExpiresAt] = expiresAt.Format(time.RFC3339)
	}
	return props
}
