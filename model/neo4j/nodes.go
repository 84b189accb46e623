// model/neo4j/nodes.go
package warden_neo4j

// Node Labels
const (
	// LabelOrganization represents a tenant in the system
	LabelOrganization = "Organization"

	// LabelUser represents a user in the system
	LabelUser = "User"

	// LabelRole represents a role that can be assigned to users or groups
	LabelRole = "Role"

	// LabelPermission represents a single permission definition
	LabelPermission = "Permission"

	// LabelGroup represents a user group within an organization
	LabelGroup = "Group"
)

// Common node property keys
const (
	AttrID        = "id"
	AttrName      = "name"
	AttrCodename  = "codename"
	AttrIsActive  = "isActive"
	AttrCreatedAt = "createdAt"
	AttrUpdatedAt = "updatedAt"
)
