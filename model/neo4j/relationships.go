// model/neo4j/relationships.go
package warden_neo4j

// Relationship Types. Grant edges carry grantedBy, grantedAt, expiresAt and
// isActive properties; ROLE_GRANTS carries grantedBy and grantedAt only.
const (
	// RelHasRole represents a role assignment (user→role or group→role)
	RelHasRole = "HAS_ROLE"

	// RelHasPermission represents a direct permission grant
	// (user→permission or group→permission)
	RelHasPermission = "HAS_PERMISSION"

	// RelRoleGrants represents the permissions bound to a role
	// (role→permission)
	RelRoleGrants = "ROLE_GRANTS"

	// RelMemberOf represents group membership (user→group)
	RelMemberOf = "MEMBER_OF"

	// RelPartOf represents ownership of a role or group by its organization
	RelPartOf = "PART_OF"
)

// Grant edge property keys
const (
	EdgeGrantedBy = "grantedBy"
	EdgeGrantedAt = "grantedAt"
	EdgeExpiresAt = "expiresAt"
	EdgeIsActive  = "isActive"
)
