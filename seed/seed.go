// seed/seed.go

package seed

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/warden/logging"
	"github.com/dev-mohitbeniwal/warden/model"
	warden_neo4j "github.com/dev-mohitbeniwal/warden/model/neo4j"
	"github.com/dev-mohitbeniwal/warden/rbac"
)

// seedModels are the resource models the default catalog covers. Every model
// gets one permission per CRUD+list action.
var seedModels = []string{
	"accounts",
	"organizations",
	"users",
	"teams",
	"roles",
	"permissions",
	"groups",
	"subscriptions",
}

var seedActions = []string{
	rbac.ActionCreate,
	rbac.ActionRead,
	rbac.ActionUpdate,
	rbac.ActionDelete,
	rbac.ActionList,
}

// extraPermissions are catalog entries that do not follow the model/action
// matrix.
var extraPermissions = []model.Permission{
	{
		Name:           "Can access admin site",
		Codename:       "admin:access",
		Description:    "Access to the administrative surface",
		PermissionType: model.PermissionTypeCustom,
		ModelName:      "admin",
	},
	{
		Name:           "Can manage admin site",
		Codename:       "admin:manage",
		Description:    "Full control over the administrative surface",
		PermissionType: model.PermissionTypeCustom,
		ModelName:      "admin",
	},
}

type systemRole struct {
	Name        string
	Codename    string
	Description string
	// Codenames selects the permissions bound to the role. A nil selector
	// means every permission in the catalog.
	Codenames func(catalog []string) []string
}

var systemRoles = []systemRole{
	{
		Name:        "SaaS Administrator",
		Codename:    "saas-administrator",
		Description: "Full control over every resource in the platform",
		Codenames:   nil,
	},
	{
		Name:        "SaaS Account Manager",
		Codename:    "saas-account-manager",
		Description: "Manages customer accounts and their organizations",
		Codenames:   forModels("accounts", "organizations"),
	},
	{
		Name:        "Organization Administrator",
		Codename:    "organization-administrator",
		Description: "Manages users, teams, roles, groups and subscriptions within an organization",
		Codenames:   forModels("users", "teams", "roles", "groups", "subscriptions"),
	},
	{
		Name:        "Team Manager",
		Codename:    "team-manager",
		Description: "Manages teams and their members",
		Codenames: func([]string) []string {
			return []string{
				rbac.Codename("teams", rbac.ActionRead),
				rbac.Codename("teams", rbac.ActionUpdate),
				rbac.Codename("users", rbac.ActionRead),
				rbac.Codename("users", rbac.ActionUpdate),
			}
		},
	},
	{
		Name:        "User",
		Codename:    "user",
		Description: "Read-only access to every resource",
		Codenames:   forActions(rbac.ActionRead),
	},
}

func forModels(models ...string) func([]string) []string {
	return func([]string) []string {
		var codenames []string
		for _, m := range models {
			for _, action := range seedActions {
				codenames = append(codenames, rbac.Codename(m, action))
			}
		}
		return codenames
	}
}

func forActions(actions ...string) func([]string) []string {
	return func([]string) []string {
		var codenames []string
		for _, m := range seedModels {
			for _, action := range actions {
				codenames = append(codenames, rbac.Codename(m, action))
			}
		}
		return codenames
	}
}

// Populate merges the default permission catalog and the system roles into
// the graph. Re-running is a no-op for entries that already exist; ids and
// timestamps are only written on first creation.
func Populate(driver neo4j.Driver) error {
	start := time.Now()

	session := driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	permissions := defaultCatalog()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		if err := mergePermissions(tx, permissions); err != nil {
			return nil, err
		}

		catalog := make([]string, 0, len(permissions))
		for _, p := range permissions {
			catalog = append(catalog, p.Codename)
		}

		for _, role := range systemRoles {
			codenames := catalog
			if role.Codenames != nil {
				codenames = role.Codenames(catalog)
			}
			if err := mergeSystemRole(tx, role, codenames); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to populate default catalog: %w", err)
	}

	logger.Info("Default catalog populated",
		zap.Int("permissions", len(permissions)),
		zap.Int("systemRoles", len(systemRoles)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func defaultCatalog() []model.Permission {
	var permissions []model.Permission
	for _, m := range seedModels {
		for _, action := range seedActions {
			permissions = append(permissions, model.Permission{
				Name:           fmt.Sprintf("Can %s %s", action, m),
				Codename:       rbac.Codename(m, action),
				PermissionType: action,
				ModelName:      m,
			})
		}
	}
	permissions = append(permissions, extraPermissions...)
	return permissions
}

func mergePermissions(tx neo4j.Transaction, permissions []model.Permission) error {
	query := `
		UNWIND $permissions AS row
		MERGE (p:` + warden_neo4j.LabelPermission + ` {codename: row.codename})
		ON CREATE SET p.id = row.id,
		              p.name = row.name,
		              p.description = row.description,
		              p.permissionType = row.permissionType,
		              p.modelName = row.modelName,
		              p.isActive = true,
		              p.createdAt = row.now,
		              p.updatedAt = row.now
	`

	now := time.Now().Format(time.RFC3339)
	rows := make([]map[string]interface{}, 0, len(permissions))
	for _, p := range permissions {
		rows = append(rows, map[string]interface{}{
			"id":             uuid.New().String(),
			"name":           p.Name,
			"codename":       p.Codename,
			"description":    p.Description,
			"permissionType": p.PermissionType,
			"modelName":      p.ModelName,
			"now":            now,
		})
	}

	result, err := tx.Run(query, map[string]interface{}{"permissions": rows})
	if err != nil {
		return fmt.Errorf("failed to merge permission catalog: %w", err)
	}
	_, err = result.Consume()
	return err
}

func mergeSystemRole(tx neo4j.Transaction, role systemRole, codenames []string) error {
	now := time.Now().Format(time.RFC3339)

	query := `
		MERGE (r:` + warden_neo4j.LabelRole + ` {codename: $codename, roleType: $roleType})
		ON CREATE SET r.id = $id,
		              r.name = $name,
		              r.description = $description,
		              r.isActive = true,
		              r.createdAt = $now,
		              r.updatedAt = $now
		WITH r
		UNWIND $permissionCodenames AS codename
		MATCH (p:` + warden_neo4j.LabelPermission + ` {codename: codename})
		MERGE (r)-[e:` + warden_neo4j.RelRoleGrants + `]->(p)
		ON CREATE SET e.grantedBy = $grantedBy,
		              e.grantedAt = $now
	`

	result, err := tx.Run(query, map[string]interface{}{
		"id":                  uuid.New().String(),
		"name":                role.Name,
		"codename":            role.Codename,
		"description":         role.Description,
		"roleType":            model.RoleTypeSystem,
		"permissionCodenames": codenames,
		"grantedBy":           "system",
		"now":                 now,
	})
	if err != nil {
		return fmt.Errorf("failed to merge system role %s: %w", role.Codename, err)
	}
	_, err = result.Consume()
	return err
}
