// util/validation_util_test.go
package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/warden/model"
)

func TestValidatePermission(t *testing.T) {
	v := NewValidationUtil()

	valid := model.Permission{
		Name:           "Can read teams",
		Codename:       "teams:read",
		PermissionType: model.PermissionTypeRead,
		ModelName:      "teams",
	}
	assert.NoError(t, v.ValidatePermission(valid))

	cases := []struct {
		name   string
		mutate func(p *model.Permission)
	}{
		{"empty name", func(p *model.Permission) { p.Name = "" }},
		{"empty codename", func(p *model.Permission) { p.Codename = "" }},
		{"codename without separator", func(p *model.Permission) { p.Codename = "teamsread" }},
		{"empty model name", func(p *model.Permission) { p.ModelName = "" }},
		{"unknown type", func(p *model.Permission) { p.PermissionType = "grant" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			assert.Error(t, v.ValidatePermission(p))
		})
	}
}

func TestValidateRole(t *testing.T) {
	v := NewValidationUtil()

	assert.NoError(t, v.ValidateRole(model.Role{
		Name:     "SaaS Administrator",
		Codename: "saas-administrator",
		RoleType: model.RoleTypeSystem,
	}))
	assert.NoError(t, v.ValidateRole(model.Role{
		Name:           "Editor",
		Codename:       "editor",
		RoleType:       model.RoleTypeOrganization,
		OrganizationID: "org-a",
	}))

	// System roles must not claim an organization; org roles must have one.
	assert.Error(t, v.ValidateRole(model.Role{
		Name:           "Bad system",
		Codename:       "bad",
		RoleType:       model.RoleTypeSystem,
		OrganizationID: "org-a",
	}))
	assert.Error(t, v.ValidateRole(model.Role{
		Name:     "Orphan",
		Codename: "orphan",
		RoleType: model.RoleTypeOrganization,
	}))
	assert.Error(t, v.ValidateRole(model.Role{
		Name:     "Mystery",
		Codename: "mystery",
		RoleType: "mystery",
	}))
}

func TestValidateGroup(t *testing.T) {
	v := NewValidationUtil()

	assert.NoError(t, v.ValidateGroup(model.UserGroup{Name: "engineering", OrganizationID: "org-a"}))
	assert.Error(t, v.ValidateGroup(model.UserGroup{OrganizationID: "org-a"}))
	assert.Error(t, v.ValidateGroup(model.UserGroup{Name: "engineering"}))
}

func TestValidateExpiry(t *testing.T) {
	v := NewValidationUtil()

	assert.NoError(t, v.ValidateExpiry(nil))

	future := time.Now().Add(time.Hour)
	assert.NoError(t, v.ValidateExpiry(&future))

	past := time.Now().Add(-time.Minute)
	assert.Error(t, v.ValidateExpiry(&past))
}
