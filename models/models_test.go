package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	role := NewRole("Clerk", "Front desk")

	_, err := uuid.Parse(role.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Clerk", role.Name)
	assert.True(t, role.Active)
	assert.Equal(t, role.CreatedAt, role.UpdatedAt)
	assert.Equal(t, "roles", role.TableName())
}

func TestNewUser(t *testing.T) {
	user := NewUser("ana@example.com", "Ana", "hash", "role-1")

	assert.Equal(t, "ana@example.com", user.UserName)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.True(t, user.Active)
	assert.False(t, user.EmailConfirmed)
	assert.Equal(t, "users", user.TableName())
}

func TestUser_JSONHidesPasswordHash(t *testing.T) {
	data, err := json.Marshal(NewUser("ana@example.com", "Ana", "secret-hash", "role-1"))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret-hash")
}

func TestModuleSelection(t *testing.T) {
	selection := []ModuleSelection{
		{ModuleID: "Modules.Users", PermissionIDs: []string{"a", "b"}},
		{ModuleID: "Modules.Roles"},
		{ModuleID: "Modules.Products", PermissionIDs: []string{"c"}},
	}

	assert.True(t, selection[0].Selected())
	assert.False(t, selection[1].Selected())
	assert.Equal(t, []string{"a", "b", "c"}, FlattenSelection(selection))
	assert.Empty(t, FlattenSelection(nil))
}

func TestModuleSelection_JSONShape(t *testing.T) {
	var s ModuleSelection
	require.NoError(t, json.Unmarshal([]byte(`{"id":"Modules.Users","permissionsIds":["x"]}`), &s))

	assert.Equal(t, "Modules.Users", s.ModuleID)
	assert.Equal(t, []string{"x"}, s.PermissionIDs)
}

func TestModule_RequiredPermissionIDs(t *testing.T) {
	module := Module{
		ID: "Modules.Users",
		Permissions: []Permission{
			{ID: "view", Required: true},
			{ID: "edit"},
			{ID: "audit", Required: true},
		},
	}

	assert.Equal(t, []string{"view", "audit"}, module.RequiredPermissionIDs())
	assert.Nil(t, Module{}.RequiredPermissionIDs())
}
