package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulesWithPermissions(t *testing.T) {
	t.Run("modules are ordered by order ascending", func(t *testing.T) {
		modules := ModulesWithPermissions()
		require.Len(t, modules, 4)
		ids := []string{modules[0].ID, modules[1].ID, modules[2].ID, modules[3].ID}
		assert.Equal(t, []string{ModuleDashboard, ModuleUsers, ModuleRoles, ModuleProducts}, ids)
		for i := 1; i < len(modules); i++ {
			assert.Less(t, modules[i-1].Order, modules[i].Order)
		}
	})

	t.Run("permissions within a module are ordered", func(t *testing.T) {
		for _, m := range ModulesWithPermissions() {
			for i := 1; i < len(m.Permissions); i++ {
				assert.Less(t, m.Permissions[i-1].Order, m.Permissions[i].Order, m.ID)
			}
			for _, p := range m.Permissions {
				assert.Equal(t, m.ID, p.ModuleID)
			}
		}
	})

	t.Run("returned copy does not alias the definition", func(t *testing.T) {
		first := ModulesWithPermissions()
		first[1].Permissions[0].Required = false
		first[1].Name = "changed"

		second := ModulesWithPermissions()
		assert.True(t, second[1].Permissions[0].Required)
		assert.Equal(t, "Users", second[1].Name)
	})

	t.Run("permission ids are globally unique", func(t *testing.T) {
		seen := map[string]bool{}
		for _, id := range AllPermissionIDs() {
			assert.False(t, seen[id], id)
			seen[id] = true
		}
		assert.Len(t, seen, 13)
	})
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()

	t.Run("module existence", func(t *testing.T) {
		ok, err := c.ModuleExists(ctx, ModuleUsers)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = c.ModuleExists(ctx, "Modules.Unknown")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("permission existence searches every module", func(t *testing.T) {
		ok, err := c.PermissionExists(ctx, ProductsDelete)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = c.PermissionExists(ctx, "Permissions.Users.Approve")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("required permissions per module", func(t *testing.T) {
		req, err := c.RequiredPermissions(ctx, ModuleUsers)
		require.NoError(t, err)
		assert.Equal(t, []string{UsersView}, req)

		req, err = c.RequiredPermissions(ctx, ModuleDashboard)
		require.NoError(t, err)
		assert.Empty(t, req)

		req, err = c.RequiredPermissions(ctx, "Modules.Unknown")
		require.NoError(t, err)
		assert.Empty(t, req)
	})
}

func TestPolicies(t *testing.T) {
	policies := NewPolicies(ModulesWithPermissions())

	t.Run("one policy per catalog permission", func(t *testing.T) {
		assert.Equal(t, len(AllPermissionIDs()), policies.Len())
		for _, id := range AllPermissionIDs() {
			req, ok := policies.Lookup(id)
			require.True(t, ok, id)
			assert.Equal(t, id, req.Permission)
			assert.True(t, req.Authenticated)
		}
	})

	t.Run("unknown permission is not registered", func(t *testing.T) {
		_, ok := policies.Lookup("Permissions.Nope.View")
		assert.False(t, ok)
		assert.Panics(t, func() { policies.MustLookup("Permissions.Nope.View") })
	})
}
