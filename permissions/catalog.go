// Package permissions defines the static catalog of modules and permissions
// and the startup policy table derived from it.
package permissions

import (
	"context"
	"sort"

	"github.com/upb/inventory-admin/models"
)

// Module identifiers
const (
	ModuleDashboard = "Modules.Dashboard"
	ModuleUsers     = "Modules.Users"
	ModuleRoles     = "Modules.Roles"
	ModuleProducts  = "Modules.Products"
)

// Permission identifiers
const (
	DashboardView = "Permissions.Dashboard.View"

	UsersView   = "Permissions.Users.View"
	UsersCreate = "Permissions.Users.Create"
	UsersEdit   = "Permissions.Users.Edit"
	UsersDelete = "Permissions.Users.Delete"

	RolesView   = "Permissions.Roles.View"
	RolesCreate = "Permissions.Roles.Create"
	RolesEdit   = "Permissions.Roles.Edit"
	RolesDelete = "Permissions.Roles.Delete"

	ProductsView   = "Permissions.Products.View"
	ProductsCreate = "Permissions.Products.Create"
	ProductsEdit   = "Permissions.Products.Edit"
	ProductsDelete = "Permissions.Products.Delete"
)

var definition = []models.Module{
	{
		ID:    ModuleDashboard,
		Name:  "Dashboard",
		Order: 1,
		Permissions: []models.Permission{
			{ID: DashboardView, ModuleID: ModuleDashboard, Name: "Dashboard", Order: 1},
		},
	},
	crudModule(ModuleUsers, "Users", 2, UsersView, UsersCreate, UsersEdit, UsersDelete),
	crudModule(ModuleRoles, "Roles", 3, RolesView, RolesCreate, RolesEdit, RolesDelete),
	crudModule(ModuleProducts, "Products", 4, ProductsView, ProductsCreate, ProductsEdit, ProductsDelete),
}

// crudModule builds a module whose View permission is required
func crudModule(id, name string, order int, view, create, edit, del string) models.Module {
	return models.Module{
		ID:    id,
		Name:  name,
		Order: order,
		Permissions: []models.Permission{
			{ID: view, ModuleID: id, Name: "View", Order: 1, Required: true},
			{ID: create, ModuleID: id, Name: "Create", Order: 2},
			{ID: edit, ModuleID: id, Name: "Edit", Order: 3},
			{ID: del, ModuleID: id, Name: "Delete", Order: 4},
		},
	}
}

// ModulesWithPermissions returns a copy of the catalog ordered by module order,
// with each module's permissions ordered by permission order.
func ModulesWithPermissions() []models.Module {
	modules := make([]models.Module, len(definition))
	for i, m := range definition {
		m.Permissions = append([]models.Permission(nil), m.Permissions...)
		sort.SliceStable(m.Permissions, func(a, b int) bool {
			return m.Permissions[a].Order < m.Permissions[b].Order
		})
		modules[i] = m
	}
	sort.SliceStable(modules, func(a, b int) bool {
		return modules[a].Order < modules[b].Order
	})
	return modules
}

// AllPermissionIDs returns every permission id in catalog order
func AllPermissionIDs() []string {
	var ids []string
	for _, m := range ModulesWithPermissions() {
		for _, p := range m.Permissions {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Catalog answers existence queries against the static definition
type Catalog struct {
	modules     map[string]models.Module
	permissions map[string]models.Permission
}

// NewCatalog indexes the static definition
func NewCatalog() *Catalog {
	c := &Catalog{
		modules:     make(map[string]models.Module),
		permissions: make(map[string]models.Permission),
	}
	for _, m := range ModulesWithPermissions() {
		c.modules[m.ID] = m
		for _, p := range m.Permissions {
			c.permissions[p.ID] = p
		}
	}
	return c
}

// ListModules returns the ordered catalog
func (c *Catalog) ListModules(ctx context.Context) ([]models.Module, error) {
	return ModulesWithPermissions(), nil
}

// ModuleExists reports whether a module with the given id is defined
func (c *Catalog) ModuleExists(ctx context.Context, id string) (bool, error) {
	_, ok := c.modules[id]
	return ok, nil
}

// PermissionExists reports whether a permission with the given id is defined in any module
func (c *Catalog) PermissionExists(ctx context.Context, id string) (bool, error) {
	_, ok := c.permissions[id]
	return ok, nil
}

// RequiredPermissions returns the required permission ids of a module
func (c *Catalog) RequiredPermissions(ctx context.Context, moduleID string) ([]string, error) {
	return c.modules[moduleID].RequiredPermissionIDs(), nil
}
