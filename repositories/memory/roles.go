package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/repositories"
)

// RoleRepository implements repositories.RoleRepository
type RoleRepository struct {
	store *Store
}

// Create inserts a new role; names are unique
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.store.write(func(d *state) error {
		if _, ok := d.roles[role.ID]; ok {
			return fmt.Errorf("failed to create role: %w (id)", repositories.ErrDuplicate)
		}
		for _, existing := range d.roles {
			if existing.Name == role.Name {
				return fmt.Errorf("failed to create role: %w (name)", repositories.ErrDuplicate)
			}
		}
		d.roles[role.ID] = *role
		return nil
	})
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	var role *models.Role
	r.store.read(func(d *state) {
		if found, ok := d.roles[id]; ok {
			role = &found
		}
	})
	if role == nil {
		return nil, fmt.Errorf("role %s: %w", id, repositories.ErrNotFound)
	}
	return role, nil
}

// GetByName retrieves a role by exact name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role *models.Role
	r.store.read(func(d *state) {
		for _, found := range d.roles {
			if found.Name == name {
				found := found
				role = &found
				return
			}
		}
	})
	if role == nil {
		return nil, fmt.Errorf("role named %s: %w", name, repositories.ErrNotFound)
	}
	return role, nil
}

// List retrieves one page of roles ordered by name, plus the total count
func (r *RoleRepository) List(ctx context.Context, limit, offset int) ([]*models.Role, int, error) {
	all, _ := r.ListAll(ctx)
	return page(all, limit, offset), len(all), nil
}

// ListAll retrieves every role ordered by name
func (r *RoleRepository) ListAll(ctx context.Context) ([]*models.Role, error) {
	roles := []*models.Role{}
	r.store.read(func(d *state) {
		for _, role := range d.roles {
			role := role
			roles = append(roles, &role)
		}
	})
	sort.Slice(roles, func(a, b int) bool { return roles[a].Name < roles[b].Name })
	return roles, nil
}

// Update updates name, description and active flag
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	return r.store.write(func(d *state) error {
		if _, ok := d.roles[role.ID]; !ok {
			return fmt.Errorf("role %s: %w", role.ID, repositories.ErrNotFound)
		}
		for id, existing := range d.roles {
			if id != role.ID && existing.Name == role.Name {
				return fmt.Errorf("failed to update role: %w (name)", repositories.ErrDuplicate)
			}
		}
		d.roles[role.ID] = *role
		return nil
	})
}

// Delete deletes a role and its grants; roles still assigned to users are kept
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(func(d *state) error {
		if _, ok := d.roles[id]; !ok {
			return fmt.Errorf("role %s: %w", id, repositories.ErrNotFound)
		}
		for _, u := range d.users {
			if u.RoleID == id {
				return fmt.Errorf("failed to delete role: role %s is assigned to users", id)
			}
		}
		delete(d.roles, id)
		delete(d.grants, id)
		return nil
	})
}

// WithTx returns the repository itself; the store has a single state
func (r *RoleRepository) WithTx(tx repositories.Transaction) repositories.RoleRepository {
	return r
}

// RolePermissionRepository implements repositories.RolePermissionRepository
type RolePermissionRepository struct {
	store *Store
}

// PermissionsOf returns the permission ids granted to a role, sorted
func (r *RolePermissionRepository) PermissionsOf(ctx context.Context, roleID string) ([]string, error) {
	ids := []string{}
	r.store.read(func(d *state) {
		for p := range d.grants[roleID] {
			ids = append(ids, p)
		}
	})
	sort.Strings(ids)
	return ids, nil
}

// Replace removes every association of the role and inserts the given ones
func (r *RolePermissionRepository) Replace(ctx context.Context, roleID string, permissionIDs []string) error {
	return r.store.write(func(d *state) error {
		set := make(map[string]struct{}, len(permissionIDs))
		for _, p := range permissionIDs {
			set[p] = struct{}{}
		}
		d.grants[roleID] = set
		return nil
	})
}

// Add grants one permission to a role
func (r *RolePermissionRepository) Add(ctx context.Context, roleID, permissionID string) error {
	return r.store.write(func(d *state) error {
		if d.grants[roleID] == nil {
			d.grants[roleID] = make(map[string]struct{})
		}
		d.grants[roleID][permissionID] = struct{}{}
		return nil
	})
}

// HasPermission reports whether the role holds the permission
func (r *RolePermissionRepository) HasPermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	found := false
	r.store.read(func(d *state) {
		_, found = d.grants[roleID][permissionID]
	})
	return found, nil
}

// AnyRoleHasPermission reports whether any role holds the permission
func (r *RolePermissionRepository) AnyRoleHasPermission(ctx context.Context, permissionID string) (bool, error) {
	found := false
	r.store.read(func(d *state) {
		for _, set := range d.grants {
			if _, ok := set[permissionID]; ok {
				found = true
				return
			}
		}
	})
	return found, nil
}

// WithTx returns the repository itself; the store has a single state
func (r *RolePermissionRepository) WithTx(tx repositories.Transaction) repositories.RolePermissionRepository {
	return r
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
