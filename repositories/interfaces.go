package repositories

import (
	"context"
	"errors"

	"github.com/upb/inventory-admin/models"
)

var (
	// ErrNotFound is wrapped by repositories when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is wrapped by repositories when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context carrying the transaction
	Context() context.Context
}

// CatalogRepository holds the persisted copy of the permission catalog
type CatalogRepository interface {
	// Sync upserts every module and permission of the catalog
	Sync(ctx context.Context, modules []models.Module) error

	// ListModules returns the persisted modules with their permissions, ordered
	ListModules(ctx context.Context) ([]models.Module, error)

	// ModuleExists reports whether a module id is persisted
	ModuleExists(ctx context.Context, id string) (bool, error)

	// PermissionExists reports whether a permission id is persisted
	PermissionExists(ctx context.Context, id string) (bool, error)

	// RequiredPermissions returns the required permission ids of a module
	RequiredPermissions(ctx context.Context, moduleID string) ([]string, error)
}

// RoleRepository handles role data operations
type RoleRepository interface {
	// Create inserts a new role
	Create(ctx context.Context, role *models.Role) error

	// GetByID retrieves a role by ID
	GetByID(ctx context.Context, id string) (*models.Role, error)

	// GetByName retrieves a role by exact name
	GetByName(ctx context.Context, name string) (*models.Role, error)

	// List retrieves one page of roles ordered by name, plus the total count
	List(ctx context.Context, limit, offset int) ([]*models.Role, int, error)

	// ListAll retrieves every role ordered by name
	ListAll(ctx context.Context) ([]*models.Role, error)

	// Update updates name, description and active flag
	Update(ctx context.Context, role *models.Role) error

	// Delete deletes a role
	Delete(ctx context.Context, id string) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) RoleRepository
}

// RolePermissionRepository handles the role to permission association
type RolePermissionRepository interface {
	// PermissionsOf returns the permission ids granted to a role, never nil
	PermissionsOf(ctx context.Context, roleID string) ([]string, error)

	// Replace removes every association of the role and inserts the given ones.
	// It does not commit on its own.
	Replace(ctx context.Context, roleID string, permissionIDs []string) error

	// Add grants one permission to a role
	Add(ctx context.Context, roleID, permissionID string) error

	// HasPermission reports whether the role holds the permission
	HasPermission(ctx context.Context, roleID, permissionID string) (bool, error)

	// AnyRoleHasPermission reports whether any role at all holds the permission
	AnyRoleHasPermission(ctx context.Context, permissionID string) (bool, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) RolePermissionRepository
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves one page of users ordered by email, plus the total count
	List(ctx context.Context, limit, offset int) ([]*models.User, int, error)

	// CountByRoleID counts users assigned to a role
	CountByRoleID(ctx context.Context, roleID string) (int, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user
	Delete(ctx context.Context, id string) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Catalog         CatalogRepository
	Roles           RoleRepository
	RolePermissions RolePermissionRepository
	Users           UserRepository
}
