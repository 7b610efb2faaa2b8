package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/upb/inventory-admin/repositories"
	"go.uber.org/zap"
)

// RolePermissionRepository implements repositories.RolePermissionRepository
type RolePermissionRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewRolePermissionRepository creates a new role permission repository
func NewRolePermissionRepository(db *DB, logger *zap.Logger) repositories.RolePermissionRepository {
	return &RolePermissionRepository{
		db:     db,
		logger: logger,
	}
}

// PermissionsOf returns the permission ids granted to a role
func (r *RolePermissionRepository) PermissionsOf(ctx context.Context, roleID string) ([]string, error) {
	query := `
		SELECT permission_id
		FROM role_permissions
		WHERE role_id = $1
		ORDER BY permission_id
	`
	ids, err := queryStrings(ctx, executor(ctx, r.db, r.tx), query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions of role %s: %w", roleID, err)
	}
	return ids, nil
}

// Replace removes every association of the role and inserts the given ones
func (r *RolePermissionRepository) Replace(ctx context.Context, roleID string, permissionIDs []string) error {
	exec := executor(ctx, r.db, r.tx)

	if _, err := exec.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to remove role permissions: %w", err)
	}

	ids := distinct(permissionIDs)
	if len(ids) > 0 {
		query := `
			INSERT INTO role_permissions (role_id, permission_id)
			SELECT $1, unnest($2::text[])
			ON CONFLICT (role_id, permission_id) DO NOTHING
		`
		if _, err := exec.ExecContext(ctx, query, roleID, pq.Array(ids)); err != nil {
			return wrapError("insert role permissions", err)
		}
	}

	r.logger.Debug("role permissions replaced",
		zap.String("role_id", roleID),
		zap.Int("count", len(ids)))
	return nil
}

// Add grants one permission to a role
func (r *RolePermissionRepository) Add(ctx context.Context, roleID, permissionID string) error {
	query := `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`
	if _, err := executor(ctx, r.db, r.tx).ExecContext(ctx, query, roleID, permissionID); err != nil {
		return wrapError("add role permission", err)
	}

	r.logger.Debug("role permission added",
		zap.String("role_id", roleID),
		zap.String("permission_id", permissionID))
	return nil
}

// HasPermission reports whether the role holds the permission
func (r *RolePermissionRepository) HasPermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM role_permissions WHERE role_id = $1 AND permission_id = $2)`

	var found bool
	if err := executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, roleID, permissionID).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}
	return found, nil
}

// AnyRoleHasPermission reports whether any role holds the permission
func (r *RolePermissionRepository) AnyRoleHasPermission(ctx context.Context, permissionID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM role_permissions WHERE permission_id = $1)`

	var found bool
	if err := executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, permissionID).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return found, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *RolePermissionRepository) WithTx(tx repositories.Transaction) repositories.RolePermissionRepository {
	return &RolePermissionRepository{
		db:     r.db,
		tx:     asTransaction(tx),
		logger: r.logger,
	}
}

// distinct drops repeated ids keeping first occurrence order
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
