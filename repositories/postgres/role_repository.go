package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/repositories"
	"go.uber.org/zap"
)

const roleColumns = `id, name, description, active, created_at, updated_at`

// RoleRepository implements repositories.RoleRepository
type RoleRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB, logger *zap.Logger) repositories.RoleRepository {
	return &RoleRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new role
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := executor(ctx, r.db, r.tx).ExecContext(ctx, query,
		role.ID,
		role.Name,
		role.Description,
		role.Active,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		return wrapError("create role", err)
	}

	r.logger.Debug("role created", zap.String("id", role.ID), zap.String("name", role.Name))
	return nil
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`

	role, err := scanRole(executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// GetByName retrieves a role by exact name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE name = $1`

	role, err := scanRole(executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role named %s: %w", name, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// List retrieves one page of roles ordered by name, plus the total count
func (r *RoleRepository) List(ctx context.Context, limit, offset int) ([]*models.Role, int, error) {
	exec := executor(ctx, r.db, r.tx)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count roles: %w", err)
	}

	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY name LIMIT $1 OFFSET $2`
	roles, err := r.queryRoles(ctx, exec, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// ListAll retrieves every role ordered by name
func (r *RoleRepository) ListAll(ctx context.Context) ([]*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY name`
	return r.queryRoles(ctx, executor(ctx, r.db, r.tx), query)
}

// Update updates name, description and active flag
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	query := `
		UPDATE roles
		SET name = $2,
		    description = $3,
		    active = $4,
		    updated_at = $5
		WHERE id = $1
	`

	result, err := executor(ctx, r.db, r.tx).ExecContext(ctx, query,
		role.ID,
		role.Name,
		role.Description,
		role.Active,
		role.UpdatedAt,
	)
	if err != nil {
		return wrapError("update role", err)
	}

	if err := expectAffected(result, "role", role.ID); err != nil {
		return err
	}

	r.logger.Debug("role updated", zap.String("id", role.ID))
	return nil
}

// Delete deletes a role; its role_permissions rows cascade
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	result, err := executor(ctx, r.db, r.tx).ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	if err := expectAffected(result, "role", id); err != nil {
		return err
	}

	r.logger.Debug("role deleted", zap.String("id", id))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *RoleRepository) WithTx(tx repositories.Transaction) repositories.RoleRepository {
	return &RoleRepository{
		db:     r.db,
		tx:     asTransaction(tx),
		logger: r.logger,
	}
}

func (r *RoleRepository) queryRoles(ctx context.Context, exec Executor, query string, args ...interface{}) ([]*models.Role, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := []*models.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}
	return roles, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRole(row rowScanner) (*models.Role, error) {
	role := &models.Role{}
	err := row.Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.Active,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// expectAffected turns a zero-row write into ErrNotFound
func expectAffected(result sql.Result, entity, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, repositories.ErrNotFound)
	}
	return nil
}
