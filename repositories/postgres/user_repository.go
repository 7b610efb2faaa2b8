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

const userColumns = `id, role_id, user_name, email, fullname, password_hash, active, email_confirmed, created_at, updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := executor(ctx, r.db, r.tx).ExecContext(ctx, query,
		user.ID,
		user.RoleID,
		user.UserName,
		user.Email,
		user.Fullname,
		user.PasswordHash,
		user.Active,
		user.EmailConfirmed,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return wrapError("create user", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user for email %s: %w", email, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List retrieves one page of users ordered by email, plus the total count
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	exec := executor(ctx, r.db, r.tx)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY email LIMIT $1 OFFSET $2`
	rows, err := exec.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, total, nil
}

// CountByRoleID counts users assigned to a role
func (r *UserRepository) CountByRoleID(ctx context.Context, roleID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE role_id = $1`
	if err := executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, roleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users of role: %w", err)
	}
	return count, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET role_id = $2,
		    user_name = $3,
		    email = $4,
		    fullname = $5,
		    password_hash = $6,
		    active = $7,
		    email_confirmed = $8,
		    updated_at = $9
		WHERE id = $1
	`

	result, err := executor(ctx, r.db, r.tx).ExecContext(ctx, query,
		user.ID,
		user.RoleID,
		user.UserName,
		user.Email,
		user.Fullname,
		user.PasswordHash,
		user.Active,
		user.EmailConfirmed,
		user.UpdatedAt,
	)
	if err != nil {
		return wrapError("update user", err)
	}

	if err := expectAffected(result, "user", user.ID); err != nil {
		return err
	}

	r.logger.Debug("user updated", zap.String("id", user.ID))
	return nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := executor(ctx, r.db, r.tx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := expectAffected(result, "user", id); err != nil {
		return err
	}

	r.logger.Debug("user deleted", zap.String("id", id))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *UserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return &UserRepository{
		db:     r.db,
		tx:     asTransaction(tx),
		logger: r.logger,
	}
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.RoleID,
		&user.UserName,
		&user.Email,
		&user.Fullname,
		&user.PasswordHash,
		&user.Active,
		&user.EmailConfirmed,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
