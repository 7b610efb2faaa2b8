// Package users administers user accounts.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/repositories"
	"github.com/upb/inventory-admin/services"
	"go.uber.org/zap"
)

// PasswordHasher hashes new account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CreateUserInput is the input of CreateUser
type CreateUserInput struct {
	Fullname string
	Email    string
	Password string
	RoleID   string
}

// UpdateUserInput is the input of UpdateUser
type UpdateUserInput struct {
	ID       string
	Fullname string
	Email    string
	RoleID   string
}

// Service handles user administration.
// The account registered under adminEmail cannot be modified, disabled or deleted.
type Service struct {
	txManager  repositories.TransactionManager
	users      repositories.UserRepository
	roles      repositories.RoleRepository
	hasher     PasswordHasher
	adminEmail string
	logger     *zap.Logger
}

// NewService creates a new user Service
func NewService(txManager repositories.TransactionManager, repos *repositories.Repositories, hasher PasswordHasher, adminEmail string, logger *zap.Logger) *Service {
	return &Service{
		txManager:  txManager,
		users:      repos.Users,
		roles:      repos.Roles,
		hasher:     hasher,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// CreateUser creates an active account with a verified email
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.User, error) {
		users := s.users.WithTx(tx)

		if err := s.ensureRoleExists(ctx, s.roles.WithTx(tx), input.RoleID); err != nil {
			return nil, err
		}
		if err := ensureEmailAvailable(ctx, users, input.Email); err != nil {
			return nil, err
		}

		user := models.NewUser(input.Email, input.Fullname, hash, input.RoleID)
		user.EmailConfirmed = true
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, emailTaken(input.Email)
			}
			return nil, services.WrapInternal("failed to create user", err)
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("role_id", user.RoleID))
	return user, nil
}

// UpdateUser changes name, email and role of an account
func (s *Service) UpdateUser(ctx context.Context, input UpdateUserInput) (*models.User, error) {
	return services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.User, error) {
		users := s.users.WithTx(tx)

		user, err := s.getMutable(ctx, users, input.ID)
		if err != nil {
			return nil, err
		}
		if err := s.ensureRoleExists(ctx, s.roles.WithTx(tx), input.RoleID); err != nil {
			return nil, err
		}
		if user.Email != input.Email {
			if err := ensureEmailAvailable(ctx, users, input.Email); err != nil {
				return nil, err
			}
		}

		user.Fullname = input.Fullname
		user.Email = input.Email
		user.UserName = input.Email
		user.RoleID = input.RoleID
		user.UpdatedAt = time.Now().UTC()
		if err := users.Update(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, emailTaken(input.Email)
			}
			return nil, services.WrapInternal("failed to update user", err)
		}

		s.logger.Info("user updated", zap.String("user_id", user.ID))
		return user, nil
	})
}

// EnableUser marks an account active
func (s *Service) EnableUser(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// DisableUser marks an account inactive; its tokens stay valid until they expire
func (s *Service) DisableUser(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) error {
	return services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		users := s.users.WithTx(tx)

		user, err := s.getMutable(ctx, users, id)
		if err != nil {
			return err
		}
		if user.Active == active {
			return nil
		}

		user.Active = active
		user.UpdatedAt = time.Now().UTC()
		if err := users.Update(ctx, user); err != nil {
			return services.WrapInternal("failed to update user", err)
		}

		s.logger.Info("user status changed",
			zap.String("user_id", id),
			zap.Bool("active", active))
		return nil
	})
}

// DeleteUser removes an account
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		users := s.users.WithTx(tx)

		if _, err := s.getMutable(ctx, users, id); err != nil {
			return err
		}
		if err := users.Delete(ctx, id); err != nil {
			return services.WrapInternal("failed to delete user", err)
		}

		s.logger.Info("user deleted", zap.String("user_id", id))
		return nil
	})
}

// GetUser returns an account by id
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	return getUser(ctx, s.users, id)
}

// ListUsers returns one page of accounts ordered by email
func (s *Service) ListUsers(ctx context.Context, page, pageSize int) (*services.Page[*models.User], error) {
	pageSize, offset, err := services.NormalizePage(page, pageSize)
	if err != nil {
		return nil, err
	}

	items, total, err := s.users.List(ctx, pageSize, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list users", err)
	}
	return services.NewPage(items, page, pageSize, total), nil
}

// IsAdmin reports whether the account is the protected administrator
func (s *Service) IsAdmin(user *models.User) bool {
	return s.adminEmail != "" && strings.EqualFold(user.Email, s.adminEmail)
}

func (s *Service) getMutable(ctx context.Context, users repositories.UserRepository, id string) (*models.User, error) {
	user, err := getUser(ctx, users, id)
	if err != nil {
		return nil, err
	}
	if s.IsAdmin(user) {
		return nil, services.NewForbiddenError("The admin user cannot be modified.")
	}
	return user, nil
}

func (s *Service) ensureRoleExists(ctx context.Context, roles repositories.RoleRepository, roleID string) error {
	if _, err := roles.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.NewValidationError(services.Violation{
				Field:   "roleId",
				Rule:    "role.exist",
				Message: "The Role with the Id " + roleID + " does not exists.",
			})
		}
		return services.WrapInternal("failed to load role", err)
	}
	return nil
}

func getUser(ctx context.Context, users repositories.UserRepository, id string) (*models.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.NewNotFoundError("The User with the Id %s was not found.", id)
		}
		return nil, services.WrapInternal("failed to load user", err)
	}
	return user, nil
}

func ensureEmailAvailable(ctx context.Context, users repositories.UserRepository, email string) error {
	_, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return emailTaken(email)
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return services.WrapInternal("failed to look up email", err)
	}
}

func emailTaken(email string) error {
	return services.NewConflictError("Email %s is already registered.", email)
}
