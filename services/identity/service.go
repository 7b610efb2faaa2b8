// Package identity exchanges credentials for signed tokens and manages the caller's own profile.
package identity

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

// Sign-in outcomes reported to the AttemptRecorder
const (
	OutcomeSuccess         = "success"
	OutcomeUnknownAccount  = "unknown_account"
	OutcomeInactiveAccount = "inactive_account"
	OutcomeBadCredentials  = "bad_credentials"
)

// AttemptRecorder receives the outcome of every sign-in attempt
type AttemptRecorder interface {
	RecordSignIn(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordSignIn(string) {}

// AuthResult is returned by a successful sign-in
type AuthResult struct {
	Token       string    `json:"token"`
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	Fullname    string    `json:"fullname"`
	Permissions []string  `json:"permissions"`
	IsVerified  bool      `json:"isVerified"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Profile describes the signed-in principal
type Profile struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	Fullname    string   `json:"fullname"`
	RoleID      string   `json:"roleId"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsVerified  bool     `json:"isVerified"`
}

// UpdateProfileInput is the input of UpdateProfile.
// The password changes only when both passwords are given.
type UpdateProfileInput struct {
	UserID          string
	Fullname        string
	Email           string
	CurrentPassword string
	NewPassword     string
}

// Service authenticates principals and issues tokens
type Service struct {
	txManager repositories.TransactionManager
	users     repositories.UserRepository
	roles     repositories.RoleRepository
	grants    repositories.RolePermissionRepository
	tokens    *TokenService
	hasher    PasswordHasher
	recorder  AttemptRecorder
	logger    *zap.Logger
}

// NewService creates a new identity Service. recorder may be nil.
func NewService(
	txManager repositories.TransactionManager,
	repos *repositories.Repositories,
	tokens *TokenService,
	hasher PasswordHasher,
	recorder AttemptRecorder,
	logger *zap.Logger,
) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		txManager: txManager,
		users:     repos.Users,
		roles:     repos.Roles,
		grants:    repos.RolePermissions,
		tokens:    tokens,
		hasher:    hasher,
		recorder:  recorder,
		logger:    logger,
	}
}

// Authenticate exchanges email and password for a token and the caller's permissions.
// Inactive accounts are rejected even when the password is correct.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.recorder.RecordSignIn(OutcomeUnknownAccount)
			return nil, services.NewAuthenticationError("No Accounts Registered with %s.", email)
		}
		return nil, services.WrapInternal("failed to load account", err)
	}

	matched, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, services.WrapInternal("failed to verify credentials", err)
	}

	if !user.Active {
		s.recorder.RecordSignIn(OutcomeInactiveAccount)
		return nil, services.NewAuthenticationError("Account for '%s' is not active. Please contact the Administrator.", email)
	}
	if !matched {
		s.recorder.RecordSignIn(OutcomeBadCredentials)
		s.logger.Info("sign-in rejected",
			zap.String("user_id", user.ID),
			zap.String("reason", OutcomeBadCredentials))
		return nil, services.NewAuthenticationError("Invalid Credentials for '%s'.", email)
	}

	role, permissions, err := s.resolveRole(ctx, user)
	if err != nil {
		return nil, err
	}

	issued, err := s.tokens.Issue(user)
	if err != nil {
		return nil, services.WrapInternal("failed to issue token", err)
	}

	s.recorder.RecordSignIn(OutcomeSuccess)
	s.logger.Info("token issued",
		zap.String("user_id", user.ID),
		zap.String("role_id", role.ID),
		zap.String("jti", issued.Claims.ID))

	return &AuthResult{
		Token:       issued.Token,
		UserID:      user.ID,
		Role:        role.Name,
		Email:       user.Email,
		Fullname:    user.Fullname,
		Permissions: permissions,
		IsVerified:  user.EmailConfirmed,
		ExpiresAt:   issued.ExpiresAt(),
	}, nil
}

// GetProfile returns the principal with its current role and permissions
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.getUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	role, permissions, err := s.resolveRole(ctx, user)
	if err != nil {
		return nil, err
	}

	return &Profile{
		UserID:      user.ID,
		Email:       user.Email,
		Fullname:    user.Fullname,
		RoleID:      role.ID,
		Role:        role.Name,
		Permissions: permissions,
		IsVerified:  user.EmailConfirmed,
	}, nil
}

// UpdateProfile changes the caller's name, email and optionally password
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) error {
	return services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		users := s.users.WithTx(tx)

		user, err := s.getUser(ctx, users, input.UserID)
		if err != nil {
			return err
		}

		if user.Email != input.Email {
			if _, err := users.GetByEmail(ctx, input.Email); err == nil {
				return services.NewConflictError("Email %s is already registered.", input.Email)
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return services.WrapInternal("failed to look up email", err)
			}
			user.Email = input.Email
			user.UserName = input.Email
		}
		user.Fullname = input.Fullname

		if strings.TrimSpace(input.CurrentPassword) != "" && strings.TrimSpace(input.NewPassword) != "" {
			matched, err := s.hasher.Compare(user.PasswordHash, input.CurrentPassword)
			if err != nil {
				return services.WrapInternal("failed to verify password", err)
			}
			if !matched {
				return services.NewValidationError(services.Violation{
					Field: "currentPassword", Rule: "password.mismatch", Message: "Incorrect password.",
				})
			}
			hash, err := s.hasher.Hash(input.NewPassword)
			if err != nil {
				return services.WrapInternal("failed to hash password", err)
			}
			user.PasswordHash = hash
		}

		user.UpdatedAt = time.Now().UTC()
		if err := users.Update(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return services.NewConflictError("Email %s is already registered.", input.Email)
			}
			return services.WrapInternal("failed to update profile", err)
		}

		s.logger.Info("profile updated", zap.String("user_id", user.ID))
		return nil
	})
}

func (s *Service) getUser(ctx context.Context, users repositories.UserRepository, id string) (*models.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.NewNotFoundError("The User with the Id %s was not found.", id)
		}
		return nil, services.WrapInternal("failed to load user", err)
	}
	return user, nil
}

func (s *Service) resolveRole(ctx context.Context, user *models.User) (*models.Role, []string, error) {
	role, err := s.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, nil, services.WrapInternal("failed to resolve role", err)
	}

	permissions, err := s.grants.PermissionsOf(ctx, role.ID)
	if err != nil {
		return nil, nil, services.WrapInternal("failed to resolve permissions", err)
	}
	return role, permissions, nil
}
