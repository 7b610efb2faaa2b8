package app

import (
	"context"
	"fmt"

	"github.com/upb/inventory-admin/config"
	"github.com/upb/inventory-admin/internal/observability"
	"github.com/upb/inventory-admin/middleware"
	"github.com/upb/inventory-admin/permissions"
	"github.com/upb/inventory-admin/repositories"
	"github.com/upb/inventory-admin/repositories/memory"
	"github.com/upb/inventory-admin/repositories/postgres"
	"github.com/upb/inventory-admin/services/authz"
	"github.com/upb/inventory-admin/services/identity"
	"github.com/upb/inventory-admin/services/roles"
	"github.com/upb/inventory-admin/services/users"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// RepoFactory is nil when the memory driver is selected
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Authorization catalog and the per-permission policy table
	Catalog  *permissions.Catalog
	Policies *permissions.Policies

	// Services
	Tokens   *identity.TokenService
	Hasher   *identity.BcryptHasher
	Identity *identity.Service
	Roles    *roles.Service
	Users    *users.Service
	Authz    *authz.DecisionPoint

	// Middleware
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = observability.NewMetrics()
	}

	if err := deps.initRepositories(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	deps.initServices(cfg)
	deps.initMiddleware()

	if err := deps.syncCatalog(ctx); err != nil {
		_ = deps.Close(ctx)
		return nil, err
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("authz_scope_to_role", cfg.Authorization.ScopeToRole))
	return deps, nil
}

// initRepositories selects the persistence backend
func (d *Dependencies) initRepositories(ctx context.Context, cfg *config.Config) error {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memory.NewStore(d.Logger)
		d.Repos = store.Repositories()
		d.TxManager = store.TransactionManager()
		d.Logger.Warn("using in-memory store, data is lost on restart")
		return nil

	case config.DriverPostgres:
		factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to create repository factory: %w", err)
		}
		if err := factory.InitSchema(ctx); err != nil {
			_ = factory.Close()
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		d.RepoFactory = factory
		d.Repos = factory.NewRepositories()
		d.TxManager = factory.GetTransactionManager()
		return nil

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// initServices builds the domain services over the repositories.
// Role validation queries the persisted catalog copy.
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Catalog = permissions.NewCatalog()
	d.Policies = permissions.NewPolicies(permissions.ModulesWithPermissions())

	d.Tokens = identity.NewTokenService(identity.TokenConfig{
		Key:      cfg.JWT.Key,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Duration: cfg.JWT.Duration(),
	})
	d.Hasher = identity.NewBcryptHasher(0)

	d.Identity = identity.NewService(d.TxManager, d.Repos, d.Tokens, d.Hasher, d.Metrics, d.Logger)
	d.Roles = roles.NewService(d.TxManager, d.Repos, d.Repos.Catalog, d.Logger)
	d.Users = users.NewService(d.TxManager, d.Repos, d.Hasher, cfg.Seed.AdminEmail, d.Logger)
	d.Authz = authz.NewDecisionPoint(d.Repos, cfg.Authorization.ScopeToRole, d.Metrics, d.Logger)
}

func (d *Dependencies) initMiddleware() {
	validator := middleware.NewIdentityTokenValidator(d.Tokens)
	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
	d.PermissionMiddleware = middleware.NewPermissionMiddleware(d.Authz, d.Policies, d.Logger)

	d.Logger.Info("authorization policies registered",
		zap.Int("policies", d.Policies.Len()),
		zap.Bool("role_scoped", d.Authz.RoleScoped()))
}

// syncCatalog writes the static catalog to the store. Role validation and
// the role-permission foreign keys read the persisted copy.
func (d *Dependencies) syncCatalog(ctx context.Context) error {
	modules, err := d.Catalog.ListModules(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if err := d.Repos.Catalog.Sync(ctx, modules); err != nil {
		return fmt.Errorf("failed to sync catalog: %w", err)
	}
	d.Logger.Info("permission catalog synced", zap.Int("modules", len(modules)))
	return nil
}

// HealthCheck reports whether the persistence backend is reachable
func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if d.RepoFactory == nil {
		return ctx.Err()
	}
	return d.RepoFactory.HealthCheck(ctx)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
