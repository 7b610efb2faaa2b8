// Package memory is a process-local implementation of the repositories,
// used for development runs and as the backing store in service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/repositories"
	"go.uber.org/zap"
)

// Store holds every table in memory
type Store struct {
	mu     sync.RWMutex
	txSem  chan struct{}
	data   *state
	logger *zap.Logger
}

type state struct {
	modules []models.Module
	roles   map[string]models.Role
	grants  map[string]map[string]struct{}
	users   map[string]models.User
}

func newState() *state {
	return &state{
		roles:  make(map[string]models.Role),
		grants: make(map[string]map[string]struct{}),
		users:  make(map[string]models.User),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.modules = cloneModules(s.modules)
	for id, r := range s.roles {
		c.roles[id] = r
	}
	for id, set := range s.grants {
		cs := make(map[string]struct{}, len(set))
		for p := range set {
			cs[p] = struct{}{}
		}
		c.grants[id] = cs
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	return c
}

// NewStore creates an empty store
func NewStore(logger *zap.Logger) *Store {
	return &Store{data: newState(), txSem: make(chan struct{}, 1), logger: logger}
}

// Repositories returns repositories backed by the store
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Catalog:         &CatalogRepository{store: s},
		Roles:           &RoleRepository{store: s},
		RolePermissions: &RolePermissionRepository{store: s},
		Users:           &UserRepository{store: s},
	}
}

// TransactionManager returns a transaction manager for the store.
// Transactions are serialized; rollback restores the snapshot taken at Begin.
// Reads outside a transaction see its uncommitted writes.
func (s *Store) TransactionManager() repositories.TransactionManager {
	return &TransactionManager{store: s}
}

func (s *Store) read(fn func(d *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// TransactionManager implements repositories.TransactionManager for the store
type TransactionManager struct {
	store *Store
}

// Begin waits for any running transaction or for ctx to end, then snapshots the store
func (tm *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	select {
	case tm.store.txSem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to begin transaction: %w", ctx.Err())
	}

	var snapshot *state
	tm.store.read(func(d *state) { snapshot = d.clone() })
	return &Transaction{store: tm.store, snapshot: snapshot, ctx: ctx}, nil
}

// InTransaction executes a function within a transaction
func (tm *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx.Context(), tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Transaction implements repositories.Transaction for the store
type Transaction struct {
	store    *Store
	snapshot *state
	ctx      context.Context
	done     bool
}

// Commit keeps the changes made since Begin
func (t *Transaction) Commit() error {
	if t.done {
		return fmt.Errorf("failed to commit transaction: already finished")
	}
	t.done = true
	t.snapshot = nil
	<-t.store.txSem
	return nil
}

// Rollback restores the snapshot. Rolling back a finished transaction is a no-op.
func (t *Transaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	_ = t.store.write(func(d *state) error {
		*d = *t.snapshot
		return nil
	})
	t.snapshot = nil
	<-t.store.txSem
	t.store.logger.Debug("memory transaction rolled back")
	return nil
}

// Context returns the context the transaction was started with
func (t *Transaction) Context() context.Context {
	return t.ctx
}

func cloneModules(modules []models.Module) []models.Module {
	out := make([]models.Module, len(modules))
	for i, m := range modules {
		m.Permissions = append([]models.Permission(nil), m.Permissions...)
		out[i] = m
	}
	return out
}

// CatalogRepository implements repositories.CatalogRepository
type CatalogRepository struct {
	store *Store
}

// Sync replaces the stored catalog with the given modules
func (r *CatalogRepository) Sync(ctx context.Context, modules []models.Module) error {
	sorted := cloneModules(modules)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Order < sorted[b].Order })
	for _, m := range sorted {
		sort.SliceStable(m.Permissions, func(a, b int) bool { return m.Permissions[a].Order < m.Permissions[b].Order })
	}
	return r.store.write(func(d *state) error {
		d.modules = sorted
		return nil
	})
}

// ListModules returns the stored catalog
func (r *CatalogRepository) ListModules(ctx context.Context) ([]models.Module, error) {
	var out []models.Module
	r.store.read(func(d *state) { out = cloneModules(d.modules) })
	return out, nil
}

// ModuleExists reports whether a module id is stored
func (r *CatalogRepository) ModuleExists(ctx context.Context, id string) (bool, error) {
	found := false
	r.store.read(func(d *state) {
		for _, m := range d.modules {
			if m.ID == id {
				found = true
				return
			}
		}
	})
	return found, nil
}

// PermissionExists reports whether a permission id is stored in any module
func (r *CatalogRepository) PermissionExists(ctx context.Context, id string) (bool, error) {
	found := false
	r.store.read(func(d *state) {
		for _, m := range d.modules {
			for _, p := range m.Permissions {
				if p.ID == id {
					found = true
					return
				}
			}
		}
	})
	return found, nil
}

// RequiredPermissions returns the required permission ids of a module
func (r *CatalogRepository) RequiredPermissions(ctx context.Context, moduleID string) ([]string, error) {
	required := []string{}
	r.store.read(func(d *state) {
		for _, m := range d.modules {
			if m.ID == moduleID {
				required = append(required, m.RequiredPermissionIDs()...)
			}
		}
	})
	return required, nil
}
