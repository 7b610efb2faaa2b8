package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/repositories"
)

// UserRepository implements repositories.UserRepository
type UserRepository struct {
	store *Store
}

// Create inserts a new user; emails are unique
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.store.write(func(d *state) error {
		if _, ok := d.users[user.ID]; ok {
			return fmt.Errorf("failed to create user: %w (id)", repositories.ErrDuplicate)
		}
		for _, existing := range d.users {
			if existing.Email == user.Email {
				return fmt.Errorf("failed to create user: %w (email)", repositories.ErrDuplicate)
			}
		}
		d.users[user.ID] = *user
		return nil
	})
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	r.store.read(func(d *state) {
		if found, ok := d.users[id]; ok {
			user = &found
		}
	})
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	r.store.read(func(d *state) {
		for _, found := range d.users {
			if found.Email == email {
				found := found
				user = &found
				return
			}
		}
	})
	if user == nil {
		return nil, fmt.Errorf("user for email %s: %w", email, repositories.ErrNotFound)
	}
	return user, nil
}

// List retrieves one page of users ordered by email, plus the total count
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	users := []*models.User{}
	r.store.read(func(d *state) {
		for _, u := range d.users {
			u := u
			users = append(users, &u)
		}
	})
	sort.Slice(users, func(a, b int) bool { return users[a].Email < users[b].Email })
	return page(users, limit, offset), len(users), nil
}

// CountByRoleID counts users assigned to a role
func (r *UserRepository) CountByRoleID(ctx context.Context, roleID string) (int, error) {
	count := 0
	r.store.read(func(d *state) {
		for _, u := range d.users {
			if u.RoleID == roleID {
				count++
			}
		}
	})
	return count, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.store.write(func(d *state) error {
		if _, ok := d.users[user.ID]; !ok {
			return fmt.Errorf("user %s: %w", user.ID, repositories.ErrNotFound)
		}
		for id, existing := range d.users {
			if id != user.ID && existing.Email == user.Email {
				return fmt.Errorf("failed to update user: %w (email)", repositories.ErrDuplicate)
			}
		}
		d.users[user.ID] = *user
		return nil
	})
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(func(d *state) error {
		if _, ok := d.users[id]; !ok {
			return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
		}
		delete(d.users, id)
		return nil
	})
}

// WithTx returns the repository itself; the store has a single state
func (r *UserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return r
}
