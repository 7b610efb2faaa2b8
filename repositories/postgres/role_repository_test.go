package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/repositories"
	"go.uber.org/zap"
)

var roleRowColumns = []string{"id", "name", "description", "active", "created_at", "updated_at"}

func TestRoleRepository_Create(t *testing.T) {
	t.Run("inserts the role", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRoleRepository(db, zap.NewNop())
		role := models.NewRole("Seller", "Sells things")

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO roles`)).
			WithArgs(role.ID, "Seller", "Sells things", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(context.Background(), role))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRoleRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO roles`)).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "roles_name_key"})

		err := repo.Create(context.Background(), models.NewRole("Admin", "dup"))
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})
}

func TestRoleRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRoleRepository(db, zap.NewNop())
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM roles WHERE id = $1`)).
			WithArgs("role-1").
			WillReturnRows(sqlmock.NewRows(roleRowColumns).
				AddRow("role-1", "Admin", "Admin Role", true, now, now))

		role, err := repo.GetByID(context.Background(), "role-1")
		require.NoError(t, err)
		assert.Equal(t, "Admin", role.Name)
		assert.True(t, role.Active)
	})

	t.Run("missing row maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRoleRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta(`FROM roles WHERE id = $1`)).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestRoleRepository_GetByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM roles WHERE name = $1`)).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows(roleRowColumns))

	_, err := repo.GetByName(context.Background(), "admin")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRoleRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleRepository(db, zap.NewNop())
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM roles`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM roles ORDER BY name LIMIT $1 OFFSET $2`)).
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows(roleRowColumns).
			AddRow("role-3", "Viewer", "Reads", false, now, now))

	roles, total, err := repo.List(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, roles, 1)
	assert.False(t, roles[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_Update(t *testing.T) {
	t.Run("updates the row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRoleRepository(db, zap.NewNop())
		role := models.NewRole("Seller", "desc")

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE roles`)).
			WithArgs(role.ID, "Seller", "desc", true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.Background(), role))
	})

	t.Run("zero rows maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRoleRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE roles`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), models.NewRole("x", "y"))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestRoleRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleRepository(db, zap.NewNop())

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM roles WHERE id = $1`)).
		WithArgs("role-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "role-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_WithTx(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())
	repo := NewRoleRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM roles WHERE id = $1`)).
		WithArgs("role-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)

	// bound repository runs inside the transaction even with a bare context
	require.NoError(t, repo.WithTx(tx).Delete(context.Background(), "role-1"))
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
