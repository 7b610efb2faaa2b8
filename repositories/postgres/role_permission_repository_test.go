package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRolePermissionRepository_PermissionsOf(t *testing.T) {
	t.Run("returns the granted ids", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRolePermissionRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT permission_id`)).
			WithArgs("role-1").
			WillReturnRows(sqlmock.NewRows([]string{"permission_id"}).
				AddRow("Permissions.Users.Create").
				AddRow("Permissions.Users.View"))

		ids, err := repo.PermissionsOf(context.Background(), "role-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Permissions.Users.Create", "Permissions.Users.View"}, ids)
	})

	t.Run("no rows yields an empty non nil slice", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRolePermissionRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT permission_id`)).
			WithArgs("role-2").
			WillReturnRows(sqlmock.NewRows([]string{"permission_id"}))

		ids, err := repo.PermissionsOf(context.Background(), "role-2")
		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})
}

func TestRolePermissionRepository_Replace(t *testing.T) {
	t.Run("deletes then inserts the new set", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRolePermissionRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM role_permissions WHERE role_id = $1`)).
			WithArgs("role-1").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(`SELECT $1, unnest($2::text[])`)).
			WithArgs("role-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.Replace(context.Background(), "role-1", []string{"p1", "p2", "p1"})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty set only deletes", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRolePermissionRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM role_permissions WHERE role_id = $1`)).
			WithArgs("role-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Replace(context.Background(), "role-1", nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete failure stops before inserting", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRolePermissionRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM role_permissions`)).
			WillReturnError(errors.New("lock timeout"))

		err := repo.Replace(context.Background(), "role-1", []string{"p1"})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRolePermissionRepository_Checks(t *testing.T) {
	t.Run("HasPermission is scoped to the role", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRolePermissionRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE role_id = $1 AND permission_id = $2`)).
			WithArgs("role-1", "Permissions.Roles.View").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.HasPermission(context.Background(), "role-1", "Permissions.Roles.View")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("AnyRoleHasPermission ignores the role", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewRolePermissionRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta(`FROM role_permissions WHERE permission_id = $1)`)).
			WithArgs("Permissions.Roles.View").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := repo.AnyRoleHasPermission(context.Background(), "Permissions.Roles.View")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, distinct([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, distinct(nil))
}
