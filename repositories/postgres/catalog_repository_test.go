package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/inventory-admin/models"
	"go.uber.org/zap"
)

func TestCatalogRepository_Sync(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db, zap.NewNop())

	modules := []models.Module{{
		ID:    "Modules.Users",
		Name:  "Users",
		Order: 2,
		Permissions: []models.Permission{
			{ID: "Permissions.Users.View", Name: "View", Order: 1, Required: true},
			{ID: "Permissions.Users.Create", Name: "Create", Order: 2},
		},
	}}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO modules`)).
		WithArgs("Modules.Users", "Users", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO permissions`)).
		WithArgs("Permissions.Users.View", "Modules.Users", "View", 1, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO permissions`)).
		WithArgs("Permissions.Users.Create", "Modules.Users", "Create", 2, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Sync(context.Background(), modules))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListModules(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM modules m`)).
		WillReturnRows(sqlmock.NewRows([]string{"m.id", "m.name", "m.sort_order", "p.id", "p.name", "p.sort_order", "p.required"}).
			AddRow("Modules.Dashboard", "Dashboard", 1, "Permissions.Dashboard.View", "Dashboard", 1, false).
			AddRow("Modules.Users", "Users", 2, "Permissions.Users.View", "View", 1, true).
			AddRow("Modules.Users", "Users", 2, "Permissions.Users.Create", "Create", 2, false))

	modules, err := repo.ListModules(context.Background())
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Len(t, modules[0].Permissions, 1)
	require.Len(t, modules[1].Permissions, 2)
	assert.Equal(t, "Modules.Users", modules[1].Permissions[1].ModuleID)
	assert.True(t, modules[1].Permissions[0].Required)
}

func TestCatalogRepository_Queries(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db, zap.NewNop())
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM modules WHERE id = $1`)).
		WithArgs("Modules.Users").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM permissions WHERE id = $1`)).
		WithArgs("Permissions.Users.Approve").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE module_id = $1 AND required`)).
		WithArgs("Modules.Users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("Permissions.Users.View"))

	ok, err := repo.ModuleExists(ctx, "Modules.Users")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.PermissionExists(ctx, "Permissions.Users.Approve")
	require.NoError(t, err)
	assert.False(t, ok)

	required, err := repo.RequiredPermissions(ctx, "Modules.Users")
	require.NoError(t, err)
	assert.Equal(t, []string{"Permissions.Users.View"}, required)
	assert.NoError(t, mock.ExpectationsWereMet())
}
