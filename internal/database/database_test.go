package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/focusflow/focusflow-api/internal/config"
	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	cases := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{driver: DriverMySQL, name: "mysql"},
		{driver: DriverPostgres, name: "postgres"},
		{driver: "oracle", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.driver, func(t *testing.T) {
			cfg := config.Load()
			cfg.DBDriver = tc.driver

			dialector, err := Dialector(cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, dialector.Name())
		})
	}
}

func TestScopes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for i, status := range []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusTodo, models.TaskStatusDone} {
		owner := "owner-a"
		if i == 2 {
			owner = "owner-b"
		}
		require.NoError(t, db.Create(&models.Task{Title: "t", Status: status, Priority: models.TaskPriorityLow, OwnerID: owner}).Error)
	}

	var owned []models.Task
	require.NoError(t, db.Scopes(OwnedBy("owner-a")).Find(&owned).Error)
	assert.Len(t, owned, 2)

	var done []models.Task
	require.NoError(t, db.Scopes(WithStatus(models.TaskStatusDone)).Find(&done).Error)
	assert.Len(t, done, 1)

	var page []models.Task
	require.NoError(t, db.Scopes(Paginate(utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})).Find(&page).Error)
	assert.Len(t, page, 1)
}

func TestMigratePostgres_CreatesMissingIndexes(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	for i, idx := range postgresIndexes {
		existing := 0
		if i == 0 {
			existing = 1
		}
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pg_indexes").
			WithArgs(idx.table, idx.name).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(existing))
		if existing == 0 {
			mock.ExpectExec("CREATE (UNIQUE )?INDEX " + idx.name).
				WillReturnResult(sqlmock.NewResult(0, 0))
		}
	}

	require.NoError(t, MigratePostgres(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigratePostgres_ReportsFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pg_indexes").
		WillReturnError(errors.New("connection refused"))

	err = MigratePostgres(db)
	assert.ErrorContains(t, err, "failed to check index idx_tasks_owner_created_at")
}
