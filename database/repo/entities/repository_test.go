package entities

import (
	"context"
	"testing"

	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	require.NoError(t, db.Create(&models.User{ID: 3, Username: "bo", FullName: "Bo Chen"}).Error)
	require.NoError(t, db.Create(&models.Project{ID: 1, Name: "Launch", CreatedBy: 10}).Error)
	require.NoError(t, db.Create(&models.Task{ID: 2, ProjectID: 1, Title: "Design", AssignedTo: 20, CreatedBy: 10}).Error)
	require.NoError(t, db.Create(&models.Comment{ID: 5, TaskID: 2, UserID: 30, Content: "ok"}).Error)

	return NewRepository(database.NewGormProviderFromDB(db, "sqlite"))
}

func TestOwnership(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		kind    models.EntityKind
		id      uint
		writers []uint
	}{
		{models.EntityTask, 2, []uint{20, 10}},
		{models.EntityProject, 1, []uint{10}},
		{models.EntityComment, 5, []uint{30}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			o, err := repo.Ownership(ctx, tt.kind, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.writers, o.Writers)
		})
	}

	_, err := repo.Ownership(ctx, models.EntityTask, 99)
	assert.ErrorIs(t, err, ErrEntityNotFound)

	_, err = repo.Ownership(ctx, models.EntityComment, 99)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestOwnership_Allows(t *testing.T) {
	o := &Ownership{Writers: []uint{0, 4}}
	assert.True(t, o.Allows(4))
	assert.False(t, o.Allows(0))
	assert.False(t, o.Allows(5))
}

func TestGetUser(t *testing.T) {
	repo := setupTestRepo(t)

	user, err := repo.GetUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Bo Chen", user.DisplayName())

	_, err = repo.GetUser(context.Background(), 4)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}
