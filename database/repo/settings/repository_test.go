package settings

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

func setupTestRepo(t *testing.T) *SettingRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Setting{}))
	return NewRepository(database.NewGormProviderFromDB(db, "sqlite"))
}

func TestSettingRepository_SetManyOverwrites(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, repo.SetMany(ctx, map[string]string{"b": "3"}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "3"}, all)

	v, ok, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok, err = repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingRepository_EnsureDefaults(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, map[string]string{"a": "custom"}))

	created, err := repo.EnsureDefaults(ctx, map[string]string{"a": "default", "b": "default"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "custom", "b": "default"}, all)

	created, err = repo.EnsureDefaults(ctx, map[string]string{"a": "default", "b": "default"})
	require.NoError(t, err)
	assert.Zero(t, created)
}
