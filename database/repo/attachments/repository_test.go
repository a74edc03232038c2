package attachments

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) database.Provider {
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
	return database.NewGormProviderFromDB(db, "sqlite")
}

func newAttachment(name string, entity models.EntityKind, entityID, uploader uint, created time.Time) *models.Attachment {
	return &models.Attachment{
		Filename:         name,
		OriginalFilename: "original-" + name,
		FilePath:         "documents/" + name,
		FileType:         models.FileKindDocument,
		FileSize:         10,
		MimeType:         "text/plain",
		EntityType:       entity,
		EntityID:         entityID,
		UploadedBy:       uploader,
		CreatedAt:        created,
	}
}

func TestRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&models.User{ID: 1, Username: "ana"}).Error)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	oldID, err := repo.Create(ctx, newAttachment("a.txt", models.EntityTask, 1, 1, base))
	require.NoError(t, err)
	newID, err := repo.Create(ctx, newAttachment("b.txt", models.EntityTask, 1, 1, base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newAttachment("c.txt", models.EntityProject, 1, 1, base))
	require.NoError(t, err)

	records, err := repo.ListByEntity(ctx, models.EntityTask, 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newID, records[0].ID)
	assert.Equal(t, oldID, records[1].ID)
	assert.Equal(t, "ana", records[0].UploaderName)

	empty, err := repo.ListByEntity(ctx, models.EntityComment, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRepository_DuplicateFilenameRejected(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newAttachment("same.txt", models.EntityTask, 1, 1, time.Now()))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newAttachment("same.txt", models.EntityTask, 1, 1, time.Now()))
	assert.Error(t, err)
}

func TestRepository_GetByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, newAttachment("a.txt", models.EntityTask, 1, 9, time.Now()))
	require.NoError(t, err)

	rec, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "original-a.txt", rec.OriginalFilename)
	assert.Equal(t, "", rec.UploaderName)

	_, err = repo.GetByID(ctx, id+1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DeleteOwned(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, newAttachment("a.txt", models.EntityTask, 1, 1, time.Now()))
	require.NoError(t, err)

	_, err = repo.DeleteOwned(ctx, id, 2)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
	_, err = repo.DeleteOwned(ctx, id+100, 1)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	deleted, err := repo.DeleteOwned(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "documents/a.txt", deleted.FilePath)

	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_StoredPaths(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	img := newAttachment("p.png", models.EntityTask, 1, 1, time.Now())
	img.FilePath = "images/p.png"
	img.ThumbnailPath = "thumbnails/thumb_p.png"
	_, err := repo.Create(ctx, img)
	require.NoError(t, err)
	_, err = repo.Create(ctx, newAttachment("d.txt", models.EntityTask, 1, 1, time.Now()))
	require.NoError(t, err)

	paths, err := repo.StoredPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"images/p.png":           {},
		"thumbnails/thumb_p.png": {},
		"documents/d.txt":        {},
	}, paths)
}
