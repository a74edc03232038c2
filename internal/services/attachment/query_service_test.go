package attachment

import (
	"context"
	"testing"

	"github.com/anoixa/taskboard/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_ListForEntity(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.WithContext(context.Background()).Create(&models.User{ID: 1, Username: "ana", FullName: "Ana Lima"}).Error)

	image := uploadFixture(t, env, 1)
	doc, err := NewUploadService(testUploadConfig(), env.deps).Upload(context.Background(), UploadRequest{
		File:       rawUpload(t, "notes.txt", []byte("meeting notes")),
		Entity:     TaskRef(1),
		UploaderID: 1,
	})
	require.NoError(t, err)

	// 其他实体的附件不应出现
	_, err = NewUploadService(testUploadConfig(), env.deps).Upload(context.Background(), UploadRequest{
		File:       rawUpload(t, "other.txt", []byte("x")),
		Entity:     ProjectRef(1),
		UploaderID: 1,
	})
	require.NoError(t, err)

	svc := NewQueryService(env.repo, env.deps.URLs)
	entries, err := svc.ListForEntity(context.Background(), TaskRef(1))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// 最新的在前
	assert.Equal(t, doc.ID, entries[0].ID)
	assert.Equal(t, image.ID, entries[1].ID)

	text := entries[0]
	assert.True(t, text.IsDocument)
	assert.False(t, text.IsImage)
	assert.Nil(t, text.ThumbnailPath)
	assert.Equal(t, "text", text.Icon)
	assert.Equal(t, "13 B", text.FormattedSize)
	assert.Equal(t, "Ana Lima", text.UploaderName)

	img := entries[1]
	assert.True(t, img.IsImage)
	assert.False(t, img.IsVideo)
	require.NotNil(t, img.ThumbnailPath)
	assert.Equal(t, "/uploads/thumbnails/thumb_"+image.Filename, *img.ThumbnailPath)
	assert.Equal(t, "image", img.Icon)
}

func TestQuery_ListEmpty(t *testing.T) {
	env := newTestEnv(t)
	entries, err := NewQueryService(env.repo, env.deps.URLs).ListForEntity(context.Background(), CommentRef(5))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestQuery_Get(t *testing.T) {
	env := newTestEnv(t)
	desc := uploadFixture(t, env, 1)
	svc := NewQueryService(env.repo, env.deps.URLs)

	entry, err := svc.Get(context.Background(), desc.ID)
	require.NoError(t, err)
	assert.Equal(t, desc.FilePath, entry.FilePath)
	assert.Equal(t, "", entry.UploaderName)

	_, err = svc.Get(context.Background(), desc.ID+100)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
}
