package attachment

import (
	"context"
	"testing"

	"github.com/anoixa/taskboard/database/repo/attachments"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadFixture(t *testing.T, env *testEnv, uploaderID uint) *Descriptor {
	t.Helper()
	desc, err := NewUploadService(testUploadConfig(), env.deps).Upload(context.Background(), UploadRequest{
		File:       rawUpload(t, "diagram.png", encodeImage(t, 320, 240, imaging.PNG)),
		Entity:     TaskRef(1),
		UploaderID: uploaderID,
	})
	require.NoError(t, err)
	return desc
}

func TestDelete_NonUploaderKeepsEverything(t *testing.T) {
	env := newTestEnv(t)
	desc := uploadFixture(t, env, 1)
	svc := NewDeleteService(env.repo, env.storage, nil)

	err := svc.Delete(context.Background(), desc.ID, 2)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	_, err = env.repo.GetByID(context.Background(), desc.ID)
	assert.NoError(t, err)
	assert.True(t, env.exists(t, "images/"+desc.Filename))
	assert.True(t, env.exists(t, "thumbnails/thumb_"+desc.Filename))
}

func TestDelete_MissingLooksLikeForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDeleteService(env.repo, env.storage, nil)

	missing := svc.Delete(context.Background(), 4242, 1)

	desc := uploadFixture(t, env, 1)
	forbidden := svc.Delete(context.Background(), desc.ID, 2)

	assert.ErrorIs(t, missing, ErrNotFoundOrForbidden)
	assert.ErrorIs(t, forbidden, ErrNotFoundOrForbidden)
	assert.Equal(t, PublicMessage(missing), PublicMessage(forbidden))
}

func TestDelete_UploaderRemovesRowAndFiles(t *testing.T) {
	env := newTestEnv(t)
	desc := uploadFixture(t, env, 1)
	svc := NewDeleteService(env.repo, env.storage, nil)

	require.NoError(t, svc.Delete(context.Background(), desc.ID, 1))

	_, err := env.repo.GetByID(context.Background(), desc.ID)
	assert.ErrorIs(t, err, attachments.ErrNotFound)
	assert.Empty(t, env.files(t))

	// 再次删除
	assert.ErrorIs(t, svc.Delete(context.Background(), desc.ID, 1), ErrNotFoundOrForbidden)
}

func TestDelete_MissingFileStillRemovesRow(t *testing.T) {
	env := newTestEnv(t)
	desc := uploadFixture(t, env, 1)
	require.NoError(t, env.storage.DeleteWithContext(context.Background(), "images/"+desc.Filename))

	svc := NewDeleteService(env.repo, env.storage, nil)
	require.NoError(t, svc.Delete(context.Background(), desc.ID, 1))

	_, err := env.repo.GetByID(context.Background(), desc.ID)
	assert.ErrorIs(t, err, attachments.ErrNotFound)
	assert.Empty(t, env.files(t))
}
