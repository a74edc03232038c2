package generator

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathGenerator_GenerateAttachmentIdentifiers(t *testing.T) {
	pg := NewPathGenerator()

	ids, err := pg.GenerateAttachmentIdentifiers(".PNG", "images")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(ids.Filename, ".png"))
	assert.Len(t, strings.TrimSuffix(ids.Filename, ".png"), 32)
	assert.Equal(t, "images/"+ids.Filename, ids.StoragePath)
	assert.Equal(t, "thumbnails/thumb_"+ids.Filename, ids.ThumbnailPath)
}

func TestPathGenerator_NoExtension(t *testing.T) {
	ids, err := NewPathGenerator().GenerateAttachmentIdentifiers("", "documents")
	require.NoError(t, err)
	assert.NotContains(t, ids.Filename, ".")
	assert.True(t, strings.HasPrefix(ids.StoragePath, "documents/"))
}

func TestPathGenerator_ConcurrentUnique(t *testing.T) {
	pg := NewPathGenerator()
	const n = 500

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		names = make(map[string]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := pg.GenerateAttachmentIdentifiers("jpg", "images")
			require.NoError(t, err)
			mu.Lock()
			names[ids.Filename] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, names, n)
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, "jpeg", ExtensionOf("Photo.JPEG"))
	assert.Equal(t, "gz", ExtensionOf("archive.tar.gz"))
	assert.Equal(t, "", ExtensionOf("README"))
	assert.Equal(t, "exe", ExtensionOf(`C:\temp\evil.exe`))
}
