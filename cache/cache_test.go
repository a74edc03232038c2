package cache

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/taskboard/cache/memory"
	"github.com/anoixa/taskboard/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cachedSettings struct {
	MaxFileSize int64    `json:"max_file_size"`
	Extensions  []string `json:"extensions"`
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c, err := memory.NewMemory(memory.DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	in := cachedSettings{MaxFileSize: 1024, Extensions: []string{"png", "pdf"}}
	require.NoError(t, c.Set(ctx, "settings:upload", in, time.Minute))

	var out cachedSettings
	require.NoError(t, c.Get(ctx, "settings:upload", &out))
	assert.Equal(t, in, out)

	exists, err := c.Exists(ctx, "settings:upload")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "settings:upload"))
	err = c.Get(ctx, "settings:upload", &out)
	assert.True(t, IsCacheMiss(err))
}

func TestMemoryCache_MissOnUnknownKey(t *testing.T) {
	c, err := memory.NewMemory(memory.DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	var out string
	err = c.Get(context.Background(), "nope", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewProvider_Memory(t *testing.T) {
	p, err := NewProvider(context.Background(), &config.Config{CacheType: "memory"}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, "memory", p.Name())
}

func TestNewProvider_Unsupported(t *testing.T) {
	_, err := NewProvider(context.Background(), &config.Config{CacheType: "memcached"}, zap.NewNop())
	assert.Error(t, err)
}

func TestKeyBuilder(t *testing.T) {
	kb := NewKeyBuilder("settings")
	assert.Equal(t, "settings", kb.Build())
	assert.Equal(t, "settings:upload", kb.Build("upload"))
}
