package attachment

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/anoixa/taskboard/storage"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{"landscape 4:3 into 1080p", 4000, 3000, 1920, 1080, 1440, 1080},
		{"wide panorama", 8000, 1000, 1920, 1080, 1920, 240},
		{"portrait", 1000, 4000, 1920, 1080, 270, 1080},
		{"upscale into square", 50, 50, 150, 150, 150, 150},
		{"thin strip keeps one pixel", 10000, 1, 150, 150, 150, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitWithin(tt.w, tt.h, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func newProcessorFixture(t *testing.T) (*Processor, storage.Provider) {
	t.Helper()
	store := storage.NewLocalStorageFs(afero.NewMemMapFs())
	return NewProcessor(store, 1), store
}

func TestProcessor_ResizeInPlace(t *testing.T) {
	p, store := newProcessorFixture(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWithContext(ctx, "images/big.jpg", bytes.NewReader(encodeImage(t, 4000, 3000, imaging.JPEG))))

	dims, resized, err := p.ResizeInPlace(ctx, "images/big.jpg", "jpg", 1920, 1080, DefaultMaxImageDimension, 85)
	require.NoError(t, err)
	assert.True(t, resized)
	assert.Equal(t, Dimensions{Width: 1440, Height: 1080}, dims)

	probed, err := p.Probe(ctx, "images/big.jpg")
	require.NoError(t, err)
	assert.Equal(t, dims, probed)

	// 第二次不再修改文件
	before, err := store.Stat(ctx, "images/big.jpg")
	require.NoError(t, err)

	dims, resized, err = p.ResizeInPlace(ctx, "images/big.jpg", "jpg", 1920, 1080, DefaultMaxImageDimension, 85)
	require.NoError(t, err)
	assert.False(t, resized)
	assert.Equal(t, Dimensions{Width: 1440, Height: 1080}, dims)

	after, err := store.Stat(ctx, "images/big.jpg")
	require.NoError(t, err)
	assert.Equal(t, before.Size, after.Size)
	assert.Equal(t, before.ModTime, after.ModTime)
}

func TestProcessor_ResizeDisabled(t *testing.T) {
	p, store := newProcessorFixture(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWithContext(ctx, "images/a.png", bytes.NewReader(encodeImage(t, 3000, 2000, imaging.PNG))))

	dims, resized, err := p.ResizeInPlace(ctx, "images/a.png", "png", 0, 0, DefaultMaxImageDimension, 85)
	require.NoError(t, err)
	assert.False(t, resized)
	assert.Equal(t, Dimensions{Width: 3000, Height: 2000}, dims)
}

func TestProcessor_ResizeCorruptImage(t *testing.T) {
	p, store := newProcessorFixture(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWithContext(ctx, "images/broken.png", bytes.NewReader([]byte("not an image"))))

	_, resized, err := p.ResizeInPlace(ctx, "images/broken.png", "png", 100, 100, DefaultMaxImageDimension, 85)
	assert.Error(t, err)
	assert.False(t, resized)

	// 原文件保持不变
	rc, err := store.GetWithContext(ctx, "images/broken.png")
	require.NoError(t, err)
	defer rc.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(rc)
	assert.Equal(t, "not an image", buf.String())
}

func TestProcessor_GenerateThumbnail(t *testing.T) {
	p, store := newProcessorFixture(t)
	ctx := context.Background()

	t.Run("small image is scaled up", func(t *testing.T) {
		require.NoError(t, store.SaveWithContext(ctx, "images/small.png", bytes.NewReader(encodeImage(t, 50, 50, imaging.PNG))))

		created, err := p.GenerateThumbnail(ctx, "images/small.png", "thumbnails/thumb_small.png", "png", 150, DefaultMaxImageDimension, 85)
		require.NoError(t, err)
		assert.True(t, created)

		dims, err := p.Probe(ctx, "thumbnails/thumb_small.png")
		require.NoError(t, err)
		assert.Equal(t, Dimensions{Width: 150, Height: 150}, dims)
	})

	t.Run("aspect ratio kept", func(t *testing.T) {
		require.NoError(t, store.SaveWithContext(ctx, "images/wide.jpg", bytes.NewReader(encodeImage(t, 600, 300, imaging.JPEG))))

		created, err := p.GenerateThumbnail(ctx, "images/wide.jpg", "thumbnails/thumb_wide.jpg", "jpg", 150, DefaultMaxImageDimension, 85)
		require.NoError(t, err)
		assert.True(t, created)

		dims, err := p.Probe(ctx, "thumbnails/thumb_wide.jpg")
		require.NoError(t, err)
		assert.Equal(t, Dimensions{Width: 150, Height: 75}, dims)
	})

	t.Run("unsupported format skipped", func(t *testing.T) {
		require.NoError(t, store.SaveWithContext(ctx, "images/photo.webp", bytes.NewReader([]byte("RIFF0000WEBP"))))

		created, err := p.GenerateThumbnail(ctx, "images/photo.webp", "thumbnails/thumb_photo.webp", "webp", 150, DefaultMaxImageDimension, 85)
		require.NoError(t, err)
		assert.False(t, created)

		exists, err := store.Exists(ctx, "thumbnails/thumb_photo.webp")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

// halfTransparent 左半边不透明、右半边全透明
func halfTransparent(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 30, G: 120, B: 220, A: 255})
		}
	}
	return img
}

func encodeTransparentPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, halfTransparent(w, h), imaging.PNG))
	return buf.Bytes()
}

// encodeTransparentGIF 两色调色板，第 0 位为透明色
func encodeTransparentGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	pal := color.Palette{color.Transparent, color.RGBA{R: 30, G: 120, B: 220, A: 255}}
	img := image.NewPaletted(image.Rect(0, 0, w, h), pal)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.SetColorIndex(x, y, 1)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decodeStored(t *testing.T, store storage.Provider, path string) image.Image {
	t.Helper()
	rc, err := store.GetWithContext(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()
	img, _, err := image.Decode(rc)
	require.NoError(t, err)
	return img
}

func alphaAt(img image.Image, x, y int) uint32 {
	_, _, _, a := img.At(x, y).RGBA()
	return a
}

func TestProcessor_KeepsTransparency(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		encode func(*testing.T, int, int) []byte
	}{
		{"png", "png", encodeTransparentPNG},
		{"gif", "gif", encodeTransparentGIF},
	}

	for _, tt := range tests {
		t.Run(tt.name+" thumbnail", func(t *testing.T) {
			p, store := newProcessorFixture(t)
			ctx := context.Background()
			src := "images/logo." + tt.ext
			dst := "thumbnails/thumb_logo." + tt.ext
			require.NoError(t, store.SaveWithContext(ctx, src, bytes.NewReader(tt.encode(t, 50, 50))))

			created, err := p.GenerateThumbnail(ctx, src, dst, tt.ext, 150, DefaultMaxImageDimension, 85)
			require.NoError(t, err)
			require.True(t, created)

			thumb := decodeStored(t, store, dst)
			assert.Equal(t, image.Rect(0, 0, 150, 150), thumb.Bounds())
			assert.Equal(t, uint32(0), alphaAt(thumb, 140, 10))
			assert.Equal(t, uint32(0xffff), alphaAt(thumb, 10, 10))
		})

		t.Run(tt.name+" resize", func(t *testing.T) {
			p, store := newProcessorFixture(t)
			ctx := context.Background()
			path := "images/banner." + tt.ext
			require.NoError(t, store.SaveWithContext(ctx, path, bytes.NewReader(tt.encode(t, 400, 200))))

			dims, resized, err := p.ResizeInPlace(ctx, path, tt.ext, 100, 100, DefaultMaxImageDimension, 85)
			require.NoError(t, err)
			require.True(t, resized)
			assert.Equal(t, Dimensions{Width: 100, Height: 50}, dims)

			out := decodeStored(t, store, path)
			assert.Equal(t, uint32(0), alphaAt(out, 90, 10))
			assert.Equal(t, uint32(0xffff), alphaAt(out, 10, 10))
		})
	}
}

func TestProcessor_RejectsOversizedDimensions(t *testing.T) {
	p, store := newProcessorFixture(t)
	ctx := context.Background()

	data := encodeImage(t, 3000, 200, imaging.PNG)
	require.NoError(t, store.SaveWithContext(ctx, "images/strip.png", bytes.NewReader(data)))

	t.Run("resize", func(t *testing.T) {
		dims, resized, err := p.ResizeInPlace(ctx, "images/strip.png", "png", 1920, 1080, 2048, 85)
		assert.ErrorIs(t, err, ErrImageTooLarge)
		assert.False(t, resized)
		assert.Equal(t, Dimensions{Width: 3000, Height: 200}, dims)

		info, err := store.Stat(ctx, "images/strip.png")
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), info.Size)
	})

	t.Run("thumbnail", func(t *testing.T) {
		created, err := p.GenerateThumbnail(ctx, "images/strip.png", "thumbnails/thumb_strip.png", "png", 150, 2048, 85)
		assert.ErrorIs(t, err, ErrImageTooLarge)
		assert.False(t, created)

		exists, err := store.Exists(ctx, "thumbnails/thumb_strip.png")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("zero disables the check", func(t *testing.T) {
		_, resized, err := p.ResizeInPlace(ctx, "images/strip.png", "png", 1920, 1080, 0, 85)
		require.NoError(t, err)
		assert.True(t, resized)
	})
}
