package utils

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	mt, err := DetectContentType(&buf)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)

	mt, err = DetectContentType(strings.NewReader("%PDF-1.4\n%âãÏÓ\n"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mt)

	mt, err = DetectContentType(strings.NewReader("plain words"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mt, "text/plain"))
}
