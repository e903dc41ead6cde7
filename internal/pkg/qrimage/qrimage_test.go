package qrimage

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_PNG(t *testing.T) {
	r := NewRenderer(300)

	b, err := r.PNG("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	// Quiet zone stays white.
	cr, cg, cb, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), cr)
	assert.Equal(t, uint32(0xffff), cg)
	assert.Equal(t, uint32(0xffff), cb)
}

func TestRenderer_DataURL(t *testing.T) {
	r := NewRenderer(0)

	url, err := r.DataURL("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestRenderer_TooSmall(t *testing.T) {
	r := NewRenderer(10)

	_, err := r.PNG("0123456789abcdef0123456789abcdef")
	assert.Error(t, err)
}
