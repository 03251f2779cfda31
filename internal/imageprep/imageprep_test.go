package imageprep

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareKeepsSmallImage(t *testing.T) {
	data := pngBytes(t, 40, 20)

	p, err := Prepare(data, 100)
	require.NoError(t, err)

	assert.False(t, p.Resized)
	assert.Equal(t, data, p.Data)
	assert.Equal(t, "png", p.Format)
	assert.Equal(t, "image/png", p.MimeType)
	assert.Equal(t, 40, p.Width)
	assert.Equal(t, 20, p.Height)
}

func TestPrepareFitsLargeImage(t *testing.T) {
	p, err := Prepare(pngBytes(t, 400, 200), 100)
	require.NoError(t, err)

	assert.True(t, p.Resized)
	assert.Equal(t, "image/jpeg", p.MimeType)
	assert.Equal(t, 100, p.Width)
	assert.Equal(t, 50, p.Height)

	_, format, err := image.Decode(bytes.NewReader(p.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestPrepareZeroLimitDisablesResize(t *testing.T) {
	p, err := Prepare(pngBytes(t, 300, 10), 0)
	require.NoError(t, err)
	assert.False(t, p.Resized)
	assert.Equal(t, 300, p.Width)
}

func TestPrepareRejectsNonImage(t *testing.T) {
	_, err := Prepare([]byte("This is a test image file"), 100)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestHasImageExtension(t *testing.T) {
	for _, name := range []string{"cat.jpg", "CAT.JPEG", "a/b/c.png", "x.bmp", "y.gif"} {
		assert.True(t, HasImageExtension(name), name)
	}
	for _, name := range []string{"notes.txt", "image", "photo.webp"} {
		assert.False(t, HasImageExtension(name), name)
	}
}
