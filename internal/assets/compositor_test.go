package assets

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceImage(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "art.png")
	img := imaging.New(w, h, color.NRGBA{R: 255, A: 255})
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestLeftAligned(t *testing.T) {
	src := sourceImage(t, 100, 40)
	c := NewCompositor(t.TempDir())

	out, err := c.LeftAligned(src, 2.5, 0.05, 1.5)
	require.NoError(t, err)

	img, err := imaging.Open(out)
	require.NoError(t, err)

	// Artwork scales to 150x60, canvas widens to 2.5x the scaled width.
	assert.Equal(t, 375, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())

	// Artwork sits at the left margin, so the far right stays empty.
	_, _, _, a := img.At(374, 30).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(20, 30).RGBA()
	assert.NotZero(t, a)
}

func TestScaled(t *testing.T) {
	src := sourceImage(t, 100, 40)
	c := NewCompositor(t.TempDir())

	out, err := c.Scaled(src, 1.5)
	require.NoError(t, err)

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestCompositorMissingSource(t *testing.T) {
	c := NewCompositor(t.TempDir())

	_, err := c.LeftAligned("does/not/exist.png", 2.5, 0.05, 1.5)
	assert.Error(t, err)
	_, err = c.Scaled("does/not/exist.png", 1.5)
	assert.Error(t, err)
}
