package testutil

import (
	"bytes"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSpread(t *testing.T) {
	cfg := DefaultSpreadConfig()
	cfg.Binder = 20
	img := GenerateSpread(cfg)

	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{40, 40, 40, 255}, img.RGBAAt(400, 10))

	var dark int
	for x := range 390 {
		if img.RGBAAt(x, 300).R < 128 {
			dark++
		}
	}
	assert.Positive(t, dark, "left text should be drawn near the vertical centre")
}

func TestWriteJPEG_WithOrientation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "x.jpg")
	require.NoError(t, WriteJPEG(path, GenerateSpread(DefaultSpreadConfig()), 6))

	img, err := LoadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestSpliceOrientation(t *testing.T) {
	data, err := EncodeJPEG(GenerateSpread(SpreadConfig{Width: 8, Height: 8, Background: color.White}), 80)
	require.NoError(t, err)

	out, err := SpliceOrientation(data, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xE1}, out[:4])
	assert.True(t, bytes.Contains(out, []byte("Exif\x00\x00")))

	_, err = jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	_, err = SpliceOrientation([]byte("nope"), 1)
	require.Error(t, err)
}

func TestCompareImages(t *testing.T) {
	a := GenerateSpread(DefaultSpreadConfig())
	b := GenerateSpread(DefaultSpreadConfig())
	assert.True(t, CompareImages(a, b, 0))

	cfg := DefaultSpreadConfig()
	cfg.Width = 10
	assert.False(t, CompareImages(a, GenerateSpread(cfg), 1))
}
