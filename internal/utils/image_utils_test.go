package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/spreadscan/internal/orientation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedImage(t *testing.T) {
	cases := []struct {
		path string
		ok   bool
	}{
		{"a.jpg", true},
		{"b.JPEG", true},
		{"c.png", true},
		{"d.bmp", true},
		{"e.tiff", false},
		{"f.gif", false},
	}
	for _, c := range cases {
		if IsSupportedImage(c.path) != c.ok {
			t.Fatalf("IsSupportedImage(%s) expected %v", c.path, c.ok)
		}
	}
}

func TestIsSpreadImage(t *testing.T) {
	assert.True(t, IsSpreadImage("/x/y/IMG_001.JPG"))
	assert.True(t, IsSpreadImage("scan.jpeg"))
	assert.False(t, IsSpreadImage("scan.png"))
	assert.False(t, IsSpreadImage("jpg"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "IMG_0001", BaseName("/photos/IMG_0001.JPG"))
	assert.Equal(t, "page.v2", BaseName("page.v2.jpeg"))
}

func solid(w, h int, col color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, col)
		}
	}
	return img
}

func writeTempPNG(t *testing.T, dir string, w, h int, col color.Color) string {
	t.Helper()
	path := filepath.Join(dir, "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()
	require.NoError(t, png.Encode(f, solid(w, h, col)))
	return path
}

func TestLoadImageAndMetadata(t *testing.T) {
	dir := t.TempDir()
	p := writeTempPNG(t, dir, 10, 20, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	img, meta, err := LoadImage(p)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, orientation.TopLeft, meta.Orientation)
	assert.Positive(t, meta.SizeBytes)
}

func TestLoadImage_Errors(t *testing.T) {
	_, _, err := LoadImage("")
	require.Error(t, err)

	_, _, err = LoadImage("file.gif")
	require.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not a jpeg"), 0o600))
	_, _, err = LoadImage(bad)
	var ipe *ImageProcessingError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "decode", ipe.Operation)
}

func TestLoadUpright_PlainJPEG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spread.jpg")
	require.NoError(t, SaveJPEG(path, solid(40, 30, color.White), 90))

	img, meta, err := LoadUpright(path)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(40, 30), img.Bounds().Size())
	assert.Equal(t, 40, meta.Width)
	assert.Equal(t, orientation.TopLeft, meta.Orientation)
}

func TestEncodeJPEG(t *testing.T) {
	data, err := EncodeJPEG(solid(16, 8, color.Black), 50)
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(16, 8), decoded.Bounds().Size())

	_, err = EncodeJPEG(nil, 50)
	require.Error(t, err)
}

func TestSaveJPEG_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.jpg")
	require.NoError(t, SaveJPEG(path, solid(4, 4, color.White), 50))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestBoundingBox(t *testing.T) {
	b := BoundingBox([]Point{{3, 4}, {-1, 10}, {7, 2}})
	assert.Equal(t, Box{MinX: -1, MinY: 2, MaxX: 7, MaxY: 10}, b)
	assert.InDelta(t, 8.0, b.Width(), 1e-9)
	assert.InDelta(t, 8.0, b.Height(), 1e-9)
	assert.Equal(t, Box{}, BoundingBox(nil))

	r := b.Expand(0.5).ToRect(image.Rect(0, 0, 5, 5))
	assert.Equal(t, image.Rect(0, 1, 5, 5), r)
}

func TestCropImageRect(t *testing.T) {
	img := solid(10, 6, color.White)
	img.Set(2, 1, color.Black)
	cropped := CropImageRect(img, image.Rect(2, 1, 6, 3))
	assert.Equal(t, image.Rect(0, 0, 4, 2), cropped.Bounds())
	r, g, b, _ := cropped.At(0, 0).RGBA()
	assert.Zero(t, r+g+b)

	empty := CropImageRect(img, image.Rect(20, 20, 30, 30))
	assert.True(t, empty.Bounds().Empty())
}

func TestCloneRGBA_DoesNotAlias(t *testing.T) {
	src := solid(3, 3, color.White)
	dst := CloneRGBA(src)
	dst.Set(1, 1, color.Black)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, src.RGBAAt(1, 1))
}

func TestStrokePolygon(t *testing.T) {
	img := solid(40, 30, color.White)
	cyan := color.RGBA{0, 255, 255, 255}
	poly := []Point{{5, 5}, {30, 5}, {30, 20}, {5, 20}}
	StrokePolygon(img, poly, cyan, 3)

	// On the outline.
	assert.Equal(t, cyan, img.RGBAAt(15, 5))
	assert.Equal(t, cyan, img.RGBAAt(30, 12))
	// Inside and outside stay untouched.
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(15, 12))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(38, 28))
}

func TestStrokePolygon_Degenerate(t *testing.T) {
	img := solid(10, 10, color.White)
	before := CloneRGBA(img)
	StrokePolygon(img, []Point{{1, 1}}, color.Black, 3)
	StrokePolygon(img, []Point{{1, 1}, {8, 8}}, color.Black, 0)
	assert.Equal(t, before.Pix, img.Pix)
}
