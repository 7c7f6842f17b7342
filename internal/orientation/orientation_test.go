package orientation

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient builds an image where every pixel has a unique colour derived
// from its coordinates, so any misplaced pixel is detectable.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func assertSamePixels(t *testing.T, want, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds().Dx(), got.Bounds().Dx(), "width")
	require.Equal(t, want.Bounds().Dy(), got.Bounds().Dy(), "height")
	wb, gb := want.Bounds(), got.Bounds()
	for y := range wb.Dy() {
		for x := range wb.Dx() {
			w := color.RGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y))
			g := color.RGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y))
			if w != g {
				t.Fatalf("pixel (%d,%d): want %v, got %v", x, y, w, g)
			}
		}
	}
}

func TestCodeProperties(t *testing.T) {
	assert.False(t, Code(0).Valid())
	assert.False(t, Code(9).Valid())
	for _, c := range All {
		assert.True(t, c.Valid(), c.String())
	}

	swapping := map[Code]bool{LeftTop: true, RightTop: true, RightBottom: true, LeftBottom: true}
	for _, c := range All {
		assert.Equal(t, swapping[c], c.SwapsDimensions(), c.String())
	}
	assert.Equal(t, "orientation(12)", Code(12).String())
}

func TestNormalize_IdentityReturnsInput(t *testing.T) {
	src := gradient(4, 3)
	out, err := Normalize(src, TopLeft)
	require.NoError(t, err)
	assert.Same(t, src, out.(*image.NRGBA))
}

func TestNormalize_InvalidCode(t *testing.T) {
	_, err := Normalize(gradient(2, 2), Code(0))
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = Normalize(gradient(2, 2), Code(9))
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestNormalize_Dimensions(t *testing.T) {
	src := gradient(6, 4)
	for _, c := range All {
		out, err := Normalize(src, c)
		require.NoError(t, err)
		b := out.Bounds()
		if c.SwapsDimensions() {
			assert.Equal(t, image.Pt(4, 6), b.Size(), c.String())
		} else {
			assert.Equal(t, image.Pt(6, 4), b.Size(), c.String())
		}
		assert.Equal(t, image.Point{}, b.Min, c.String())
	}
}

// TestNormalize_CornerMapping checks which source corner ends up at the
// output's top-left pixel.
func TestNormalize_CornerMapping(t *testing.T) {
	const w, h = 5, 3
	src := gradient(w, h)
	tl, tr := image.Pt(0, 0), image.Pt(w-1, 0)
	bl, br := image.Pt(0, h-1), image.Pt(w-1, h-1)

	table := map[Code]image.Point{
		TopLeft:     tl,
		TopRight:    tr,
		BottomRight: br,
		BottomLeft:  bl,
		LeftTop:     tl,
		RightTop:    bl,
		RightBottom: br,
		LeftBottom:  tr,
	}

	for code, corner := range table {
		t.Run(code.String(), func(t *testing.T) {
			out, err := Normalize(src, code)
			require.NoError(t, err)
			want := color.RGBAModel.Convert(src.At(corner.X, corner.Y))
			got := color.RGBAModel.Convert(out.At(0, 0))
			assert.Equal(t, want, got)
		})
	}
}

// TestNormalize_MatchesImaging compares every code against the equivalent
// imaging operation.
func TestNormalize_MatchesImaging(t *testing.T) {
	src := gradient(7, 4)
	ref := map[Code]func(image.Image) *image.NRGBA{
		TopRight:    imaging.FlipH,
		BottomRight: imaging.Rotate180,
		BottomLeft:  imaging.FlipV,
		LeftTop:     imaging.Transpose,
		RightTop:    imaging.Rotate270,
		RightBottom: imaging.Transverse,
		LeftBottom:  imaging.Rotate90,
	}
	for code, fn := range ref {
		t.Run(code.String(), func(t *testing.T) {
			out, err := Normalize(src, code)
			require.NoError(t, err)
			assertSamePixels(t, fn(src), out)
		})
	}
}

func TestNormalize_InverseRoundTrip(t *testing.T) {
	src := gradient(9, 5)
	for _, c := range All {
		t.Run(c.String(), func(t *testing.T) {
			once, err := Normalize(src, c)
			require.NoError(t, err)
			back, err := Normalize(once, Inverse(c))
			require.NoError(t, err)
			assertSamePixels(t, src, back)
		})
	}
}

func TestNormalize_NonZeroOrigin(t *testing.T) {
	full := gradient(10, 8)
	sub := full.SubImage(image.Rect(3, 2, 8, 5))
	out, err := Normalize(sub, RightTop)
	require.NoError(t, err)
	assertSamePixels(t, imaging.Rotate270(sub), out)
}

func TestRead_NoExif(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(4, 4), nil))
	assert.Equal(t, TopLeft, Read(&buf))
	assert.Equal(t, TopLeft, Read(bytes.NewReader([]byte("not an image"))))
}

func TestRead_ExifOrientation(t *testing.T) {
	for _, c := range All {
		data := withOrientation(t, c)
		assert.Equal(t, c, Read(bytes.NewReader(data)), c.String())
	}
}
