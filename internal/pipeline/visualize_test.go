package pipeline

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tu "github.com/MeKo-Tech/spreadscan/internal/testutil"
	"github.com/MeKo-Tech/spreadscan/internal/utils"
	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

func grey(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

func TestRenderOverlay_FootprintOnly(t *testing.T) {
	src := grey(100, 80)
	poly := tu.Quad(20, 20, 40, 30)
	style := DefaultOverlayStyle()

	out := RenderOverlay(src, [][]utils.Point{poly}, style)
	require.NotNil(t, out)
	assert.Equal(t, src.Bounds(), out.Bounds())

	footprint := utils.BoundingBox(poly).Expand(style.Width).ToRect(out.Bounds())
	changed := 0
	for y := range 80 {
		for x := range 100 {
			if out.RGBAAt(x, y) == src.RGBAAt(x, y) {
				continue
			}
			changed++
			assert.True(t, image.Pt(x, y).In(footprint), "pixel %d,%d outside stroke footprint", x, y)
		}
	}
	assert.Positive(t, changed)

	// Stroke is centred on the outline; the interior stays untouched.
	assert.Equal(t, color.RGBA{0, 255, 255, 255}, out.RGBAAt(40, 20))
	assert.Equal(t, color.RGBA{0, 255, 255, 255}, out.RGBAAt(20, 35))
	assert.Equal(t, src.RGBAAt(40, 35), out.RGBAAt(40, 35))
}

func TestRenderOverlay_DoesNotMutateSource(t *testing.T) {
	src := grey(50, 50)
	before := append([]uint8(nil), src.Pix...)
	_ = RenderOverlay(src, [][]utils.Point{tu.Quad(5, 5, 20, 20)}, DefaultOverlayStyle())
	assert.Equal(t, before, src.Pix)
}

func TestRenderOverlay_SkipsDegenerate(t *testing.T) {
	src := grey(30, 30)
	out := RenderOverlay(src, [][]utils.Point{nil, {{X: 3, Y: 3}}}, DefaultOverlayStyle())
	assert.Equal(t, src.Pix, out.Pix)

	assert.Nil(t, RenderOverlay(nil, nil, DefaultOverlayStyle()))
}

func TestRenderOverlay_NonZeroOrigin(t *testing.T) {
	src := grey(60, 60).SubImage(image.Rect(10, 10, 60, 60))
	out := RenderOverlay(src, [][]utils.Point{tu.Quad(5, 5, 10, 10)}, OverlayStyle{Color: color.Black, Width: 2})
	assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(10, 5))
}

func TestAnnotateAndSave(t *testing.T) {
	dir := t.TempDir()
	page := grey(200, 100)
	read := tu.PageResult("c", 1, "a", "b").Read

	words := AnnotationPath(filepath.Join(dir, "nested"), "p_L", AnnotateWords)
	lines := AnnotationPath(filepath.Join(dir, "nested"), "p_L", AnnotateLines)
	assert.Equal(t, filepath.Join(dir, "nested", "p_L_words.jpg"), words)
	assert.Equal(t, filepath.Join(dir, "nested", "p_L_lines.jpg"), lines)

	require.NoError(t, AnnotateAndSave(page, read, words, AnnotateWords, DefaultOverlayStyle(), 90))
	require.NoError(t, AnnotateAndSave(page, read, lines, AnnotateLines, DefaultOverlayStyle(), 90))

	w, err := tu.LoadImageFile(words)
	require.NoError(t, err)
	l, err := tu.LoadImageFile(lines)
	require.NoError(t, err)
	assert.Equal(t, page.Bounds(), w.Bounds())

	// Word boxes split the line at x=50..60; only the word overlay strokes there.
	r, g, b, _ := w.At(50, 20).RGBA()
	assert.Greater(t, g>>8, r>>8+60, "word stroke expected, got %d,%d,%d", r>>8, g>>8, b>>8)
	r, g, _, _ = l.At(55, 20).RGBA()
	assert.InDelta(t, float64(r>>8), float64(g>>8), 20, "line overlay has no stroke inside the line")
}

func TestAnnotateAndSave_NilRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_words.jpg")
	require.NoError(t, AnnotateAndSave(grey(10, 10), (*vision.ReadResult)(nil), path, AnnotateWords, DefaultOverlayStyle(), 50))
	assert.True(t, tu.FileExists(path))
}

func TestAnnotationMode(t *testing.T) {
	assert.Equal(t, []AnnotationMode{AnnotateWords}, AnnotateWords.Modes())
	assert.Equal(t, []AnnotationMode{AnnotateLines, AnnotateWords}, (AnnotateWords | AnnotateLines).Modes())
	assert.Empty(t, AnnotationMode(0).Modes())
	assert.Equal(t, "lines+words", (AnnotateWords | AnnotateLines).String())
	assert.False(t, AnnotateWords.Has(0))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("Cyan")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 255, 255, 255}, c)

	c, err = ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 128, 0, 255}, c)

	for _, bad := range []string{"", "teal", "#12345", "#gggggg"} {
		_, err := ParseColor(bad)
		require.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}
