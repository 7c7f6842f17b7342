package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/spreadscan/internal/utils"
	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

// AnnotationMode selects which outlines are drawn.
type AnnotationMode uint8

// Annotation modes. Words is the default; Lines is opt-in.
const (
	AnnotateWords AnnotationMode = 1 << iota
	AnnotateLines
)

// Has reports whether all of o is selected.
func (m AnnotationMode) Has(o AnnotationMode) bool { return m&o == o && o != 0 }

// Modes returns the single modes in m, lines first.
func (m AnnotationMode) Modes() []AnnotationMode {
	var out []AnnotationMode
	for _, single := range []AnnotationMode{AnnotateLines, AnnotateWords} {
		if m.Has(single) {
			out = append(out, single)
		}
	}
	return out
}

func (m AnnotationMode) String() string {
	var names []string
	if m.Has(AnnotateLines) {
		names = append(names, "lines")
	}
	if m.Has(AnnotateWords) {
		names = append(names, "words")
	}
	return strings.Join(names, "+")
}

// suffix is the file name suffix for a single mode.
func (m AnnotationMode) suffix() string {
	if m == AnnotateLines {
		return "_lines"
	}
	return "_words"
}

// OverlayStyle is the stroke used for outlines.
type OverlayStyle struct {
	Color color.Color
	Width float64
}

// DefaultOverlayStyle is a cyan stroke three pixels wide.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{Color: color.RGBA{0, 255, 255, 255}, Width: 3}
}

var namedColors = map[string]color.RGBA{
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 255, 0, 255},
	"blue":    {0, 0, 255, 255},
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
}

// ErrInvalidColor is returned by ParseColor.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor accepts a color name or #rrggbb.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil //nolint:gosec // G115: masked bytes
		}
	}
	return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// RenderOverlay copies img into a new RGBA raster and strokes every polygon
// with at least two points onto the copy. img is not modified.
func RenderOverlay(img image.Image, polygons [][]utils.Point, style OverlayStyle) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := utils.CloneRGBA(img)
	if style.Color == nil {
		style.Color = DefaultOverlayStyle().Color
	}
	for _, poly := range polygons {
		if len(poly) < 2 {
			continue
		}
		utils.StrokePolygon(dst, poly, style.Color, style.Width)
	}
	return dst
}

// AnnotationPath returns {dir}/{page}_words.jpg or {dir}/{page}_lines.jpg.
func AnnotationPath(dir, page string, mode AnnotationMode) string {
	return filepath.Join(dir, page+mode.suffix()+".jpg")
}

// AnnotateAndSave draws the word or line outlines of read over img and
// writes the JPEG to path, creating parent directories. A nil read saves an
// unannotated copy.
func AnnotateAndSave(img image.Image, read *vision.ReadResult, path string, mode AnnotationMode, style OverlayStyle, quality int) error {
	var polys [][]utils.Point
	if mode == AnnotateLines {
		polys = read.LinePolygons()
	} else {
		polys = read.WordPolygons()
	}
	out := RenderOverlay(img, polys, style)
	if out == nil {
		return errors.New("nothing to annotate")
	}
	return utils.SaveJPEG(path, out, quality)
}
