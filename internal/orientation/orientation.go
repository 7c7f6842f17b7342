// Package orientation maps images tagged with an EXIF orientation code onto a
// canonical top-left-origin raster.
package orientation

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Code is an EXIF orientation value. It describes where the stored raster's
// first row and first column sit when the image is viewed upright.
type Code uint8

// The eight EXIF orientation codes.
const (
	TopLeft     Code = 1 // identity
	TopRight    Code = 2 // mirrored horizontally
	BottomRight Code = 3 // rotated 180°
	BottomLeft  Code = 4 // mirrored vertically
	LeftTop     Code = 5 // transposed
	RightTop    Code = 6 // needs 90° clockwise rotation
	RightBottom Code = 7 // transversed
	LeftBottom  Code = 8 // needs 90° counter-clockwise rotation
)

// ErrInvalidCode is returned for values outside 1..8.
var ErrInvalidCode = errors.New("invalid orientation code")

// All lists every valid code in ascending order.
var All = []Code{TopLeft, TopRight, BottomRight, BottomLeft, LeftTop, RightTop, RightBottom, LeftBottom}

// Valid reports whether c is one of the eight EXIF codes.
func (c Code) Valid() bool { return c >= TopLeft && c <= LeftBottom }

// SwapsDimensions reports whether normalizing c exchanges width and height.
func (c Code) SwapsDimensions() bool { return c >= LeftTop && c <= LeftBottom }

// String returns a short human readable name.
func (c Code) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	case LeftTop:
		return "left-top"
	case RightTop:
		return "right-top"
	case RightBottom:
		return "right-bottom"
	case LeftBottom:
		return "left-bottom"
	default:
		return fmt.Sprintf("orientation(%d)", uint8(c))
	}
}

// Inverse returns the code whose normalization undoes the normalization of c.
// Only the two quarter turns differ from their inverse.
func Inverse(c Code) Code {
	switch c {
	case RightTop:
		return LeftBottom
	case LeftBottom:
		return RightTop
	default:
		return c
	}
}

// Read extracts the orientation tag from an encoded image. Images without
// EXIF data, or with an unreadable or out-of-range tag, are TopLeft.
func Read(r io.Reader) Code {
	x, err := exif.Decode(r)
	if err != nil {
		return TopLeft
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return TopLeft
	}
	v, err := tag.Int(0)
	if err != nil {
		return TopLeft
	}
	if v < int(TopLeft) || v > int(LeftBottom) {
		return TopLeft
	}
	return Code(v) //nolint:gosec // G115: range checked above
}

// Normalize returns img redrawn so that it displays upright with no mirroring.
// TopLeft returns img itself. Every other code allocates a new RGBA raster.
func Normalize(img image.Image, c Code) (image.Image, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCode, uint8(c))
	}
	if img == nil {
		return nil, errors.New("normalize: nil image")
	}
	if c == TopLeft {
		return img, nil
	}

	sr := img.Bounds()
	w, h := sr.Dx(), sr.Dy()
	dw, dh := w, h
	if c.SwapsDimensions() {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.NearestNeighbor.Transform(dst, transform(c, sr), img, sr, draw.Src, nil)
	return dst, nil
}

// transform builds the source-to-destination matrix for c. Offsets use the
// source width and height, before any swap.
func transform(c Code, sr image.Rectangle) f64.Aff3 {
	w, h := float64(sr.Dx()), float64(sr.Dy())
	var m f64.Aff3
	switch c {
	case TopRight:
		m = f64.Aff3{-1, 0, w, 0, 1, 0}
	case BottomRight:
		m = f64.Aff3{-1, 0, w, 0, -1, h}
	case BottomLeft:
		m = f64.Aff3{1, 0, 0, 0, -1, h}
	case LeftTop:
		m = f64.Aff3{0, 1, 0, 1, 0, 0}
	case RightTop:
		m = f64.Aff3{0, -1, h, 1, 0, 0}
	case RightBottom:
		m = f64.Aff3{0, -1, h, -1, 0, w}
	case LeftBottom:
		m = f64.Aff3{0, 1, 0, -1, 0, w}
	default:
		m = f64.Aff3{1, 0, 0, 0, 1, 0}
	}
	// Shift a non-zero source origin to (0,0) before applying m.
	return compose(m, f64.Aff3{1, 0, -float64(sr.Min.X), 0, 1, -float64(sr.Min.Y)})
}

// compose returns the matrix applying b first and then a.
func compose(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}
