// Package split partitions an upright journal spread into page images.
package split

import (
	"errors"
	"fmt"
	"image"

	"github.com/MeKo-Tech/spreadscan/internal/utils"
)

// Side suffixes appended to the source base name.
const (
	LeftSuffix  = "_L"
	RightSuffix = "_R"
)

// ErrInvalidDimension is returned when a spread cannot hold two non-empty
// pages around the binder band.
var ErrInvalidDimension = errors.New("invalid dimension")

// Page is a named region of an upright spread with its own pixel buffer.
type Page struct {
	Name string
	// Rect locates the page inside the parent spread.
	Rect image.Rectangle
	// Image has bounds starting at (0,0) and the size of Rect.
	Image image.Image
}

// Width returns the page width in pixels.
func (p Page) Width() int { return p.Rect.Dx() }

// Height returns the page height in pixels.
func (p Page) Height() int { return p.Rect.Dy() }

// Rects computes the left and right page rectangles for a spread of the given
// size. The binder band of binderWidth pixels between them belongs to neither.
func Rects(width, height, binderWidth int) (image.Rectangle, image.Rectangle, error) {
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, image.Rectangle{}, fmt.Errorf("%w: spread is %dx%d", ErrInvalidDimension, width, height)
	}
	if binderWidth < 0 {
		return image.Rectangle{}, image.Rectangle{}, fmt.Errorf("%w: negative binder width %d", ErrInvalidDimension, binderWidth)
	}
	half := (width - binderWidth) / 2
	if half <= 0 || half+binderWidth >= width {
		return image.Rectangle{}, image.Rectangle{}, fmt.Errorf(
			"%w: binder width %d leaves no room for two pages in width %d", ErrInvalidDimension, binderWidth, width)
	}
	left := image.Rect(0, 0, half, height)
	right := image.Rect(half+binderWidth, 0, width, height)
	return left, right, nil
}

// Split cuts img into a left and right page named {baseName}_L and
// {baseName}_R. Page pixels are copied; img is not retained.
func Split(img image.Image, baseName string, binderWidth int) (Page, Page, error) {
	if img == nil {
		return Page{}, Page{}, fmt.Errorf("%w: nil image", ErrInvalidDimension)
	}
	b := img.Bounds()
	lr, rr, err := Rects(b.Dx(), b.Dy(), binderWidth)
	if err != nil {
		return Page{}, Page{}, err
	}
	left := Page{Name: baseName + LeftSuffix, Rect: lr, Image: utils.CropImageRect(img, lr.Add(b.Min))}
	right := Page{Name: baseName + RightSuffix, Rect: rr, Image: utils.CropImageRect(img, rr.Add(b.Min))}
	return left, right, nil
}

// Whole wraps an entire upright image as a single page named baseName.
func Whole(img image.Image, baseName string) (Page, error) {
	if img == nil {
		return Page{}, fmt.Errorf("%w: nil image", ErrInvalidDimension)
	}
	b := img.Bounds()
	if b.Empty() {
		return Page{}, fmt.Errorf("%w: empty image", ErrInvalidDimension)
	}
	return Page{Name: baseName, Rect: image.Rect(0, 0, b.Dx(), b.Dy()), Image: img}, nil
}
