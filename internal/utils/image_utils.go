package utils

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"
)

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box represents an axis-aligned bounding box in float coordinates.
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Expand grows the box by d on every side.
func (b Box) Expand(d float64) Box {
	return Box{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// ToRect converts a Box to the smallest enclosing image.Rectangle, clamped to bounds.
func (b Box) ToRect(bounds image.Rectangle) image.Rectangle {
	r := image.Rect(
		int(math.Floor(b.MinX)), int(math.Floor(b.MinY)),
		int(math.Ceil(b.MaxX)), int(math.Ceil(b.MaxY)),
	)
	return r.Intersect(bounds)
}

// BoundingBox returns the axis-aligned bounding box for a set of points.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	b := Box{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// CropImageRect copies the given rectangle of img into a new image whose
// bounds start at (0,0). The rectangle is clipped to the image bounds.
func CropImageRect(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// CloneRGBA copies img into a fresh RGBA raster with origin (0,0).
func CloneRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// StrokePolygon draws the closed outline through pts onto dst as an
// antialiased stroke of the given width. Vertices get square joins.
func StrokePolygon(dst *image.RGBA, pts []Point, col color.Color, width float64) {
	if len(pts) < 2 || width <= 0 {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	hw := width / 2
	origin := Point{X: float64(b.Min.X), Y: float64(b.Min.Y)}

	for i := range pts {
		a := pts[i]
		c := pts[(i+1)%len(pts)]
		addSegment(r, a, c, hw, origin)
	}
	for _, p := range pts {
		addSquare(r, p, hw, origin)
	}
	r.Draw(dst, b, image.NewUniform(col), image.Point{})
}

// addSegment adds the rectangle covering segment a-c at half width hw. All
// quads are wound the same way so overlapping coverage never cancels.
func addSegment(r *vector.Rasterizer, a, c Point, hw float64, origin Point) {
	dx, dy := c.X-a.X, c.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	quad(r, origin,
		Point{X: a.X + nx, Y: a.Y + ny},
		Point{X: c.X + nx, Y: c.Y + ny},
		Point{X: c.X - nx, Y: c.Y - ny},
		Point{X: a.X - nx, Y: a.Y - ny},
	)
}

func addSquare(r *vector.Rasterizer, p Point, hw float64, origin Point) {
	quad(r, origin,
		Point{X: p.X - hw, Y: p.Y + hw},
		Point{X: p.X + hw, Y: p.Y + hw},
		Point{X: p.X + hw, Y: p.Y - hw},
		Point{X: p.X - hw, Y: p.Y - hw},
	)
}

func quad(r *vector.Rasterizer, origin Point, p0, p1, p2, p3 Point) {
	r.MoveTo(float32(p0.X-origin.X), float32(p0.Y-origin.Y))
	r.LineTo(float32(p1.X-origin.X), float32(p1.Y-origin.Y))
	r.LineTo(float32(p2.X-origin.X), float32(p2.Y-origin.Y))
	r.LineTo(float32(p3.X-origin.X), float32(p3.Y-origin.Y))
	r.ClosePath()
}
