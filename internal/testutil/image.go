package testutil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// SpreadConfig describes a synthetic two-page spread.
type SpreadConfig struct {
	Width      int
	Height     int
	LeftText   string
	RightText  string
	Background color.Color
	Foreground color.Color
	// Binder, when non-zero, paints a dark band of this width in the middle.
	Binder int
}

// DefaultSpreadConfig returns an 800x600 spread with text on both halves.
func DefaultSpreadConfig() SpreadConfig {
	return SpreadConfig{
		Width:      800,
		Height:     600,
		LeftText:   "Left page",
		RightText:  "Right page",
		Background: color.White,
		Foreground: color.Black,
	}
}

// GenerateSpread renders a synthetic spread: each half carries its own line
// of text centred horizontally within the half.
func GenerateSpread(cfg SpreadConfig) *image.RGBA {
	if cfg.Background == nil {
		cfg.Background = color.White
	}
	if cfg.Foreground == nil {
		cfg.Foreground = color.Black
	}
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	half := (cfg.Width - cfg.Binder) / 2
	if cfg.Binder > 0 {
		band := image.Rect(half, 0, half+cfg.Binder, cfg.Height)
		draw.Draw(img, band, &image.Uniform{color.RGBA{40, 40, 40, 255}}, image.Point{}, draw.Src)
	}
	drawCentered(img, cfg.LeftText, 0, half, cfg.Height, cfg.Foreground)
	drawCentered(img, cfg.RightText, half+cfg.Binder, cfg.Width, cfg.Height, cfg.Foreground)
	return img
}

func drawCentered(img *image.RGBA, text string, x0, x1, height int, fg color.Color) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Src: &image.Uniform{fg}, Face: face}
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	drawer.Dot = fixed.P(x0+(x1-x0-w)/2, (height+h)/2)
	drawer.DrawString(text)
}

// EncodeJPEG encodes img at quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJPEG encodes img and writes it to path. A non-zero orientation is
// spliced in as an EXIF tag.
func WriteJPEG(path string, img image.Image, orientation uint16) error {
	data, err := EncodeJPEG(img, 90)
	if err != nil {
		return err
	}
	if orientation != 0 {
		if data, err = SpliceOrientation(data, orientation); err != nil {
			return err
		}
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// SpliceOrientation inserts an APP1 EXIF segment holding a single
// orientation tag directly after the JPEG SOI marker.
func SpliceOrientation(jpegData []byte, orientation uint16) ([]byte, error) {
	if len(jpegData) < 2 || jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		return nil, errors.New("not a jpeg")
	}

	// Little-endian TIFF header with one IFD entry.
	var tiff bytes.Buffer
	tiff.WriteString("II")
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(42))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(1))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0112))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(3))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(1))
	_ = binary.Write(&tiff, binary.LittleEndian, orientation)
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	var out bytes.Buffer
	out.Write(jpegData[:2])
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(payload)+2)) //nolint:gosec // G115: tiny segment
	out.Write(payload)
	out.Write(jpegData[2:])
	return out.Bytes(), nil
}

// LoadImageFile decodes the image at path.
func LoadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // G304: test file path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	return img, err
}

// CompareImages reports whether two images of equal bounds differ on
// average by no more than tolerance, as a fraction of the largest possible
// per-pixel difference.
func CompareImages(img1, img2 image.Image, tolerance float64) bool {
	bounds1 := img1.Bounds()
	if bounds1.Dx() != img2.Bounds().Dx() || bounds1.Dy() != img2.Bounds().Dy() {
		return false
	}
	off := img2.Bounds().Min.Sub(bounds1.Min)

	var totalDiff, pixelCount float64
	for y := bounds1.Min.Y; y < bounds1.Max.Y; y++ {
		for x := bounds1.Min.X; x < bounds1.Max.X; x++ {
			r1, g1, b1, a1 := img1.At(x, y).RGBA()
			r2, g2, b2, a2 := img2.At(x+off.X, y+off.Y).RGBA()
			dr := float64(r1) - float64(r2)
			dg := float64(g1) - float64(g2)
			db := float64(b1) - float64(b2)
			da := float64(a1) - float64(a2)
			totalDiff += math.Sqrt(dr*dr + dg*dg + db*db + da*da)
			pixelCount++
		}
	}
	if pixelCount == 0 {
		return true
	}
	maxDiff := math.Sqrt(4 * 65535 * 65535)
	return (totalDiff/pixelCount)/maxDiff <= tolerance
}
