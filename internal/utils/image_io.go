package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/spreadscan/internal/orientation"
	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists extensions accepted by LoadImage.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// SpreadExtensions lists extensions picked up when scanning a directory of
// photographed spreads.
var SpreadExtensions = []string{".jpg", ".jpeg"}

// ImageProcessingError represents errors that can occur while loading,
// encoding or writing images.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	return hasExtension(path, SupportedImageExtensions)
}

// IsSpreadImage reports whether the path looks like a photographed spread.
func IsSpreadImage(path string) bool {
	return hasExtension(path, SpreadExtensions)
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range exts {
		if ext == s {
			return true
		}
	}
	return false
}

// BaseName returns the file name without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path        string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	Orientation orientation.Code
}

// LoadImage reads and decodes an image file. The returned pixels are as
// stored; Orientation in the metadata says how they must be turned upright.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		err := fmt.Errorf("unsupported format: %s", filepath.Ext(path))
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: reading user-provided image path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: err}
	}

	b := img.Bounds()
	meta := ImageMetadata{
		Path:        path,
		Format:      format,
		SizeBytes:   int64(len(data)),
		Width:       b.Dx(),
		Height:      b.Dy(),
		Orientation: orientation.TopLeft,
	}
	if format == "jpeg" {
		meta.Orientation = orientation.Read(bytes.NewReader(data))
	}
	return img, meta, nil
}

// LoadUpright loads an image and applies its EXIF orientation so the result
// has a top-left origin.
func LoadUpright(path string) (image.Image, ImageMetadata, error) {
	img, meta, err := LoadImage(path)
	if err != nil {
		return nil, meta, err
	}
	upright, err := orientation.Normalize(img, meta.Orientation)
	if err != nil {
		return nil, meta, &ImageProcessingError{Operation: "orient", Err: err}
	}
	b := upright.Bounds()
	meta.Width, meta.Height = b.Dx(), b.Dy()
	return upright, meta, nil
}

// EncodeJPEG compresses img at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "encode", Err: errors.New("input image is nil")}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, &ImageProcessingError{Operation: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

// SaveJPEG encodes img and writes it to path, creating parent directories.
func SaveJPEG(path string, img image.Image, quality int) error {
	data, err := EncodeJPEG(img, quality)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	return nil
}
