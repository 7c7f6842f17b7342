// Package pdf assembles annotated page rasters into a single PDF document.
package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// DefaultFileName is the name of the compiled document in the output directory.
const DefaultFileName = "annotated.pdf"

// ErrNoImages is returned when Compile is given nothing to import.
var ErrNoImages = errors.New("no images to compile")

// Compile writes one PDF page per image, in order, to outFile. An existing
// file is replaced rather than appended to.
func Compile(images []string, outFile string) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	for _, img := range images {
		if _, err := os.Stat(img); err != nil {
			return fmt.Errorf("cannot access %s: %w", img, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outFile), 0o750); err != nil {
		return fmt.Errorf("create pdf directory: %w", err)
	}
	if err := os.Remove(outFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", outFile, err)
	}
	if err := api.ImportImagesFile(images, outFile, pdfcpu.DefaultImportConfig(), nil); err != nil {
		return fmt.Errorf("import images into pdf: %w", err)
	}
	return nil
}

// PageCount returns the number of pages of a PDF file.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pdf pages: %w", err)
	}
	return n, nil
}
