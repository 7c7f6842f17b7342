// Package batch resolves the run input (a directory of spread photos or a
// manifest file) into the ordered list of entries to process.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/spreadscan/internal/utils"
)

// DefaultInput is used when no input argument is given.
const DefaultInput = "images"

var (
	// ErrInputNotFound is returned when the input path does not exist or is
	// neither a directory nor a manifest.
	ErrInputNotFound = errors.New("input not found")
	// ErrNoImages is returned when the input yields no entries.
	ErrNoImages = errors.New("no images to process")
)

// Entry is one image to process.
type Entry struct {
	Path  string `json:"path"  yaml:"path"`
	Split bool   `json:"split" yaml:"split"`
}

// Source says where the entries came from.
type Source string

// Input sources.
const (
	SourceDirectory Source = "directory"
	SourceManifest  Source = "manifest"
	SourceFile      Source = "file"
)

// Selection is a resolved input.
type Selection struct {
	Input   string
	Source  Source
	BaseDir string
	Entries []Entry
}

// Resolve turns input into a Selection. Directories are scanned without
// recursion and every spread image is split; manifests (.json, .yaml, .yml)
// are read as written; a single spread image is processed as one split entry.
// An empty result returns the selection together with ErrNoImages.
func Resolve(input string) (*Selection, error) {
	if strings.TrimSpace(input) == "" {
		input = DefaultInput
	}
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}

	sel := &Selection{Input: input}
	switch {
	case info.IsDir():
		sel.Source = SourceDirectory
		sel.BaseDir = input
		sel.Entries, err = Discover(input)
	case IsManifest(input):
		sel.Source = SourceManifest
		sel.BaseDir, err = filepath.Abs(filepath.Dir(input))
		if err == nil {
			sel.Entries, err = LoadManifest(input)
		}
	case utils.IsSpreadImage(input):
		sel.Source = SourceFile
		sel.BaseDir = filepath.Dir(input)
		sel.Entries = []Entry{{Path: input, Split: true}}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}
	if err != nil {
		return nil, err
	}
	if len(sel.Entries) == 0 {
		return sel, ErrNoImages
	}
	return sel, nil
}

// OutputDir returns the directory results are written to.
func (s *Selection) OutputDir(name string) string {
	return filepath.Join(s.BaseDir, name)
}
