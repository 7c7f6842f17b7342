package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestExtensions are the file extensions accepted as manifests.
var ManifestExtensions = []string{".json", ".yaml", ".yml"}

// IsManifest reports whether path has a manifest extension.
func IsManifest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, m := range ManifestExtensions {
		if ext == m {
			return true
		}
	}
	return false
}

// LoadManifest reads a list of {path, split} entries. Relative paths are
// resolved against the manifest's directory.
func LoadManifest(path string) ([]Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: manifest path is user input
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	entries, err := ParseManifest(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve manifest directory: %w", err)
	}
	for i := range entries {
		if !filepath.IsAbs(entries[i].Path) {
			entries[i].Path = filepath.Join(dir, entries[i].Path)
		}
	}
	return entries, nil
}

// ParseManifest decodes manifest bytes. ext selects the format; anything
// other than .yaml/.yml is read as JSON. JSON keys match case-insensitively.
func ParseManifest(data []byte, ext string) ([]Entry, error) {
	var entries []Entry
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			return nil, nil
		}
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
	}

	out := entries[:0]
	for _, e := range entries {
		if strings.TrimSpace(e.Path) == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
