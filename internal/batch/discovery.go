package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/MeKo-Tech/spreadscan/internal/utils"
)

// Discover lists the spread images directly inside dir, sorted by name.
// Subdirectories are not entered.
func Discover(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if shouldIncludeFile(path) {
			entries = append(entries, Entry{Path: path, Split: true})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func shouldIncludeFile(path string) bool {
	return utils.IsSpreadImage(path)
}
