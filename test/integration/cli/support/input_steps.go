package support

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/spreadscan/internal/testutil"
	"github.com/cucumber/godog"
)

// RegisterInputSteps adds steps that prepare input photos and manifests.
func (tc *TestContext) RegisterInputSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a spread photo "([^"]*)" of (\d+)x(\d+) pixels$`, tc.aSpreadPhoto)
	sc.Step(`^a spread photo "([^"]*)" of (\d+)x(\d+) pixels with EXIF orientation (\d+)$`, tc.aRotatedSpreadPhoto)
	sc.Step(`^an empty directory "([^"]*)"$`, tc.anEmptyDirectory)
	sc.Step(`^a manifest "([^"]*)" containing:$`, tc.aManifest)
}

func (tc *TestContext) aSpreadPhoto(path string, width, height int) error {
	return tc.aRotatedSpreadPhoto(path, width, height, 0)
}

func (tc *TestContext) aRotatedSpreadPhoto(path string, width, height, orientation int) error {
	full := filepath.Join(tc.TempDir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return err
	}
	cfg := testutil.DefaultSpreadConfig()
	cfg.Width, cfg.Height = width, height
	if err := testutil.WriteJPEG(full, testutil.GenerateSpread(cfg), uint16(orientation)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (tc *TestContext) anEmptyDirectory(path string) error {
	return os.MkdirAll(filepath.Join(tc.TempDir, path), 0o750)
}

func (tc *TestContext) aManifest(path string, body *godog.DocString) error {
	return os.WriteFile(filepath.Join(tc.TempDir, path), []byte(body.Content), 0o600)
}
