// Package support holds the step definitions for the spreadscan feature tests.
package support

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MeKo-Tech/spreadscan/cmd/spreadscan/cmd"
	"github.com/MeKo-Tech/spreadscan/internal/testutil"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastArgs   []string
	LastStdout string
	LastStderr string
	LastError  error

	// Test environment
	TempDir    string
	previousWD string
	savedEnv   map[string]*string

	// Vision service stand-in
	Vision *testutil.AzureStandIn
}

// NewTestContext creates a scenario workspace and moves into it.
func NewTestContext() (*TestContext, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	tempDir, err := os.MkdirTemp("", "spreadscan-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		return nil, fmt.Errorf("failed to enter temp directory: %w", err)
	}
	tc := &TestContext{TempDir: tempDir, previousWD: wd, savedEnv: map[string]*string{}}

	// Host settings must not leak into scenarios.
	tc.SetEnv("HOME", tempDir)
	tc.SetEnv("XDG_CONFIG_HOME", tempDir)
	tc.SetEnv("SPREADSCAN_VISION_ENDPOINT", "")
	tc.SetEnv("SPREADSCAN_VISION_KEY", "")
	return tc, nil
}

// SetEnv sets a variable for the rest of the scenario.
func (tc *TestContext) SetEnv(name, value string) {
	if _, saved := tc.savedEnv[name]; !saved {
		if old, ok := os.LookupEnv(name); ok {
			tc.savedEnv[name] = &old
		} else {
			tc.savedEnv[name] = nil
		}
	}
	_ = os.Setenv(name, value)
}

// Run executes the command line in-process.
func (tc *TestContext) Run(commandLine string) {
	root := cmd.NewRootCommand()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	tc.LastArgs = strings.Fields(commandLine)
	root.SetArgs(tc.LastArgs)
	tc.LastError = root.ExecuteContext(context.Background())
	tc.LastStdout = stdout.String()
	tc.LastStderr = stderr.String()
}

// Cleanup stops the stand-in, restores the environment and removes the
// workspace.
func (tc *TestContext) Cleanup() error {
	if tc.Vision != nil {
		tc.Vision.Close()
		tc.Vision = nil
	}
	for name, old := range tc.savedEnv {
		if old == nil {
			_ = os.Unsetenv(name)
		} else {
			_ = os.Setenv(name, *old)
		}
	}
	var errs []string
	if err := os.Chdir(tc.previousWD); err != nil {
		errs = append(errs, err.Error())
	}
	if err := os.RemoveAll(tc.TempDir); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
