package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/spreadscan/internal/pdf"
	"github.com/cucumber/godog"
)

// RegisterCommandSteps adds steps that run spreadscan and inspect results.
func (tc *TestContext) RegisterCommandSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "spreadscan ?([^"]*)"$`, tc.iRun)
	sc.Step(`^the command should succeed$`, tc.theCommandShouldSucceed)
	sc.Step(`^the command should fail with "([^"]*)"$`, tc.theCommandShouldFailWith)
	sc.Step(`^the output should contain "([^"]*)"$`, tc.theOutputShouldContain)
	sc.Step(`^the error output should contain "([^"]*)"$`, tc.theErrorOutputShouldContain)
	sc.Step(`^the file "([^"]*)" should exist$`, tc.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, tc.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should start with "([^"]*)"$`, tc.theFileShouldStartWith)
	sc.Step(`^"([^"]*)" should hold "([^"]*)" followed by "([^"]*)"$`, tc.fileShouldConcatenate)
	sc.Step(`^the PDF "([^"]*)" should have (\d+) pages$`, tc.thePDFShouldHavePages)
}

func (tc *TestContext) iRun(args string) error {
	tc.Run(args)
	return nil
}

func (tc *TestContext) theCommandShouldSucceed() error {
	if tc.LastError != nil {
		return fmt.Errorf("command %v failed: %w\nstderr:\n%s", tc.LastArgs, tc.LastError, tc.LastStderr)
	}
	return nil
}

func (tc *TestContext) theCommandShouldFailWith(msg string) error {
	if tc.LastError == nil {
		return fmt.Errorf("command %v succeeded, expected failure", tc.LastArgs)
	}
	if !strings.Contains(tc.LastError.Error(), msg) {
		return fmt.Errorf("error %q does not contain %q", tc.LastError, msg)
	}
	return nil
}

func (tc *TestContext) theOutputShouldContain(s string) error {
	if !strings.Contains(tc.LastStdout, s) {
		return fmt.Errorf("stdout does not contain %q:\n%s", s, tc.LastStdout)
	}
	return nil
}

func (tc *TestContext) theErrorOutputShouldContain(s string) error {
	if !strings.Contains(tc.LastStderr, s) {
		return fmt.Errorf("stderr does not contain %q:\n%s", s, tc.LastStderr)
	}
	return nil
}

func (tc *TestContext) theFileShouldExist(path string) error {
	if _, err := os.Stat(filepath.Join(tc.TempDir, path)); err != nil {
		return fmt.Errorf("expected %s to exist: %w", path, err)
	}
	return nil
}

func (tc *TestContext) theFileShouldNotExist(path string) error {
	if _, err := os.Stat(filepath.Join(tc.TempDir, path)); err == nil {
		return fmt.Errorf("expected %s not to exist", path)
	}
	return nil
}

func (tc *TestContext) readFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(tc.TempDir, path))
	return string(data), err
}

func (tc *TestContext) theFileShouldStartWith(path, prefix string) error {
	s, err := tc.readFile(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(s, strings.ReplaceAll(prefix, `\n`, "\n")) {
		return fmt.Errorf("%s starts with %q", path, firstLine(s))
	}
	return nil
}

func (tc *TestContext) fileShouldConcatenate(path, first, second string) error {
	whole, err := tc.readFile(path)
	if err != nil {
		return err
	}
	a, err := tc.readFile(first)
	if err != nil {
		return err
	}
	b, err := tc.readFile(second)
	if err != nil {
		return err
	}
	if whole != a+b {
		return fmt.Errorf("%s is not %s followed by %s", path, first, second)
	}
	return nil
}

func (tc *TestContext) thePDFShouldHavePages(path string, n int) error {
	got, err := pdf.PageCount(filepath.Join(tc.TempDir, path))
	if err != nil {
		return err
	}
	if got != n {
		return fmt.Errorf("%s has %d pages, want %d", path, got, n)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
