package support

import (
	"errors"
	"fmt"
	"image"

	"github.com/MeKo-Tech/spreadscan/internal/testutil"
	"github.com/cucumber/godog"
)

// RegisterVisionSteps adds steps that script the vision service stand-in.
func (tc *TestContext) RegisterVisionSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the vision service is available with key "([^"]*)"$`, tc.theVisionServiceIsAvailable)
	sc.Step(`^the vision service captions the next page "([^"]*)" with confidence ([\d.]+)$`, tc.theServiceCaptions)
	sc.Step(`^the vision service fails the next page with "([^"]*)"$`, tc.theServiceFails)
	sc.Step(`^the vision service received (\d+) requests?$`, tc.theServiceReceived)
	sc.Step(`^every upload was (\d+)x(\d+) pixels$`, tc.everyUploadWas)
	sc.Step(`^every request used the key "([^"]*)"$`, tc.everyRequestUsedKey)
}

func (tc *TestContext) theVisionServiceIsAvailable(key string) error {
	tc.Vision = testutil.NewAzureStandIn()
	tc.SetEnv("SPREADSCAN_VISION_ENDPOINT", tc.Vision.URL)
	tc.SetEnv("SPREADSCAN_VISION_KEY", key)
	return nil
}

func (tc *TestContext) theServiceCaptions(caption string, confidence float64) error {
	if tc.Vision == nil {
		return errors.New("vision service not started")
	}
	tc.Vision.Script(testutil.FakeResponse{Result: testutil.PageResult(caption, confidence, "Dear", "diary")})
	return nil
}

func (tc *TestContext) theServiceFails(message string) error {
	if tc.Vision == nil {
		return errors.New("vision service not started")
	}
	tc.Vision.Script(testutil.FakeResponse{Err: errors.New(message)})
	return nil
}

func (tc *TestContext) theServiceReceived(n int) error {
	got := 0
	if tc.Vision != nil {
		got = tc.Vision.Requests()
	}
	if got != n {
		return fmt.Errorf("expected %d requests, got %d", n, got)
	}
	return nil
}

func (tc *TestContext) everyUploadWas(width, height int) error {
	want := image.Pt(width, height)
	for i, size := range tc.Vision.Sizes() {
		if size != want {
			return fmt.Errorf("upload %d was %v, want %v", i, size, want)
		}
	}
	return nil
}

func (tc *TestContext) everyRequestUsedKey(key string) error {
	for i, k := range tc.Vision.Keys() {
		if k != key {
			return fmt.Errorf("request %d used key %q, want %q", i, k, key)
		}
	}
	return nil
}
