package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Features selects what the service should compute.
type Features uint8

// Supported features.
const (
	FeatureRead Features = 1 << iota
	FeatureCaption
	FeatureDenseCaptions

	DefaultFeatures = FeatureRead | FeatureCaption | FeatureDenseCaptions
)

var featureNames = []struct {
	f    Features
	name string
}{
	{FeatureRead, "read"},
	{FeatureCaption, "caption"},
	{FeatureDenseCaptions, "denseCaptions"},
}

// ErrUnknownFeature is returned by ParseFeatures for unrecognized names.
var ErrUnknownFeature = errors.New("unknown vision feature")

// Has reports whether all of o is selected.
func (f Features) Has(o Features) bool { return f&o == o }

// String renders the comma separated query value, e.g. "read,caption".
func (f Features) String() string {
	var names []string
	for _, fn := range featureNames {
		if f.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseFeatures converts names (case-insensitive) to a feature set.
func ParseFeatures(names []string) (Features, error) {
	var f Features
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		found := false
		for _, fn := range featureNames {
			if strings.EqualFold(n, fn.name) {
				f |= fn.f
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, n)
		}
	}
	return f, nil
}

// Analyzer submits an encoded image and returns the analysis.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, features Features) (*Result, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, image []byte, features Features) (*Result, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, image []byte, features Features) (*Result, error) {
	return f(ctx, image, features)
}
