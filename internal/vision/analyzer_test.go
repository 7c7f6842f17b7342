package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures_String(t *testing.T) {
	assert.Equal(t, "read,caption,denseCaptions", DefaultFeatures.String())
	assert.Equal(t, "caption", FeatureCaption.String())
	assert.Empty(t, Features(0).String())
}

func TestParseFeatures(t *testing.T) {
	f, err := ParseFeatures([]string{"Read", " caption ", "DENSECAPTIONS", ""})
	require.NoError(t, err)
	assert.Equal(t, DefaultFeatures, f)

	_, err = ParseFeatures([]string{"read", "tags"})
	require.ErrorIs(t, err, ErrUnknownFeature)
}

func TestFeatures_Has(t *testing.T) {
	assert.True(t, DefaultFeatures.Has(FeatureRead|FeatureCaption))
	assert.False(t, FeatureRead.Has(FeatureCaption))
}

func TestAnalyzerFunc(t *testing.T) {
	var got Features
	a := AnalyzerFunc(func(_ context.Context, img []byte, f Features) (*Result, error) {
		got = f
		return &Result{Caption: &Caption{Text: string(img), Confidence: 1}}, nil
	})
	res, err := a.Analyze(context.Background(), []byte("x"), FeatureCaption)
	require.NoError(t, err)
	assert.Equal(t, FeatureCaption, got)
	assert.True(t, res.HasCaption())
}
