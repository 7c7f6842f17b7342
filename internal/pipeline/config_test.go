package pipeline

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.BinderWidth)
	assert.Equal(t, 50, cfg.JPEGQuality)
	assert.Equal(t, AnnotateWords, cfg.Annotate)
	assert.InDelta(t, 3.0, cfg.Style.Width, 0)
	assert.Equal(t, vision.DefaultFeatures, cfg.Features)
	assert.Zero(t, cfg.AnalyzeTimeout)
	assert.False(t, cfg.SaveImages)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative binder", func(c *Config) { c.BinderWidth = -1 }},
		{"quality too low", func(c *Config) { c.JPEGQuality = 0 }},
		{"quality too high", func(c *Config) { c.JPEGQuality = 101 }},
		{"zero stroke", func(c *Config) { c.Style.Width = 0 }},
		{"no features", func(c *Config) { c.Features = 0 }},
		{"negative timeout", func(c *Config) { c.AnalyzeTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestBuilder(t *testing.T) {
	cfg := NewBuilder().
		WithBinderWidth(12).
		WithJPEGQuality(80).
		WithSaveImages(true).
		WithVerbose(true).
		WithAnnotations(false, true).
		WithStyle(OverlayStyle{Color: color.Black, Width: 2}).
		WithFeatures(vision.FeatureRead).
		WithAnalyzeTimeout(time.Second).
		WithNormalizeText(false).
		WithPDF(true, "pages.pdf").
		Config()

	assert.Equal(t, 12, cfg.BinderWidth)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.True(t, cfg.SaveImages)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, AnnotateLines, cfg.Annotate)
	assert.Equal(t, color.Black, cfg.Style.Color)
	assert.Equal(t, vision.FeatureRead, cfg.Features)
	assert.Equal(t, time.Second, cfg.AnalyzeTimeout)
	assert.False(t, cfg.NormalizeText)
	assert.True(t, cfg.CompilePDF)
	assert.Equal(t, "pages.pdf", cfg.PDFName)

	// Zero values leave defaults in place.
	def := NewBuilder().WithJPEGQuality(0).WithAnnotations(false, false).WithFeatures(0).WithStyle(OverlayStyle{}).Config()
	assert.Equal(t, DefaultConfig().JPEGQuality, def.JPEGQuality)
	assert.Equal(t, AnnotateWords, def.Annotate)
	assert.Equal(t, vision.DefaultFeatures, def.Features)
	assert.Equal(t, DefaultOverlayStyle(), def.Style)
}
