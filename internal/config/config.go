// Package config loads and validates spreadscan settings from files,
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MeKo-Tech/spreadscan/internal/pipeline"
	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

// ErrMissingCredentials is returned when the vision endpoint or key is unset.
var ErrMissingCredentials = errors.New("missing vision endpoint or key")

// Config represents the complete configuration for spreadscan.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose"   yaml:"verbose"   json:"verbose"`

	Vision   VisionConfig   `mapstructure:"vision"   yaml:"vision"   json:"vision"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Output   OutputConfig   `mapstructure:"output"   yaml:"output"   json:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"  json:"metrics"`
}

// VisionConfig locates the image analysis resource.
type VisionConfig struct {
	Endpoint   string        `mapstructure:"endpoint"    yaml:"endpoint"    json:"endpoint"`
	Key        string        `mapstructure:"key"         yaml:"key"         json:"key"`
	APIVersion string        `mapstructure:"api_version" yaml:"api_version" json:"api_version"`
	Features   []string      `mapstructure:"features"    yaml:"features"    json:"features"`
	Language   string        `mapstructure:"language"    yaml:"language"    json:"language"`
	Timeout    time.Duration `mapstructure:"timeout"     yaml:"timeout"     json:"timeout"`
}

// PipelineConfig holds page geometry settings.
type PipelineConfig struct {
	BinderWidth int `mapstructure:"binder_width" yaml:"binder_width" json:"binder_width"`
}

// OutputConfig controls what is written next to the input.
type OutputConfig struct {
	DirName        string  `mapstructure:"dir_name"        yaml:"dir_name"        json:"dir_name"`
	AggregatorFile string  `mapstructure:"aggregator_file" yaml:"aggregator_file" json:"aggregator_file"`
	JPEGQuality    int     `mapstructure:"jpeg_quality"    yaml:"jpeg_quality"    json:"jpeg_quality"`
	SaveImages     bool    `mapstructure:"save_images"     yaml:"save_images"     json:"save_images"`
	AnnotateWords  bool    `mapstructure:"annotate_words"  yaml:"annotate_words"  json:"annotate_words"`
	AnnotateLines  bool    `mapstructure:"annotate_lines"  yaml:"annotate_lines"  json:"annotate_lines"`
	StrokeWidth    float64 `mapstructure:"stroke_width"    yaml:"stroke_width"    json:"stroke_width"`
	StrokeColor    string  `mapstructure:"stroke_color"    yaml:"stroke_color"    json:"stroke_color"`
	PDF            bool    `mapstructure:"pdf"             yaml:"pdf"             json:"pdf"`
	MetricsFile    string  `mapstructure:"metrics_file"    yaml:"metrics_file"    json:"metrics_file"`
	NormalizeText  bool    `mapstructure:"normalize_text"  yaml:"normalize_text"  json:"normalize_text"`
}

// MetricsConfig configures Prometheus export.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url" json:"pushgateway_url"`
	Job            string `mapstructure:"job"             yaml:"job"             json:"job"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
		Vision: VisionConfig{
			APIVersion: vision.DefaultAPIVersion,
			Features:   []string{"read", "caption", "denseCaptions"},
		},
		Output: OutputConfig{
			DirName:        "image_out",
			AggregatorFile: "aggregator.txt",
			JPEGQuality:    50,
			AnnotateWords:  true,
			StrokeWidth:    3,
			StrokeColor:    "cyan",
			NormalizeText:  true,
		},
		Metrics: MetricsConfig{Job: "spreadscan"},
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks settings that do not depend on credentials.
func (c *Config) Validate() error {
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level %q (valid: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Pipeline.BinderWidth < 0 {
		return fmt.Errorf("pipeline.binder_width must be >= 0, got %d", c.Pipeline.BinderWidth)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100, got %d", c.Output.JPEGQuality)
	}
	if c.Output.StrokeWidth <= 0 {
		return fmt.Errorf("output.stroke_width must be > 0, got %g", c.Output.StrokeWidth)
	}
	if _, err := pipeline.ParseColor(c.Output.StrokeColor); err != nil {
		return fmt.Errorf("output.stroke_color: %w", err)
	}
	if strings.TrimSpace(c.Output.DirName) == "" {
		return errors.New("output.dir_name must not be empty")
	}
	if _, err := vision.ParseFeatures(c.Vision.Features); err != nil {
		return fmt.Errorf("vision.features: %w", err)
	}
	if c.Vision.Timeout < 0 {
		return fmt.Errorf("vision.timeout must be >= 0, got %s", c.Vision.Timeout)
	}
	return nil
}

// ValidateCredentials reports ErrMissingCredentials unless both the vision
// endpoint and key are set.
func (c *Config) ValidateCredentials() error {
	var missing []string
	if strings.TrimSpace(c.Vision.Endpoint) == "" {
		missing = append(missing, "vision.endpoint")
	}
	if strings.TrimSpace(c.Vision.Key) == "" {
		missing = append(missing, "vision.key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Vision.Key != "" {
		c.Vision.Key = "********"
	}
	return c
}

// ToPipelineConfig translates the settings into a pipeline.Config.
func (c *Config) ToPipelineConfig() (pipeline.Config, error) {
	features, err := vision.ParseFeatures(c.Vision.Features)
	if err != nil {
		return pipeline.Config{}, err
	}
	col, err := pipeline.ParseColor(c.Output.StrokeColor)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.NewBuilder().
		WithBinderWidth(c.Pipeline.BinderWidth).
		WithJPEGQuality(c.Output.JPEGQuality).
		WithSaveImages(c.Output.SaveImages).
		WithVerbose(c.Verbose).
		WithAnnotations(c.Output.AnnotateWords, c.Output.AnnotateLines).
		WithStyle(pipeline.OverlayStyle{Color: col, Width: c.Output.StrokeWidth}).
		WithFeatures(features).
		WithAnalyzeTimeout(c.Vision.Timeout).
		WithNormalizeText(c.Output.NormalizeText).
		WithPDF(c.Output.PDF, "").
		Config(), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
