package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

// Config holds the per-run processing settings.
type Config struct {
	BinderWidth    int
	JPEGQuality    int
	SaveImages     bool
	Verbose        bool
	Annotate       AnnotationMode
	Style          OverlayStyle
	Features       vision.Features
	AnalyzeTimeout time.Duration // zero means no deadline
	NormalizeText  bool
	CompilePDF     bool
	PDFName        string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BinderWidth:   0,
		JPEGQuality:   50,
		Annotate:      AnnotateWords,
		Style:         DefaultOverlayStyle(),
		Features:      vision.DefaultFeatures,
		NormalizeText: true,
		PDFName:       "annotated.pdf",
	}
}

// Validate checks the settings for values no page could be processed with.
func (c Config) Validate() error {
	if c.BinderWidth < 0 {
		return fmt.Errorf("binder width must be >= 0, got %d", c.BinderWidth)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.Style.Width <= 0 {
		return fmt.Errorf("stroke width must be > 0, got %g", c.Style.Width)
	}
	if c.Features == 0 {
		return errors.New("at least one vision feature is required")
	}
	if c.AnalyzeTimeout < 0 {
		return fmt.Errorf("analyze timeout must be >= 0, got %s", c.AnalyzeTimeout)
	}
	return nil
}

// Builder constructs a Config with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a builder seeded with DefaultConfig.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithBinderWidth sets the band excluded between pages.
func (b *Builder) WithBinderWidth(w int) *Builder {
	b.cfg.BinderWidth = w
	return b
}

// WithJPEGQuality sets the quality for uploaded and saved JPEGs.
func (b *Builder) WithJPEGQuality(q int) *Builder {
	if q > 0 {
		b.cfg.JPEGQuality = q
	}
	return b
}

// WithSaveImages toggles annotated raster output.
func (b *Builder) WithSaveImages(on bool) *Builder {
	b.cfg.SaveImages = on
	return b
}

// WithVerbose toggles transcript detail.
func (b *Builder) WithVerbose(on bool) *Builder {
	b.cfg.Verbose = on
	return b
}

// WithAnnotations selects word and line outlines. Selecting neither keeps
// the current modes.
func (b *Builder) WithAnnotations(words, lines bool) *Builder {
	var m AnnotationMode
	if words {
		m |= AnnotateWords
	}
	if lines {
		m |= AnnotateLines
	}
	if m != 0 {
		b.cfg.Annotate = m
	}
	return b
}

// WithStyle sets the outline stroke.
func (b *Builder) WithStyle(s OverlayStyle) *Builder {
	if s.Color != nil {
		b.cfg.Style.Color = s.Color
	}
	if s.Width > 0 {
		b.cfg.Style.Width = s.Width
	}
	return b
}

// WithFeatures selects what the vision service computes.
func (b *Builder) WithFeatures(f vision.Features) *Builder {
	if f != 0 {
		b.cfg.Features = f
	}
	return b
}

// WithAnalyzeTimeout bounds each vision call.
func (b *Builder) WithAnalyzeTimeout(d time.Duration) *Builder {
	b.cfg.AnalyzeTimeout = d
	return b
}

// WithNormalizeText toggles NFC normalization of service text.
func (b *Builder) WithNormalizeText(on bool) *Builder {
	b.cfg.NormalizeText = on
	return b
}

// WithPDF toggles compiling saved rasters into one document.
func (b *Builder) WithPDF(on bool, name string) *Builder {
	b.cfg.CompilePDF = on
	if name != "" {
		b.cfg.PDFName = name
	}
	return b
}

// Config returns the built configuration.
func (b *Builder) Config() Config { return b.cfg }
