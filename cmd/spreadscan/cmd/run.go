package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/MeKo-Tech/spreadscan/internal/batch"
	"github.com/MeKo-Tech/spreadscan/internal/config"
	"github.com/MeKo-Tech/spreadscan/internal/pipeline"
	"github.com/MeKo-Tech/spreadscan/internal/stats"
	"github.com/MeKo-Tech/spreadscan/internal/transcript"
	"github.com/MeKo-Tech/spreadscan/internal/vision"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRunCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "run [input]",
		Short: "Transcribe a directory of spreads or a manifest",
		Long: `Process journal spreads and write transcripts next to the input.

The input is a directory of JPEG spreads (not searched recursively, every image
is split into two pages), a manifest (.json, .yaml, .yml) listing entries of the
form {"path": "...", "split": true}, or a single JPEG. It defaults to "images".

Output goes to <input dir>/image_out: one <page>.out transcript per page, an
aggregator.txt holding every transcript, and with --save-images the annotated
<page>_words.jpg and <page>_lines.jpg rasters.

Examples:
  spreadscan run
  spreadscan run scans/ --save-images --binder-width 40
  spreadscan run manifest.yaml --lines --pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			return a.run(cmd, input)
		},
	}

	f := c.Flags()
	f.Bool("save-images", false, "write annotated page images")
	f.Bool("verbose", false, "include line confidences in transcripts")
	f.Int("binder-width", 0, "pixels excluded between the two pages")
	f.Int("jpeg-quality", 50, "JPEG quality for uploaded and saved images")
	f.Bool("words", true, "outline recognized words in saved images")
	f.Bool("lines", false, "outline recognized lines in saved images")
	f.String("stroke-color", "cyan", "outline color (name or #rrggbb)")
	f.Bool("pdf", false, "compile saved images into a PDF")
	f.String("output-dir", "image_out", "name of the output directory created next to the input")
	f.String("metrics-file", "", "write Prometheus metrics in text format to this file")
	f.String("endpoint", "", "vision service endpoint")
	f.Duration("timeout", 0, "per-page vision call timeout (0 disables)")
	f.StringSlice("features", []string{"read", "caption", "denseCaptions"}, "vision features to request")

	for key, name := range map[string]string{
		"output.save_images":    "save-images",
		"verbose":               "verbose",
		"pipeline.binder_width": "binder-width",
		"output.jpeg_quality":   "jpeg-quality",
		"output.annotate_words": "words",
		"output.annotate_lines": "lines",
		"output.stroke_color":   "stroke-color",
		"output.pdf":            "pdf",
		"output.dir_name":       "output-dir",
		"output.metrics_file":   "metrics-file",
		"vision.endpoint":       "endpoint",
		"vision.timeout":        "timeout",
		"vision.features":       "features",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(name))
	}
	return c
}

// run resolves the input and checks credentials before anything is written,
// so a fatal precondition leaves no output directory behind.
func (a *app) run(cmd *cobra.Command, input string) error {
	cfg := a.cfg
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	sel, err := batch.Resolve(input)
	switch {
	case errors.Is(err, batch.ErrInputNotFound):
		if input == "" {
			input = batch.DefaultInput
		}
		return pipeline.NewFatalPreconditionError("Input not found: "+input, err)
	case errors.Is(err, batch.ErrNoImages):
		return pipeline.NewFatalPreconditionError("No images to process; exiting.", err)
	case err != nil:
		return pipeline.NewFatalPreconditionError(fmt.Sprintf("Cannot read input %s: %v", input, err), err)
	}

	if err := cfg.ValidateCredentials(); err != nil {
		return pipeline.NewFatalPreconditionError(
			"Vision endpoint and key must be set (SPREADSCAN_VISION_ENDPOINT, SPREADSCAN_VISION_KEY): "+err.Error(), err)
	}
	pcfg, err := cfg.ToPipelineConfig()
	if err != nil {
		return pipeline.NewFatalPreconditionError("Invalid configuration: "+err.Error(), err)
	}
	client, err := newAnalyzer(cfg)
	if err != nil {
		return pipeline.NewFatalPreconditionError("Invalid vision configuration: "+err.Error(), err)
	}

	rec, err := transcript.Open(sel.OutputDir(cfg.Output.DirName), out, errOut,
		transcript.WithAggregatorFile(cfg.Output.AggregatorFile))
	if err != nil {
		return pipeline.NewFatalPreconditionError("Cannot create output directory: "+err.Error(), err)
	}
	defer func() {
		if cerr := rec.Close(); cerr != nil {
			slog.Warn("closing recorder", "error", cerr)
		}
	}()

	metrics := stats.NewMetrics()
	p, err := pipeline.New(pcfg, client, rec, pipeline.WithMetrics(metrics))
	if err != nil {
		return err
	}
	slog.Debug("input resolved", "run_id", p.RunID(), "input", sel.Input, "source", sel.Source, "entries", len(sel.Entries))

	summary, err := p.Run(cmd.Context(), sel.Entries)
	if summary != nil {
		printSummary(out, summary)
		a.exportMetrics(cmd, metrics, rec.Dir())
	}
	return err
}

func newAnalyzer(cfg *config.Config) (*vision.AzureClient, error) {
	opts := []vision.AzureOption{vision.WithAPIVersion(cfg.Vision.APIVersion)}
	if cfg.Vision.Language != "" {
		opts = append(opts, vision.WithLanguage(cfg.Vision.Language))
	}
	return vision.NewAzureClient(cfg.Vision.Endpoint, cfg.Vision.Key, opts...)
}

// printSummary writes the closing statistics. Failures are highlighted but
// do not change the exit code.
func printSummary(w io.Writer, s *pipeline.RunSummary) {
	_, _ = fmt.Fprintln(w)
	_, _ = color.New(color.FgGreen).Fprintln(w, s.CaptionLine())
	if s.Failed > 0 || s.FailedEntries() > 0 {
		warn := color.New(color.FgYellow)
		_, _ = warn.Fprintf(w, "%d page(s) and %d input(s) failed\n", s.Failed, s.FailedEntries())
		for _, e := range s.Entries {
			for _, pr := range e.Pages {
				if !pr.OK() {
					_, _ = warn.Fprintf(w, "  %s\n", pipeline.Describe(pr))
				}
			}
		}
	}
	_, _ = fmt.Fprintln(w, s.TimeLine())
}

// exportMetrics writes and pushes run metrics when configured. Export
// failures are logged only.
func (a *app) exportMetrics(cmd *cobra.Command, m *stats.Metrics, outDir string) {
	if path := a.cfg.Output.MetricsFile; path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(outDir, path)
		}
		if err := m.WriteTextfile(path); err != nil {
			slog.Warn("writing metrics file", "path", path, "error", err)
		}
	}
	if url := a.cfg.Metrics.PushgatewayURL; url != "" {
		if err := m.Push(cmd.Context(), url, a.cfg.Metrics.Job); err != nil {
			slog.Warn("pushing metrics", "url", url, "error", err)
		}
	}
}
