// Package pipeline drives a run: it loads each spread, turns it upright,
// splits it into pages, sends every page to the vision service and records
// the transcripts, annotated rasters and run statistics.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/spreadscan/internal/batch"
	"github.com/MeKo-Tech/spreadscan/internal/common"
	"github.com/MeKo-Tech/spreadscan/internal/pdf"
	"github.com/MeKo-Tech/spreadscan/internal/split"
	"github.com/MeKo-Tech/spreadscan/internal/stats"
	"github.com/MeKo-Tech/spreadscan/internal/transcript"
	"github.com/MeKo-Tech/spreadscan/internal/utils"
	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

// Pipeline processes entries sequentially. It is not safe for concurrent use.
type Pipeline struct {
	cfg      Config
	analyzer vision.Analyzer
	rec      *transcript.Recorder
	agg      *stats.Aggregator
	metrics  *stats.Metrics
	now      common.Clock
	runID    string
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics publishes page outcomes and confidences to m.
func WithMetrics(m *stats.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces the wall clock used for elapsed times.
func WithClock(now common.Clock) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.runID = id
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New validates cfg and returns a pipeline writing through rec.
func New(cfg Config, analyzer vision.Analyzer, rec *transcript.Recorder, opts ...Option) (*Pipeline, error) {
	if analyzer == nil {
		return nil, NewFatalPreconditionError("no vision analyzer configured", nil)
	}
	if rec == nil {
		return nil, NewFatalPreconditionError("no recorder configured", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewFatalPreconditionError("invalid pipeline configuration", err)
	}
	p := &Pipeline{
		cfg:      cfg,
		analyzer: analyzer,
		rec:      rec,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	p.agg = stats.NewAggregator(p.metrics)
	p.logger = p.logger.With("run_id", p.runID)
	return p, nil
}

// RunID returns the identifier of this run.
func (p *Pipeline) RunID() string { return p.runID }

// Aggregator exposes the run's caption statistics.
func (p *Pipeline) Aggregator() *stats.Aggregator { return p.agg }

// Run processes entries in order. Entry and page failures are reported and
// skipped; only context cancellation stops the run early, in which case the
// partial summary is returned with the context error.
func (p *Pipeline) Run(ctx context.Context, entries []batch.Entry) (*RunSummary, error) {
	timer := common.NewTimer(p.now)
	summary := &RunSummary{RunID: p.runID}
	p.logger.Info("run started", "entries", len(entries), "output", p.rec.Dir())

	var runErr error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		er := p.processEntry(ctx, e)
		summary.Entries = append(summary.Entries, er)
		for _, pr := range er.Pages {
			summary.Pages++
			if !pr.OK() {
				summary.Failed++
			}
			summary.Images = append(summary.Images, pr.Images...)
		}
	}

	if p.cfg.CompilePDF && len(summary.Images) > 0 {
		out := filepath.Join(p.rec.Dir(), p.cfg.PDFName)
		if err := pdf.Compile(summary.Images, out); err != nil {
			p.rec.Console().Errorf("Error writing %s: %v\n", p.cfg.PDFName, err)
			p.logger.Warn("pdf compile failed", "error", err)
		} else {
			summary.PDFPath = out
			p.rec.Console().Printf("Saved %s\n", p.cfg.PDFName)
		}
	}

	summary.CaptionCount = p.agg.Count()
	summary.MeanConfidence = p.agg.Mean()
	summary.Elapsed = timer.Stop()
	if p.metrics != nil {
		p.metrics.SetRunDuration(summary.Elapsed)
	}
	p.logger.Info("run finished",
		"pages", summary.Pages,
		"failed", summary.Failed,
		"captions", summary.CaptionCount,
		"mean_confidence", summary.MeanConfidence,
		"elapsed", summary.Elapsed)
	return summary, runErr
}

// processEntry loads, orients and splits one input, then processes its pages.
func (p *Pipeline) processEntry(ctx context.Context, e batch.Entry) EntryResult {
	er := EntryResult{Path: e.Path}
	base := utils.BaseName(e.Path)

	img, meta, err := utils.LoadUpright(e.Path)
	if err != nil {
		er.Err = NewEntryFailureError(base, "cannot load image", err)
		p.entryFailed(base, er.Err)
		return er
	}
	p.logger.Debug("loaded image", "path", e.Path, "width", meta.Width, "height", meta.Height,
		"orientation", meta.Orientation.String(), "split", e.Split)

	pages, err := p.pages(img, base, e.Split)
	if err != nil {
		er.Err = NewEntryFailureError(base, "cannot split image", err)
		p.entryFailed(base, er.Err)
		return er
	}

	for _, pg := range pages {
		if ctx.Err() != nil {
			break
		}
		er.Pages = append(er.Pages, p.processPage(ctx, pg))
	}
	return er
}

func (p *Pipeline) pages(img image.Image, base string, splitSpread bool) ([]split.Page, error) {
	if !splitSpread {
		pg, err := split.Whole(img, base)
		if err != nil {
			return nil, err
		}
		return []split.Page{pg}, nil
	}
	left, right, err := split.Split(img, base, p.cfg.BinderWidth)
	if err != nil {
		return nil, err
	}
	return []split.Page{left, right}, nil
}

func (p *Pipeline) entryFailed(name string, err error) {
	p.rec.Console().Errorf("Error in %s: %s\n", name, detail(err))
	p.logger.Warn("entry failed", "entry", name, "error", err)
	if p.metrics != nil {
		p.metrics.EntryFailed()
	}
}

// processPage records one page inside its own transcript scope. The header
// and footer are always written and the scope is always ended.
func (p *Pipeline) processPage(ctx context.Context, pg split.Page) PageResult {
	res := PageResult{Name: pg.Name, Status: StatusOK}
	scope, err := p.rec.Begin(pg.Name)
	if err != nil {
		res.Status, res.Err = StatusFailed, NewEntryFailureError(pg.Name, "cannot open transcript", err)
		p.entryFailed(pg.Name, res.Err)
		return res
	}
	defer func() {
		if err := scope.End(); err != nil {
			p.logger.Warn("closing page transcript", "page", pg.Name, "error", err)
		}
	}()

	timer := common.NewTimer(p.now)
	scope.Printf("--- %s ---\n", pg.Name)

	if err := p.analyzePage(ctx, scope, pg, &res); err != nil {
		res.Status, res.Err = StatusFailed, err
		scope.Errorf("Error in %s: %s\n", pg.Name, detail(err))
		p.logger.Warn("page failed", "page", pg.Name, "code", string(CodeOf(err)), "error", err)
	}

	res.Elapsed = timer.Stop()
	scope.Printf("Done in %s\n\n", common.FormatElapsed(res.Elapsed))

	if p.metrics != nil {
		if res.OK() {
			p.metrics.PageDone(stats.StatusOK)
		} else {
			p.metrics.PageDone(stats.StatusFailed)
		}
	}
	return res
}

func (p *Pipeline) analyzePage(ctx context.Context, scope *transcript.Scope, pg split.Page, res *PageResult) error {
	data, err := utils.EncodeJPEG(pg.Image, p.cfg.JPEGQuality)
	if err != nil {
		return NewEntryFailureError(pg.Name, "cannot encode page", err)
	}

	actx := ctx
	if p.cfg.AnalyzeTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, p.cfg.AnalyzeTimeout)
		defer cancel()
	}
	start := p.now()
	result, err := p.analyzer.Analyze(actx, data, p.cfg.Features)
	took := p.now().Sub(start)
	p.logger.Debug("analyzed page", "page", pg.Name, "bytes", len(data), "took", took)
	if p.metrics != nil {
		p.metrics.ObserveAnalyze(took)
	}
	if err != nil {
		return NewServiceFailureError(pg.Name, err)
	}
	if result == nil {
		result = &vision.Result{}
	}
	res.Result = result

	p.writeAnalysis(scope, result)
	if result.HasCaption() {
		c := *result.Caption
		res.Caption = &c
		p.agg.Record(c.Confidence)
	}
	if p.metrics != nil {
		p.metrics.AddWords(len(result.Read.Words()))
	}

	if !p.cfg.SaveImages {
		scope.Println("Skipping JPEG output (no --save-images flag).")
		return nil
	}
	for _, mode := range p.cfg.Annotate.Modes() {
		path := AnnotationPath(p.rec.Dir(), pg.Name, mode)
		if err := AnnotateAndSave(pg.Image, result.Read, path, mode, p.cfg.Style, p.cfg.JPEGQuality); err != nil {
			return NewEntryFailureError(pg.Name, "cannot save annotated image", err)
		}
		res.Images = append(res.Images, path)
		scope.Printf("Saved %s\n", filepath.Base(path))
	}
	return nil
}

// Describe formats a page failure for diagnostics.
func Describe(r PageResult) string {
	if r.Err == nil {
		return fmt.Sprintf("%s: %s", r.Name, r.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", r.Name, r.Status, detail(r.Err))
}
