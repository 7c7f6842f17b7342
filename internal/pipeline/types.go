package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/MeKo-Tech/spreadscan/internal/common"
	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

// PageStatus is the outcome of one page.
type PageStatus string

// Page outcomes.
const (
	StatusOK     PageStatus = "ok"
	StatusFailed PageStatus = "failed"
)

// PageResult is the typed outcome of processing one page.
type PageResult struct {
	Name    string
	Status  PageStatus
	Err     error
	Caption *vision.Caption
	Result  *vision.Result
	Images  []string
	Elapsed time.Duration
}

// OK reports whether the page completed.
func (r PageResult) OK() bool { return r.Status == StatusOK }

// EntryResult is the outcome of one input image. Err is set when the image
// could not be loaded or split; Pages is then empty.
type EntryResult struct {
	Path  string
	Err   error
	Pages []PageResult
}

// RunSummary aggregates a whole run.
type RunSummary struct {
	RunID          string
	Entries        []EntryResult
	Pages          int
	Failed         int
	CaptionCount   int
	MeanConfidence float64
	Images         []string
	PDFPath        string
	Elapsed        time.Duration
}

// FailedEntries counts inputs that produced no pages.
func (s *RunSummary) FailedEntries() int {
	n := 0
	for _, e := range s.Entries {
		if e.Err != nil {
			n++
		}
	}
	return n
}

// CaptionLine is the closing statistics line.
func (s *RunSummary) CaptionLine() string {
	return fmt.Sprintf("Processed %d pages with captions. Avg confidence: %s", s.CaptionCount, formatPercent(s.MeanConfidence))
}

// TimeLine is the closing wall-clock line.
func (s *RunSummary) TimeLine() string {
	return "Total time: " + common.FormatElapsed(s.Elapsed)
}

// Print writes the closing summary, preceded by a blank line.
func (s *RunSummary) Print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n%s\n%s\n", s.CaptionLine(), s.TimeLine())
}
