package pipeline

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/MeKo-Tech/spreadscan/internal/transcript"
	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

// formatPercent renders a [0,1] confidence with two decimals, e.g. 90.00%.
func formatPercent(c float64) string {
	return fmt.Sprintf("%.2f%%", c*100)
}

func (p *Pipeline) text(s string) string {
	if p.cfg.NormalizeText {
		return norm.NFC.String(s)
	}
	return s
}

// writeAnalysis prints the caption, dense captions and recognized text of
// res to the page scope.
func (p *Pipeline) writeAnalysis(s *transcript.Scope, res *vision.Result) {
	if res.HasCaption() {
		s.Printf("Caption: \"%s\" (Conf:%s)\n", p.text(res.Caption.Text), formatPercent(res.Caption.Confidence))
	}

	s.Println("Dense Captions:")
	for _, dc := range res.DenseCaptions {
		s.Printf("  %s (Conf:%s)\n", p.text(dc.Text), formatPercent(dc.Confidence))
	}

	if res.Read == nil {
		return
	}
	s.Println("Recognized Text:")
	for _, ln := range res.Read.Lines() {
		if p.cfg.Verbose {
			s.Printf("  %s (Conf:%s)\n", p.text(ln.Text), formatPercent(ln.Confidence))
		} else {
			s.Printf("  %s\n", p.text(ln.Text))
		}
	}
	s.Println("\nWord confidences:")
	for _, w := range res.Read.Words() {
		s.Printf("  %s (Conf:%s)\n", p.text(w.Text), formatPercent(w.Confidence))
	}
}
