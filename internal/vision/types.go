// Package vision defines the image-understanding collaborator: the result
// model returned for one page and a client for Azure AI Vision.
package vision

import "github.com/MeKo-Tech/spreadscan/internal/utils"

// Caption is a natural language description with its confidence in [0,1].
type Caption struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	// Box is set for dense captions only.
	Box *Box `json:"boundingBox,omitempty"`
}

// Box is an axis-aligned region in page pixels.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Word is one recognized word with its quadrilateral outline.
type Word struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Polygon    []utils.Point `json:"boundingPolygon"`
}

// Line is a recognized text line. Confidence is the mean of its words when
// the service does not report one.
type Line struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Polygon    []utils.Point `json:"boundingPolygon"`
	Words      []Word        `json:"words"`
}

// Block groups lines.
type Block struct {
	Lines []Line `json:"lines"`
}

// ReadResult is the OCR part of a result.
type ReadResult struct {
	Blocks []Block `json:"blocks"`
}

// Lines returns all lines in block order.
func (r *ReadResult) Lines() []Line {
	if r == nil {
		return nil
	}
	var out []Line
	for _, b := range r.Blocks {
		out = append(out, b.Lines...)
	}
	return out
}

// Words returns all words in block, line and word order.
func (r *ReadResult) Words() []Word {
	var out []Word
	for _, l := range r.Lines() {
		out = append(out, l.Words...)
	}
	return out
}

// LinePolygons returns the outline of every line.
func (r *ReadResult) LinePolygons() [][]utils.Point {
	lines := r.Lines()
	out := make([][]utils.Point, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Polygon)
	}
	return out
}

// WordPolygons returns the outline of every word.
func (r *ReadResult) WordPolygons() [][]utils.Point {
	words := r.Words()
	out := make([][]utils.Point, 0, len(words))
	for _, w := range words {
		out = append(out, w.Polygon)
	}
	return out
}

// Result is everything the service returned for one page. Any part may be
// absent.
type Result struct {
	ModelVersion  string      `json:"modelVersion,omitempty"`
	Width         int         `json:"width,omitempty"`
	Height        int         `json:"height,omitempty"`
	Caption       *Caption    `json:"caption,omitempty"`
	DenseCaptions []Caption   `json:"denseCaptions,omitempty"`
	Read          *ReadResult `json:"read,omitempty"`
}

// HasCaption reports whether a non-empty caption is present.
func (r *Result) HasCaption() bool {
	return r != nil && r.Caption != nil && r.Caption.Text != ""
}
