package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MeKo-Tech/spreadscan/internal/utils"
)

func quadAt(x float64) []utils.Point {
	return []utils.Point{{X: x, Y: 0}, {X: x + 1, Y: 0}, {X: x + 1, Y: 1}, {X: x, Y: 1}}
}

func sampleRead() *ReadResult {
	return &ReadResult{Blocks: []Block{
		{Lines: []Line{
			{Text: "a b", Polygon: quadAt(0), Words: []Word{{Text: "a", Polygon: quadAt(0)}, {Text: "b", Polygon: quadAt(1)}}},
			{Text: "c", Polygon: quadAt(10), Words: []Word{{Text: "c", Polygon: quadAt(10)}}},
		}},
		{Lines: []Line{
			{Text: "d", Polygon: quadAt(20), Words: []Word{{Text: "d", Polygon: quadAt(20)}}},
		}},
	}}
}

func TestReadResult_Order(t *testing.T) {
	r := sampleRead()

	var lines []string
	for _, l := range r.Lines() {
		lines = append(lines, l.Text)
	}
	assert.Equal(t, []string{"a b", "c", "d"}, lines)

	var words []string
	for _, w := range r.Words() {
		words = append(words, w.Text)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, words)

	assert.Len(t, r.LinePolygons(), 3)
	wp := r.WordPolygons()
	assert.Len(t, wp, 4)
	assert.InDelta(t, 1.0, wp[1][0].X, 1e-9)
}

func TestReadResult_Nil(t *testing.T) {
	var r *ReadResult
	assert.Empty(t, r.Lines())
	assert.Empty(t, r.Words())
	assert.Empty(t, r.WordPolygons())
}

func TestResult_HasCaption(t *testing.T) {
	var r *Result
	assert.False(t, r.HasCaption())
	assert.False(t, (&Result{}).HasCaption())
	assert.False(t, (&Result{Caption: &Caption{Confidence: 0.5}}).HasCaption())
	assert.True(t, (&Result{Caption: &Caption{Text: "x"}}).HasCaption())
}
