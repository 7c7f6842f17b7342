package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/jpeg" // decode uploaded pages
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/MeKo-Tech/spreadscan/internal/utils"
	"github.com/MeKo-Tech/spreadscan/internal/vision"
)

// FakeResponse is one scripted answer.
type FakeResponse struct {
	Result *vision.Result
	Err    error
}

// AnalyzeCall records one Analyze invocation.
type AnalyzeCall struct {
	Bytes    int
	Width    int
	Height   int
	Features vision.Features
}

// FakeAnalyzer answers Analyze calls from a script, in order. Once the script
// is exhausted it returns an empty result.
type FakeAnalyzer struct {
	mu        sync.Mutex
	responses []FakeResponse
	calls     []AnalyzeCall
	// Hook, when set, runs before the scripted answer is returned.
	Hook func(call AnalyzeCall)
}

// NewFakeAnalyzer scripts the given responses.
func NewFakeAnalyzer(responses ...FakeResponse) *FakeAnalyzer {
	return &FakeAnalyzer{responses: responses}
}

// Analyze implements vision.Analyzer.
func (f *FakeAnalyzer) Analyze(ctx context.Context, data []byte, features vision.Features) (*vision.Result, error) {
	call := AnalyzeCall{Bytes: len(data), Features: features}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		call.Width, call.Height = cfg.Width, cfg.Height
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	var resp FakeResponse
	if len(f.responses) > 0 {
		resp = f.responses[0]
		f.responses = f.responses[1:]
	}
	hook := f.Hook
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Result == nil {
		return &vision.Result{}, nil
	}
	return resp.Result, nil
}

// Calls returns the recorded invocations.
func (f *FakeAnalyzer) Calls() []AnalyzeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AnalyzeCall(nil), f.calls...)
}

// Quad returns the axis-aligned quadrilateral x,y,w,h as four points.
func Quad(x, y, w, h float64) []utils.Point {
	return []utils.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

// PageResult builds a typical answer: a caption plus one line of words, each
// word a 40x20 box laid out left to right.
func PageResult(caption string, confidence float64, words ...string) *vision.Result {
	res := &vision.Result{
		Caption:       &vision.Caption{Text: caption, Confidence: confidence},
		DenseCaptions: []vision.Caption{{Text: caption, Confidence: confidence}},
	}
	if len(words) == 0 {
		return res
	}
	line := vision.Line{Polygon: Quad(10, 10, float64(len(words))*50, 20), Confidence: 0.9}
	for i, w := range words {
		if i > 0 {
			line.Text += " "
		}
		line.Text += w
		line.Words = append(line.Words, vision.Word{Text: w, Confidence: 0.9, Polygon: Quad(10+float64(i)*50, 10, 40, 20)})
	}
	res.Read = &vision.ReadResult{Blocks: []vision.Block{{Lines: []vision.Line{line}}}}
	return res
}

// AzureJSON renders res in the Image Analysis REST response shape.
func AzureJSON(res *vision.Result) []byte {
	type wireWord struct {
		Text       string        `json:"text"`
		Confidence float64       `json:"confidence"`
		Polygon    []utils.Point `json:"boundingPolygon"`
	}
	type wireLine struct {
		Text    string        `json:"text"`
		Polygon []utils.Point `json:"boundingPolygon"`
		Words   []wireWord    `json:"words"`
	}
	type wireBlock struct {
		Lines []wireLine `json:"lines"`
	}
	out := map[string]any{
		"modelVersion": "2023-10-01",
		"metadata":     map[string]int{"width": res.Width, "height": res.Height},
	}
	if res.Caption != nil {
		out["captionResult"] = map[string]any{"text": res.Caption.Text, "confidence": res.Caption.Confidence}
	}
	if res.DenseCaptions != nil {
		out["denseCaptionsResult"] = map[string]any{"values": res.DenseCaptions}
	}
	if res.Read != nil {
		blocks := make([]wireBlock, 0, len(res.Read.Blocks))
		for _, b := range res.Read.Blocks {
			wb := wireBlock{}
			for _, l := range b.Lines {
				wl := wireLine{Text: l.Text, Polygon: l.Polygon}
				for _, w := range l.Words {
					wl.Words = append(wl.Words, wireWord(w))
				}
				wb.Lines = append(wb.Lines, wl)
			}
			blocks = append(blocks, wb)
		}
		out["readResult"] = map[string]any{"blocks": blocks}
	}
	data, _ := json.Marshal(out)
	return data
}

// AzureStandIn is an httptest server speaking the analyze endpoint. Each
// request consumes the next scripted response; an error response is sent as
// HTTP 500 with the service error envelope.
type AzureStandIn struct {
	*httptest.Server

	mu        sync.Mutex
	responses []FakeResponse
	requests  int
	keys      []string
	sizes     []image.Point
}

// NewAzureStandIn starts the server. Close it when done.
func NewAzureStandIn(responses ...FakeResponse) *AzureStandIn {
	s := &AzureStandIn{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Script appends responses.
func (s *AzureStandIn) Script(responses ...FakeResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, responses...)
}

// Requests returns how many analyze calls were served.
func (s *AzureStandIn) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Sizes returns the dimensions of each uploaded image; undecodable uploads
// are recorded as the zero point.
func (s *AzureStandIn) Sizes() []image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]image.Point(nil), s.sizes...)
}

// Keys returns the subscription keys seen, one per request.
func (s *AzureStandIn) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

func (s *AzureStandIn) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if r.Method != http.MethodPost || r.URL.Path != "/computervision/imageanalysis:analyze" {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.requests++
	s.keys = append(s.keys, r.Header.Get("Ocp-Apim-Subscription-Key"))
	var size image.Point
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(body)); err == nil {
		size = image.Pt(cfg.Width, cfg.Height)
	}
	s.sizes = append(s.sizes, size)
	var resp FakeResponse
	if len(s.responses) > 0 {
		resp = s.responses[0]
		s.responses = s.responses[1:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if resp.Err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		body, _ := json.Marshal(map[string]any{"error": map[string]string{"code": "InternalServerError", "message": resp.Err.Error()}})
		_, _ = w.Write(body)
		return
	}
	res := resp.Result
	if res == nil {
		res = &vision.Result{}
	}
	_, _ = w.Write(AzureJSON(res))
}
