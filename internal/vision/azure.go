package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MeKo-Tech/spreadscan/internal/utils"
)

// Defaults for the Image Analysis 4.0 REST API.
const (
	DefaultAPIVersion = "2024-02-01"
	analyzePath       = "/computervision/imageanalysis:analyze"
	keyHeader         = "Ocp-Apim-Subscription-Key"
	maxErrorBody      = 4 << 10
)

// ErrMissingEndpoint is returned when the client has no endpoint or key.
var ErrMissingEndpoint = errors.New("vision endpoint and key are required")

// AzureClient calls Azure AI Vision Image Analysis.
type AzureClient struct {
	endpoint   string
	key        string
	apiVersion string
	language   string
	httpClient *http.Client
}

// AzureOption configures an AzureClient.
type AzureOption func(*AzureClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) AzureOption {
	return func(a *AzureClient) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// WithAPIVersion overrides the api-version query parameter.
func WithAPIVersion(v string) AzureOption {
	return func(a *AzureClient) {
		if v != "" {
			a.apiVersion = v
		}
	}
}

// WithLanguage sets the language query parameter.
func WithLanguage(lang string) AzureOption {
	return func(a *AzureClient) { a.language = lang }
}

// NewAzureClient returns a client for the resource at endpoint.
func NewAzureClient(endpoint, key string, opts ...AzureOption) (*AzureClient, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" || strings.TrimSpace(key) == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid vision endpoint: %w", err)
	}
	c := &AzureClient{
		endpoint:   endpoint,
		key:        key,
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *AzureClient) requestURL(features Features) string {
	q := url.Values{}
	q.Set("api-version", c.apiVersion)
	q.Set("features", features.String())
	if c.language != "" {
		q.Set("language", c.language)
	}
	return c.endpoint + analyzePath + "?" + q.Encode()
}

// Analyze posts the image bytes and decodes the response.
func (c *AzureClient) Analyze(ctx context.Context, image []byte, features Features) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if features == 0 {
		features = DefaultFeatures
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(features), bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(keyHeader, c.key)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("vision response", "status", resp.StatusCode, "bytes", len(image), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeServiceError(resp)
	}

	var wire analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}
	return wire.toResult(), nil
}

func decodeServiceError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := &ServiceError{StatusCode: resp.StatusCode}
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
		return se
	}
	se.Message = strings.TrimSpace(string(body))
	if se.Message == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}

type analyzeResponse struct {
	ModelVersion  string `json:"modelVersion"`
	CaptionResult *struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"captionResult"`
	DenseCaptionsResult *struct {
		Values []Caption `json:"values"`
	} `json:"denseCaptionsResult"`
	Metadata struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"metadata"`
	ReadResult *struct {
		Blocks []struct {
			Lines []struct {
				Text       string        `json:"text"`
				Confidence *float64      `json:"confidence"`
				Polygon    []utils.Point `json:"boundingPolygon"`
				Words      []Word        `json:"words"`
			} `json:"lines"`
		} `json:"blocks"`
	} `json:"readResult"`
}

func (w *analyzeResponse) toResult() *Result {
	r := &Result{
		ModelVersion: w.ModelVersion,
		Width:        w.Metadata.Width,
		Height:       w.Metadata.Height,
	}
	if w.CaptionResult != nil {
		r.Caption = &Caption{Text: w.CaptionResult.Text, Confidence: w.CaptionResult.Confidence}
	}
	if w.DenseCaptionsResult != nil {
		r.DenseCaptions = w.DenseCaptionsResult.Values
	}
	if w.ReadResult != nil {
		r.Read = &ReadResult{Blocks: make([]Block, 0, len(w.ReadResult.Blocks))}
		for _, wb := range w.ReadResult.Blocks {
			b := Block{Lines: make([]Line, 0, len(wb.Lines))}
			for _, wl := range wb.Lines {
				l := Line{Text: wl.Text, Polygon: wl.Polygon, Words: wl.Words}
				if wl.Confidence != nil {
					l.Confidence = *wl.Confidence
				} else {
					l.Confidence = meanWordConfidence(wl.Words)
				}
				b.Lines = append(b.Lines, l)
			}
			r.Read.Blocks = append(r.Read.Blocks, b)
		}
	}
	return r
}

func meanWordConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}
