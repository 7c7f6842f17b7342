package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Page outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics holds the Prometheus collectors for one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	pagesTotal        *prometheus.CounterVec
	entriesFailed     prometheus.Counter
	captionConfidence prometheus.Histogram
	analyzeDuration   prometheus.Histogram
	wordsRecognized   prometheus.Counter
	runDuration       prometheus.Gauge
}

// NewMetrics registers the run collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		pagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spreadscan_pages_total",
				Help: "Pages processed, by outcome",
			},
			[]string{"status"},
		),
		entriesFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "spreadscan_entries_failed_total",
			Help: "Input images that could not be loaded or split",
		}),
		captionConfidence: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spreadscan_caption_confidence",
			Help:    "Confidence of page captions",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		}),
		analyzeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spreadscan_analyze_duration_seconds",
			Help:    "Vision service round trip per page",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25},
		}),
		wordsRecognized: f.NewCounter(prometheus.CounterOpts{
			Name: "spreadscan_words_recognized_total",
			Help: "Words returned by the read feature",
		}),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "spreadscan_run_duration_seconds",
			Help: "Wall-clock duration of the last run",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// PageDone counts a finished page with the given status label.
func (m *Metrics) PageDone(status string) { m.pagesTotal.WithLabelValues(status).Inc() }

// EntryFailed counts an input that failed before any page was produced.
func (m *Metrics) EntryFailed() { m.entriesFailed.Inc() }

// ObserveCaption records a caption confidence.
func (m *Metrics) ObserveCaption(c float64) { m.captionConfidence.Observe(c) }

// ObserveAnalyze records the duration of one vision call.
func (m *Metrics) ObserveAnalyze(d time.Duration) { m.analyzeDuration.Observe(d.Seconds()) }

// AddWords counts recognized words.
func (m *Metrics) AddWords(n int) { m.wordsRecognized.Add(float64(n)) }

// SetRunDuration records the total run time.
func (m *Metrics) SetRunDuration(d time.Duration) { m.runDuration.Set(d.Seconds()) }

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Push sends the metrics to a Pushgateway under the given job name.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
