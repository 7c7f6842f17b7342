// Package stats accumulates run-wide caption confidence and processing metrics.
package stats

// Aggregator keeps a running sum and count of caption confidences. The
// accumulation is order independent; it is owned by a single run.
type Aggregator struct {
	sum     float64
	count   int
	metrics *Metrics
}

// NewAggregator returns an empty aggregator. m may be nil.
func NewAggregator(m *Metrics) *Aggregator {
	return &Aggregator{metrics: m}
}

// Record adds one caption confidence.
func (a *Aggregator) Record(confidence float64) {
	a.sum += confidence
	a.count++
	if a.metrics != nil {
		a.metrics.ObserveCaption(confidence)
	}
}

// Count returns the number of recorded confidences.
func (a *Aggregator) Count() int { return a.count }

// Sum returns the total of recorded confidences.
func (a *Aggregator) Sum() float64 { return a.sum }

// Mean returns Sum/Count, or 0 when nothing was recorded.
func (a *Aggregator) Mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}
