package promexport

import (
	"sync"

	metrics "github.com/hiccupwatch/advisor"
)

// Bucket is one (upper_bound, cumulative_count) pair of a PrometheusHistogram.
type Bucket struct {
	UpperBound float64
	Count      uint64
}

// PrometheusHistogram is the cumulative Prometheus-shaped projection (C8)
// of one registered Histogram: fixed bucket bounds chosen at construction,
// counts that only ever grow, and a sum/count pair accumulated over every
// tick it has seen.
type PrometheusHistogram struct {
	Description *metrics.MetricDescription
	buckets     []Bucket
	Sum         float64
	Count       uint64
	TimestampMs uint64
}

func newPrometheusHistogram(description *metrics.MetricDescription) *PrometheusHistogram {
	bounds := BucketsFor(description.Name)
	buckets := make([]Bucket, len(bounds))
	for i, ub := range bounds {
		buckets[i] = Bucket{UpperBound: ub}
	}
	return &PrometheusHistogram{Description: description, buckets: buckets}
}

// Buckets returns the histogram's buckets in ascending upper-bound order.
// The implicit "+Inf" bucket is not stored explicitly — its count always
// equals Count, the running total — but callers that need the full
// Prometheus bucket list should append it.
func (p *PrometheusHistogram) Buckets() []Bucket {
	return p.buckets
}

// addSample folds one HistogramSample into the cumulative projection.
//
// Folding algorithm (O(n + b)): the HDR distribution yields (value,
// multiplicity) pairs in ascending value order; sweeping the bucket array
// once in lockstep lets every bucket accumulate the running tally of
// samples it has "passed", so each bucket ends up holding the cumulative
// count of samples at-or-below its bound.
func (p *PrometheusHistogram) addSample(sample metrics.HistogramSample, timestampMs uint64) {
	if len(p.buckets) == 0 {
		return
	}

	nextIdx := 0
	var sumSamples float64
	var countSamples uint64

	for _, bar := range sample.Distribution() {
		value := metrics.ConvertUnit(float64(bar.To), sample.Settings.Unit, metrics.TimeSeconds)
		count := uint64(bar.Count)

		for nextIdx < len(p.buckets) && value > p.buckets[nextIdx].UpperBound {
			p.buckets[nextIdx].Count += countSamples
			nextIdx++
		}

		sumSamples += value * float64(count)
		countSamples += count
	}

	for j := nextIdx; j < len(p.buckets); j++ {
		p.buckets[j].Count += countSamples
	}

	p.Sum += sumSamples
	p.Count += countSamples
	p.TimestampMs = timestampMs
}

// Projector owns the metric_id → PrometheusHistogram map (C8) and applies
// every snapshot it receives from the broadcast pipeline.
type Projector struct {
	mu    sync.RWMutex
	byID  map[metrics.MetricID]*PrometheusHistogram
	order []metrics.MetricID
}

// NewProjector returns an empty Projector.
func NewProjector() *Projector {
	return &Projector{byID: make(map[metrics.MetricID]*PrometheusHistogram)}
}

// ApplySnapshot folds every histogram sample in snapshot into its
// projection, creating a new PrometheusHistogram on first sight of a
// metric id.
func (p *Projector) ApplySnapshot(snapshot *metrics.MetricsSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, sample := range snapshot.Samples {
		if sample.Kind != metrics.MetricSampleKindHistogram {
			continue
		}
		id := sample.Description.ID
		ph, ok := p.byID[id]
		if !ok {
			ph = newPrometheusHistogram(sample.Description)
			p.byID[id] = ph
			p.order = append(p.order, id)
		}
		ph.addSample(sample.Histogram, snapshot.TimestampMs)
	}
}

// Histograms returns every projected histogram in first-seen order, so
// exposition output is stable across scrapes.
func (p *Projector) Histograms() []*PrometheusHistogram {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*PrometheusHistogram, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.byID[id])
	}
	return out
}
