package metrics

// MetricSampleKind discriminates the variants of MetricSample. Counter and
// Gauge are reserved for forward compatibility with the wire format but
// have no producer yet (see NewCounterMetricSample, NewGaugeMetricSample).
type MetricSampleKind int

const (
	MetricSampleKindHistogram MetricSampleKind = iota
	MetricSampleKindCounter
	MetricSampleKindGauge
)

// MetricSample pairs a metric's identity with its point-in-time value. It
// is the unit carried over the snapshot pipeline (C7) from registry to
// exporter.
type MetricSample struct {
	Kind        MetricSampleKind
	Description *MetricDescription

	Histogram HistogramSample
}

// NewHistogramMetricSample builds the sample variant produced by sampling
// a registered Histogram.
func NewHistogramMetricSample(description *MetricDescription, sample HistogramSample) MetricSample {
	return MetricSample{Kind: MetricSampleKindHistogram, Description: description, Histogram: sample}
}

// NewCounterMetricSample is reserved: the registry does not yet expose a
// Counter metric type, so constructing one always fails.
func NewCounterMetricSample(description *MetricDescription) (MetricSample, error) {
	return MetricSample{}, ErrNotImplemented
}

// NewGaugeMetricSample is reserved: the registry does not yet expose a
// Gauge metric type, so constructing one always fails.
func NewGaugeMetricSample(description *MetricDescription) (MetricSample, error) {
	return MetricSample{}, ErrNotImplemented
}

// MetricsSnapshot is an immutable batch of samples taken at one instant,
// timestamped in Unix milliseconds.
type MetricsSnapshot struct {
	Samples     []MetricSample
	TimestampMs uint64
}

// NewMetricsSnapshot builds a snapshot from already-collected samples.
func NewMetricsSnapshot(samples []MetricSample, timestampMs uint64) *MetricsSnapshot {
	return &MetricsSnapshot{Samples: samples, TimestampMs: timestampMs}
}
