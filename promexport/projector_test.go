package promexport

import (
	"testing"

	metrics "github.com/hiccupwatch/advisor"
	"github.com/stretchr/testify/require"
)

// recordInto builds a histogram, records each (value, multiplicity) pair
// in seconds, and returns one Sample of it — mirroring the fixtures in
// the original implementation's prometheus_histogram tests.
func recordInto(t *testing.T, pairs [][2]uint64) metrics.HistogramSample {
	t.Helper()
	desc, err := metrics.NewMetricDescription("metric_name_1", "some description", map[string]string{"tag_1": "tag_value_1"})
	require.NoError(t, err)

	reg := metrics.NewRegistry()
	h, err := reg.GetOrRegisterHistogram(desc, metrics.HistogramSettings{Low: 1, High: 1000, Precision: 2, Unit: metrics.TimeSeconds})
	require.NoError(t, err)

	rec := h.NewRecorder()
	for _, pair := range pairs {
		value, mult := pair[0], pair[1]
		for i := uint64(0); i < mult; i++ {
			require.NoError(t, rec.Record(value))
		}
	}

	sample, err := h.Sample(false)
	require.NoError(t, err)
	return sample
}

func bucketCounts(t *testing.T, ph *PrometheusHistogram) []uint64 {
	t.Helper()
	counts := make([]uint64, 0, len(ph.Buckets())+1)
	for _, b := range ph.Buckets() {
		counts = append(counts, b.Count)
	}
	counts = append(counts, ph.Count) // implicit +Inf bucket
	return counts
}

func TestAddSnapshotSingleTickMatchesReferenceFixture(t *testing.T) {
	RegisterBuckets("metric_name_1", []float64{2, 4, 6, 8, 10})
	defer RegisterBuckets("metric_name_1", DefaultBuckets)

	sample := recordInto(t, [][2]uint64{{0, 3}, {1, 5}, {3, 1}, {5, 10}, {6, 7}})

	p := NewProjector()
	snap := metrics.NewMetricsSnapshot([]metrics.MetricSample{
		metrics.NewHistogramMetricSample(mustDescription(t), sample),
	}, 1)
	p.ApplySnapshot(snap)

	ph := p.Histograms()[0]
	require.Equal(t, []uint64{8, 9, 26, 26, 26, 26}, bucketCounts(t, ph))
	require.Equal(t, uint64(26), ph.Count)
	require.InDelta(t, 100.0, ph.Sum, 1e-6)
}

func TestAddMultipleSnapshotsAccumulateMatchingReferenceFixture(t *testing.T) {
	RegisterBuckets("metric_name_1", []float64{2, 4, 6, 8, 10})
	defer RegisterBuckets("metric_name_1", DefaultBuckets)

	p := NewProjector()
	desc := mustDescription(t)

	first := recordInto(t, [][2]uint64{{0, 3}, {1, 5}, {3, 1}, {5, 10}, {6, 7}})
	p.ApplySnapshot(metrics.NewMetricsSnapshot([]metrics.MetricSample{
		metrics.NewHistogramMetricSample(desc, first),
	}, 1))

	second := recordInto(t, [][2]uint64{
		{0, 3}, {1, 20}, {3, 13}, {4, 45}, {5, 71}, {6, 51}, {7, 27}, {8, 35}, {9, 115}, {12, 23},
	})
	p.ApplySnapshot(metrics.NewMetricsSnapshot([]metrics.MetricSample{
		metrics.NewHistogramMetricSample(desc, second),
	}, 2))

	ph := p.Histograms()[0]
	require.Equal(t, []uint64{31, 90, 229, 291, 406, 429}, bucketCounts(t, ph))
	require.Equal(t, uint64(429), ph.Count)
	require.InDelta(t, 2780.0, ph.Sum, 1e-6)
}

func mustDescription(t *testing.T) *metrics.MetricDescription {
	t.Helper()
	desc, err := metrics.NewMetricDescription("metric_name_1", "some description", map[string]string{"tag_1": "tag_value_1"})
	require.NoError(t, err)
	return desc
}

func TestAddSampleWithNoBucketsIsANoOp(t *testing.T) {
	RegisterBuckets("empty_buckets_metric", nil)
	defer delete(bucketTable, "empty_buckets_metric")

	desc, err := metrics.NewMetricDescription("empty_buckets_metric", "d", nil)
	require.NoError(t, err)

	reg := metrics.NewRegistry()
	h, err := reg.GetOrRegisterHistogram(desc, metrics.DefaultHistogramSettings())
	require.NoError(t, err)
	require.NoError(t, h.NewRecorder().Record(1))
	sample, err := h.Sample(false)
	require.NoError(t, err)

	p := NewProjector()
	p.ApplySnapshot(metrics.NewMetricsSnapshot([]metrics.MetricSample{
		metrics.NewHistogramMetricSample(desc, sample),
	}, 1))

	ph := p.Histograms()[0]
	require.Empty(t, ph.Buckets())
	require.Equal(t, uint64(0), ph.Count)
}
