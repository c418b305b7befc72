package metrics

import "testing"

func TestNewCounterAndGaugeMetricSampleAreNotImplemented(t *testing.T) {
	desc, _ := NewMetricDescription("m", "d", nil)
	if _, err := NewCounterMetricSample(desc); err != ErrNotImplemented {
		t.Fatalf("NewCounterMetricSample error = %v, want ErrNotImplemented", err)
	}
	if _, err := NewGaugeMetricSample(desc); err != ErrNotImplemented {
		t.Fatalf("NewGaugeMetricSample error = %v, want ErrNotImplemented", err)
	}
}

func TestNewHistogramMetricSampleCarriesDescriptionAndSample(t *testing.T) {
	desc, _ := NewMetricDescription("m", "d", nil)
	h, err := newHistogram(desc, DefaultHistogramSettings())
	if err != nil {
		t.Fatal(err)
	}
	sample, err := h.Sample(false)
	if err != nil {
		t.Fatal(err)
	}

	ms := NewHistogramMetricSample(desc, sample)
	if ms.Kind != MetricSampleKindHistogram {
		t.Fatalf("Kind = %v, want MetricSampleKindHistogram", ms.Kind)
	}
	if ms.Description != desc {
		t.Fatal("Description not preserved on MetricSample")
	}
}

func TestMetricsSnapshotHoldsSamplesAndTimestamp(t *testing.T) {
	snap := NewMetricsSnapshot(nil, 123)
	if snap.TimestampMs != 123 {
		t.Fatalf("TimestampMs = %d, want 123", snap.TimestampMs)
	}
	if snap.Samples != nil {
		t.Fatal("expected nil samples to be preserved")
	}
}
