package metrics

import "testing"

func TestRegistryGetOrRegisterReturnsSameHistogramForSameTags(t *testing.T) {
	r := NewRegistry()
	desc, err := NewMetricDescription("req_duration", "request duration", map[string]string{"route": "/a"})
	if err != nil {
		t.Fatal(err)
	}
	settings := DefaultHistogramSettings()

	h1, err := r.GetOrRegisterHistogram(desc, settings)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := r.GetOrRegisterHistogram(desc, settings)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("expected the same Histogram instance for identical registration")
	}
}

func TestRegistryDistinctTagValuesProduceDistinctHistograms(t *testing.T) {
	r := NewRegistry()
	settings := DefaultHistogramSettings()

	descA, _ := NewMetricDescription("req_duration", "request duration", map[string]string{"route": "/a"})
	descB, _ := NewMetricDescription("req_duration", "request duration", map[string]string{"route": "/b"})

	hA, err := r.GetOrRegisterHistogram(descA, settings)
	if err != nil {
		t.Fatal(err)
	}
	hB, err := r.GetOrRegisterHistogram(descB, settings)
	if err != nil {
		t.Fatal(err)
	}
	if hA == hB {
		t.Fatal("expected distinct Histograms for distinct tag values")
	}
	if len(r.Histograms()) != 2 {
		t.Fatalf("Histograms() = %d entries, want 2", len(r.Histograms()))
	}
}

func TestRegistryConflictingDefinitionReturnsError(t *testing.T) {
	r := NewRegistry()
	settings := DefaultHistogramSettings()

	descOK, _ := NewMetricDescription("req_duration", "request duration", nil)
	if _, err := r.GetOrRegisterHistogram(descOK, settings); err != nil {
		t.Fatal(err)
	}

	descConflict, _ := NewMetricDescription("req_duration", "a different description entirely", nil)
	if _, err := r.GetOrRegisterHistogram(descConflict, settings); err == nil {
		t.Fatal("expected MetricAlreadyRegDifferentlyError for conflicting definition hash")
	}
}

func TestRegistryHistogramsOrderIsDeterministic(t *testing.T) {
	r := NewRegistry()
	settings := DefaultHistogramSettings()

	names := []string{"metric_a", "metric_b", "metric_c"}
	for _, name := range names {
		desc, err := NewMetricDescription(name, "d", nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.GetOrRegisterHistogram(desc, settings); err != nil {
			t.Fatal(err)
		}
	}

	for attempt := 0; attempt < 5; attempt++ {
		got := r.Histograms()
		if len(got) != len(names) {
			t.Fatalf("Histograms() = %d entries, want %d", len(got), len(names))
		}
		for i, name := range names {
			if got[i].Description().Name != name {
				t.Fatalf("Histograms()[%d].Name = %q, want %q", i, got[i].Description().Name, name)
			}
		}
	}
}

func TestRegistryInvalidSettingsPropagatesError(t *testing.T) {
	r := NewRegistry()
	desc, _ := NewMetricDescription("bad_histogram", "d", nil)
	if _, err := r.GetOrRegisterHistogram(desc, HistogramSettings{Low: 0, High: 10, Precision: 2, Unit: None}); err == nil {
		t.Fatal("expected validation error to propagate from newHistogram")
	}
}
