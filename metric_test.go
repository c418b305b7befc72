package metrics

import "testing"

func TestMetricDescriptionSameIDIgnoringTagOrder(t *testing.T) {
	m1, err := NewMetricDescription("m", "d", map[string]string{"t1": "v1", "t2": "v2"})
	if err != nil {
		t.Fatal(err)
	}
	m2, err := NewMetricDescription("m", "d", map[string]string{"t2": "v2", "t1": "v1"})
	if err != nil {
		t.Fatal(err)
	}
	if m1.ID != m2.ID {
		t.Fatalf("ID differs by tag map order: %d != %d", m1.ID, m2.ID)
	}
	if m1.DefinitionHash != m2.DefinitionHash {
		t.Fatalf("DefinitionHash differs by tag map order: %d != %d", m1.DefinitionHash, m2.DefinitionHash)
	}
}

func TestMetricDescriptionDifferentDescriptionConflicts(t *testing.T) {
	m1, _ := NewMetricDescription("m", "d1", nil)
	m2, _ := NewMetricDescription("m", "d2", nil)
	if m1.DefinitionHash == m2.DefinitionHash {
		t.Fatalf("expected different definition hashes for differing descriptions")
	}
}

func TestMetricDescriptionDifferentTagValuesSameDefinitionHash(t *testing.T) {
	m1, _ := NewMetricDescription("m", "d", map[string]string{"t": "a"})
	m2, _ := NewMetricDescription("m", "d", map[string]string{"t": "b"})
	if m1.DefinitionHash != m2.DefinitionHash {
		t.Fatalf("expected same definition hash across differing tag values")
	}
	if m1.ID == m2.ID {
		t.Fatalf("expected different metric id across differing tag values")
	}
}

func TestMetricDescriptionDifferentTagNamesConflict(t *testing.T) {
	m1, _ := NewMetricDescription("m", "d", map[string]string{"t1": "v"})
	m2, _ := NewMetricDescription("m", "d", map[string]string{"t2": "v"})
	if m1.DefinitionHash == m2.DefinitionHash {
		t.Fatalf("expected different definition hashes for differing tag names")
	}
}

func TestInvalidMetricName(t *testing.T) {
	for _, name := range []string{"1bad", "", "has space", "bad$char"} {
		if _, err := NewMetricDescription(name, "d", nil); err == nil {
			t.Fatalf("expected validation error for name %q", name)
		}
	}
}

func TestValidMetricNames(t *testing.T) {
	for _, name := range []string{"a", "_9:8", "foo_bar", "foo:bar", "A1"} {
		if _, err := NewMetricDescription(name, "d", nil); err != nil {
			t.Fatalf("unexpected error for valid name %q: %s", name, err)
		}
	}
}

func TestInvalidTagName(t *testing.T) {
	if _, err := NewMetricDescription("m", "d", map[string]string{"1bad": "v"}); err == nil {
		t.Fatalf("expected validation error for invalid tag name")
	}
}

func TestInvalidTagValue(t *testing.T) {
	if _, err := NewMetricDescription("m", "d", map[string]string{"t": "bad value"}); err == nil {
		t.Fatalf("expected validation error for invalid tag value")
	}
}

func TestValidTagValueCharset(t *testing.T) {
	if _, err := NewMetricDescription("m", "d", map[string]string{"t": "a-b_c.d/e9"}); err != nil {
		t.Fatalf("unexpected error for valid tag value: %s", err)
	}
}
