package metrics

import "testing"

func TestConvertNanosToSeconds(t *testing.T) {
	got := ConvertUnit(1025, TimeNanos, TimeSeconds)
	want := 0.000001025
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("ConvertUnit(1025, nanos, seconds) = %v, want %v", got, want)
	}
}

func TestConvertSecondsToNanos(t *testing.T) {
	got := ConvertUnit(1025, TimeSeconds, TimeNanos)
	want := 1_025_000_000_000.0
	if diff := got - want; diff > 1 || diff < -1 {
		t.Fatalf("ConvertUnit(1025, seconds, nanos) = %v, want %v", got, want)
	}
}

func TestConvertSameUnitIsIdentity(t *testing.T) {
	if got := ConvertUnit(42, TimeMillis, TimeMillis); got != 42 {
		t.Fatalf("ConvertUnit with identical units = %v, want 42", got)
	}
}

func TestConvertMismatchedDimensionIsNoOp(t *testing.T) {
	got := ConvertUnit(7, TimeSeconds, InfoBytes)
	if got != 7 {
		t.Fatalf("ConvertUnit across dimensions = %v, want input unchanged (7)", got)
	}
}

func TestConvertInformationUnits(t *testing.T) {
	got := ConvertUnit(1, InfoKilobytes, InfoBytes)
	if got != 1024 {
		t.Fatalf("ConvertUnit(1, KB, bytes) = %v, want 1024", got)
	}
}
