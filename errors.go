package metrics

import "fmt"

// ValidationError reports an invalid metric name, tag name, tag value or
// histogram bound supplied at registration time.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid metric definition: %s", e.Msg)
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// MetricAlreadyRegDifferentlyError is returned when a name is re-registered
// with a description or tag-name set that differs from the definition that
// first claimed it.
type MetricAlreadyRegDifferentlyError struct {
	Name string
}

func (e *MetricAlreadyRegDifferentlyError) Error() string {
	return fmt.Sprintf("metric %q is already registered with a different definition (description or tag names differ)", e.Name)
}

// OutOfRangeError is returned (and, per the recorder's contract, usually
// just logged and dropped rather than propagated) when a recorded value is
// too large for the HDR distribution built from a histogram's [low, high]
// settings. Values below low are recorded, not rejected.
type OutOfRangeError struct {
	Value    uint64
	Low, High uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("value %d is out of histogram range [%d, %d]", e.Value, e.Low, e.High)
}

// RefreshTimeoutError is returned when a snapshot refresh could not drain
// a histogram's shards within the bounded refresh window.
type RefreshTimeoutError struct {
	Name string
}

func (e *RefreshTimeoutError) Error() string {
	return fmt.Sprintf("refresh of histogram %q exceeded its bounded window", e.Name)
}

// ErrNotImplemented is returned by code paths reserved for the Counter and
// Gauge MetricSample variants, which this release declares but does not
// implement.
var ErrNotImplemented = fmt.Errorf("metrics: sample kind not implemented in this release")
