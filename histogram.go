package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/valyala/fastrand"
)

// HistogramSettings configures the bounded-range, fixed-precision HDR
// distribution backing a Histogram.
type HistogramSettings struct {
	Low       uint64
	High      uint64
	Precision uint8
	Unit      *MeasurementUnit
}

// DefaultHistogramSettings mirrors the original implementation's default:
// a seconds-denominated histogram spanning one second to 1,000,000 seconds
// (~11.5 days).
func DefaultHistogramSettings() HistogramSettings {
	return HistogramSettings{Low: 1, High: 1_000_000, Precision: 2, Unit: TimeSeconds}
}

func (s HistogramSettings) validate() error {
	if s.Low == 0 || s.Low > s.High {
		return validationErrorf("invalid histogram bounds: low=%d high=%d (require 0 < low <= high)", s.Low, s.High)
	}
	if s.Precision > 5 {
		return validationErrorf("invalid histogram precision %d (must be in [0,5])", s.Precision)
	}
	return nil
}

// refreshBudget bounds how long Histogram.Sample may spend draining
// shards before it gives up and reports RefreshTimeoutError (spec: "a
// bounded refresh window (≤ 1 ms)").
const refreshBudget = time.Millisecond

// histoShard is one lock-protected slice of a Histogram's distribution.
// Spreading writers over several shards (selected by fastrand, not by
// goroutine identity — Go has no cheap goroutine-local storage) keeps any
// single recorder from serializing on one mutex, per spec.md §4.2/§9.
type histoShard struct {
	mu  sync.Mutex
	hdr *hdrhistogram.Histogram
}

// Histogram is the façade (C4) wrapping an HDR distribution with metric
// identity, settings and many-writer/one-reader sampling. The registry
// creates and keeps every Histogram, but GetOrRegisterHistogram returns the
// *Histogram itself: callers record through HistogramRecorder handles from
// NewRecorder and can also call Sample, including Sample(true), which
// resets the distribution.
type Histogram struct {
	description *MetricDescription
	settings    HistogramSettings
	shards      []*histoShard
}

func newHistogram(description *MetricDescription, settings HistogramSettings) (*Histogram, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	shardCount := runtime.GOMAXPROCS(0)
	if shardCount < 1 {
		shardCount = 1
	}
	shards := make([]*histoShard, shardCount)
	for i := range shards {
		shards[i] = &histoShard{hdr: hdrhistogram.New(int64(settings.Low), int64(settings.High), int(settings.Precision))}
	}
	return &Histogram{description: description, settings: settings, shards: shards}, nil
}

// Description returns the identity of this histogram.
func (h *Histogram) Description() *MetricDescription { return h.description }

// Settings returns the HDR bounds and unit this histogram was built with.
func (h *Histogram) Settings() HistogramSettings { return h.settings }

// NewRecorder returns a fresh writer handle sharing this Histogram's
// distribution. Many recorders may be created and used concurrently.
func (h *Histogram) NewRecorder() *HistogramRecorder {
	return &HistogramRecorder{histogram: h, unit: h.settings.Unit}
}

func (h *Histogram) pickShard() *histoShard {
	if len(h.shards) == 1 {
		return h.shards[0]
	}
	idx := fastrand.Uint32n(uint32(len(h.shards)))
	return h.shards[idx]
}

func (h *Histogram) record(v uint64) error {
	shard := h.pickShard()
	shard.mu.Lock()
	err := shard.hdr.RecordValue(int64(v))
	shard.mu.Unlock()
	if err != nil {
		return &OutOfRangeError{Value: v, Low: h.settings.Low, High: h.settings.High}
	}
	return nil
}

// Sample atomically merges every shard into a scratch HDR distribution,
// optionally resets the shards to empty, and returns an immutable
// HistogramSample. It enforces the bounded refresh window by checking a
// deadline between per-shard merges; exceeding it aborts and returns
// RefreshTimeoutError without partially resetting state.
func (h *Histogram) Sample(reset bool) (HistogramSample, error) {
	deadline := time.Now().Add(refreshBudget)
	scratch := hdrhistogram.New(int64(h.settings.Low), int64(h.settings.High), int(h.settings.Precision))

	locked := make([]*histoShard, 0, len(h.shards))
	for _, shard := range h.shards {
		if len(locked) > 0 && time.Now().After(deadline) {
			for _, s := range locked {
				s.mu.Unlock()
			}
			return HistogramSample{}, &RefreshTimeoutError{Name: h.description.Name}
		}
		shard.mu.Lock()
		locked = append(locked, shard)
		scratch.Merge(shard.hdr)
	}

	if reset {
		for _, shard := range locked {
			shard.hdr.Reset()
		}
	}
	for _, shard := range locked {
		shard.mu.Unlock()
	}

	return HistogramSample{hdr: scratch, Settings: h.settings}, nil
}

// HistogramRecorder is a lightweight writer handle for one Histogram. It
// remembers the histogram's configured unit so RecordDuration can convert
// seconds into that unit before recording.
type HistogramRecorder struct {
	histogram *Histogram
	unit      *MeasurementUnit
}

// Record records one sample. An out-of-range value is logged at debug and
// dropped, per spec.md §7 — it does not propagate as a hard error to keep
// recording off the hot-path error-handling concern, but the error is
// still returned for callers that want to observe it.
func (r *HistogramRecorder) Record(v uint64) error {
	if err := r.histogram.record(v); err != nil {
		pkgLogger.Debug().Err(err).Str("metric", r.histogram.description.Name).Msg("dropped out-of-range histogram sample")
		return err
	}
	return nil
}

// RecordDuration converts d into the histogram's configured unit and
// records it.
func (r *HistogramRecorder) RecordDuration(d time.Duration) error {
	v := ConvertUnit(d.Seconds(), TimeSeconds, r.unit)
	return r.Record(uint64(v))
}

// StartTimer captures the current monotonic instant; call Close on the
// result to record the elapsed duration.
func (r *HistogramRecorder) StartTimer() *HistogramTimer {
	return &HistogramTimer{recorder: r, start: time.Now()}
}

// HistogramTimer measures elapsed wall time between StartTimer and Close.
type HistogramTimer struct {
	recorder *HistogramRecorder
	start    time.Time
}

// Close records the elapsed duration since StartTimer and returns it.
func (t *HistogramTimer) Close() time.Duration {
	d := time.Since(t.start)
	_ = t.recorder.RecordDuration(d)
	return d
}

// HistogramSample is an immutable clone of an HDR distribution taken at a
// point in time, paired with the settings it was sampled under.
type HistogramSample struct {
	hdr      *hdrhistogram.Histogram
	Settings HistogramSettings
}

// TotalCount returns the number of observations folded into this sample.
func (s HistogramSample) TotalCount() int64 {
	if s.hdr == nil {
		return 0
	}
	return s.hdr.TotalCount()
}

// Distribution returns the sample's (value, count) pairs in ascending
// value order, skipping empty buckets — the shape the Prometheus projector
// folds in a single left-to-right sweep (spec.md §4.5).
func (s HistogramSample) Distribution() []hdrhistogram.Bar {
	if s.hdr == nil {
		return nil
	}
	bars := s.hdr.Distribution()
	out := bars[:0:0]
	for _, b := range bars {
		if b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}
