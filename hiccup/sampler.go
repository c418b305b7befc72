// Package hiccup implements the coordinated-omission-corrected scheduler
// hiccup sampler (C6): a tight sleep/measure loop that turns scheduler and
// runtime stalls into correctly-weighted histogram observations.
package hiccup

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	metrics "github.com/hiccupwatch/advisor"
)

// Sampler runs the hiccup measurement loop on a dedicated OS thread until
// stopped. The zero value is not usable; construct with NewSampler.
type Sampler struct {
	resolution time.Duration
	recorder   *metrics.HistogramRecorder

	running atomic.Bool
	stopped atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSampler returns a Sampler that observes into recorder every
// resolution. resolution is the target sleep interval (spec.md's "R", in
// nanoseconds); a zero resolution disables coordinated-omission
// correction (the sampler still runs, recording raw scheduling jitter
// around effectively-immediate wakeups).
func NewSampler(resolution time.Duration, recorder *metrics.HistogramRecorder) *Sampler {
	return &Sampler{resolution: resolution, recorder: recorder, done: make(chan struct{})}
}

// Start launches the sampling loop on its own OS thread. It is not safe
// to call Start twice on the same Sampler.
func (s *Sampler) Start() {
	s.running.Store(true)
	s.wg.Add(1)
	go s.run()
}

// Stop signals the loop to exit and blocks until the dedicated thread has
// joined. Stop is idempotent: calls after the first are a no-op.
func (s *Sampler) Stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	s.running.Store(false)
	s.wg.Wait()
}

func (s *Sampler) run() {
	defer s.wg.Done()

	// Pin to one OS thread so the scheduler cannot migrate the goroutine
	// mid-measurement and fold in a false hiccup from the migration itself.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var shortest time.Duration = -1 // unset; first sample always seeds it

	for s.running.Load() {
		t0 := time.Now()
		time.Sleep(s.resolution)
		elapsed := time.Since(t0)

		if shortest < 0 || elapsed < shortest {
			shortest = elapsed
		}
		hiccup := elapsed - shortest
		if hiccup < 0 {
			hiccup = 0
		}
		s.recordWithCOR(hiccup)
	}
}

// recordWithCOR records hiccup and then synthesizes the observations that
// coordinated omission would otherwise have hidden: a stall of magnitude H
// implies samples that would have landed every resolution during the
// stall were silently skipped, so we record them retroactively.
func (s *Sampler) recordWithCOR(hiccup time.Duration) {
	_ = s.recorder.RecordDuration(hiccup)

	if s.resolution <= 0 || hiccup < s.resolution {
		return
	}
	m := hiccup - s.resolution
	for m >= s.resolution {
		_ = s.recorder.RecordDuration(m)
		m -= s.resolution
	}
}
