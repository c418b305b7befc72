package snapshotpipe

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	metrics "github.com/hiccupwatch/advisor"
	"github.com/rs/zerolog"
)

// DefaultInterval is the snapshot cadence used when Producer is built
// without an explicit interval.
const DefaultInterval = 15 * time.Second

// Producer periodically samples every Histogram registered in a Registry
// and broadcasts the resulting MetricsSnapshot. It is the concrete
// implementation of C7.
type Producer struct {
	registry *metrics.Registry
	interval time.Duration
	bcast    *Broadcaster
	logger   zerolog.Logger

	running atomic.Bool
	stopped atomic.Bool
	wg      sync.WaitGroup
	stopCh  chan struct{}

	nowMs func() uint64
}

// NewProducer returns a Producer over registry, publishing every interval
// (DefaultInterval if zero) to its own Broadcaster. Logging defaults to a
// disabled logger, the same way metrics.pkgLogger does, until SetLogger is
// called.
func NewProducer(registry *metrics.Registry, interval time.Duration) *Producer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Producer{
		registry: registry,
		interval: interval,
		bcast:    NewBroadcaster(),
		logger:   zerolog.Nop(),
		stopCh:   make(chan struct{}),
		nowMs:    func() uint64 { return uint64(time.Now().UnixMilli()) },
	}
}

// SetLogger installs the logger used to report skipped ticks.
func (p *Producer) SetLogger(l zerolog.Logger) {
	p.logger = l
}

// Subscribe registers a new subscriber for published snapshots.
func (p *Producer) Subscribe() *Subscription {
	return p.bcast.Subscribe()
}

// Unsubscribe removes a previously-registered subscriber.
func (p *Producer) Unsubscribe(sub *Subscription) {
	p.bcast.Unsubscribe(sub)
}

// Start launches the periodic sampling loop in a new goroutine.
func (p *Producer) Start() {
	p.running.Store(true)
	p.wg.Add(1)
	go p.run()
}

// Stop signals the loop to exit and waits for it to finish. Idempotent.
func (p *Producer) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	p.running.Store(false)
	close(p.stopCh)
	p.wg.Wait()
}

func (p *Producer) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.bcast.Publish(p.tick())
		}
	}
}

// tick samples every registered Histogram once, skipping (without
// clearing) any that exceed their refresh budget, per spec.md §4.4.
func (p *Producer) tick() *metrics.MetricsSnapshot {
	histograms := p.registry.Histograms()
	samples := make([]metrics.MetricSample, 0, len(histograms))

	for _, h := range histograms {
		sample, err := h.Sample(true)
		if err != nil {
			// A RefreshTimeoutError (or any other sampling failure) means
			// this metric is skipped for the tick, neither cleared nor
			// reported, per spec.md §4.4.
			var refreshErr *metrics.RefreshTimeoutError
			if errors.As(err, &refreshErr) {
				p.logger.Info().Err(err).Str("metric", h.Description().Name).Msg("skipping histogram refresh for this tick")
			}
			continue
		}
		samples = append(samples, metrics.NewHistogramMetricSample(h.Description(), sample))
	}

	return metrics.NewMetricsSnapshot(samples, p.nowMs())
}
