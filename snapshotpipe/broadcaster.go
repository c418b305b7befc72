// Package snapshotpipe implements the periodic snapshot producer (C7):
// it samples a metrics registry on a fixed interval and broadcasts the
// result to any number of subscribers without ever blocking on a slow one.
package snapshotpipe

import (
	"sync"
	"sync/atomic"

	metrics "github.com/hiccupwatch/advisor"
)

// broadcastCapacity is the bounded channel depth given to every
// subscriber, per spec.md §4.4.
const broadcastCapacity = 16

// Subscription is a subscriber's handle onto the broadcast. Snapshots
// arrive on C; if the subscriber falls behind, the producer drops
// snapshots for it rather than blocking, and the drop count accumulates
// in Lag.
type Subscription struct {
	C <-chan *metrics.MetricsSnapshot

	ch  chan *metrics.MetricsSnapshot
	lag atomic.Uint64
}

// Lag returns the number of snapshots dropped for this subscriber because
// it did not drain its channel in time.
func (s *Subscription) Lag() uint64 {
	return s.lag.Load()
}

// Broadcaster fans a single stream of snapshots out to many subscribers.
// Publish never blocks: a subscriber whose channel is full simply misses
// that tick and its lag counter increments.
type Broadcaster struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers a new subscriber and returns its Subscription.
func (b *Broadcaster) Subscribe() *Subscription {
	ch := make(chan *metrics.MetricsSnapshot, broadcastCapacity)
	sub := &Subscription{C: ch, ch: ch}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return sub
}

// Unsubscribe removes sub from the broadcaster; its channel is closed so
// range loops over sub.C terminate.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(s.ch)
			return
		}
	}
}

// Publish delivers snapshot to every current subscriber, non-blocking.
func (b *Broadcaster) Publish(snapshot *metrics.MetricsSnapshot) {
	b.mu.Lock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- snapshot:
		default:
			sub.lag.Add(1)
		}
	}
}
