package snapshotpipe

import (
	"testing"
	"time"

	metrics "github.com/hiccupwatch/advisor"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, name string) (*metrics.Registry, *metrics.HistogramRecorder) {
	t.Helper()
	reg := metrics.NewRegistry()
	desc, err := metrics.NewMetricDescription(name, "a test metric", nil)
	require.NoError(t, err)
	h, err := reg.GetOrRegisterHistogram(desc, metrics.DefaultHistogramSettings())
	require.NoError(t, err)
	return reg, h.NewRecorder()
}

func TestProducerTickProducesOneSamplePerHistogram(t *testing.T) {
	reg, rec := newTestRegistry(t, "producer_tick_metric")
	require.NoError(t, rec.Record(10))
	require.NoError(t, rec.Record(20))

	p := NewProducer(reg, time.Second)
	snap := p.tick()

	require.Len(t, snap.Samples, 1)
	require.Equal(t, "producer_tick_metric", snap.Samples[0].Description.Name)
	require.Equal(t, int64(2), snap.Samples[0].Histogram.TotalCount())
}

func TestProducerTickResetsHistogramBetweenTicks(t *testing.T) {
	reg, rec := newTestRegistry(t, "producer_reset_metric")
	require.NoError(t, rec.Record(5))

	p := NewProducer(reg, time.Second)
	first := p.tick()
	require.Equal(t, int64(1), first.Samples[0].Histogram.TotalCount())

	second := p.tick()
	require.Equal(t, int64(0), second.Samples[0].Histogram.TotalCount())
}

func TestProducerStartPublishesToSubscribers(t *testing.T) {
	reg, rec := newTestRegistry(t, "producer_publish_metric")
	require.NoError(t, rec.Record(42))

	p := NewProducer(reg, 5*time.Millisecond)
	sub := p.Subscribe()
	p.Start()
	defer p.Stop()

	select {
	case snap := <-sub.C:
		require.NotNil(t, snap)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a published snapshot")
	}
}

func TestProducerStopIsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t, "producer_stop_metric")
	p := NewProducer(reg, 5*time.Millisecond)
	p.Start()
	p.Stop()
	p.Stop()
}
