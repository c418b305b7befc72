package promexport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestProcessCollectorDescribeAndCollect(t *testing.T) {
	c := newProcessCollector()

	descCh := make(chan *prometheus.Desc, 16)
	c.Describe(descCh)
	close(descCh)
	var descCount int
	for range descCh {
		descCount++
	}
	require.Equal(t, 6, descCount)

	metricCh := make(chan prometheus.Metric, 16)
	c.Collect(metricCh)
	close(metricCh)
	var metricCount int
	for range metricCh {
		metricCount++
	}
	// 5 GC duration quantiles + sum + heap alloc + heap objects + goroutines + gomaxprocs
	require.Equal(t, len(gcQuantiles)+5, metricCount)
}
