package promexport

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/histogram"
)

// gcQuantiles are the quantiles reported for go_gc_duration_seconds,
// matching the set the Go runtime itself historically exposed.
var gcQuantiles = []float64{0, 0.25, 0.5, 0.75, 1}

// processCollector is a prometheus.Collector exposing a handful of Go
// runtime signals (GC pause quantiles, heap size, goroutine count)
// through the same client_golang passthrough the exposition server
// already serves. GC pause quantiles are computed with a fast streaming
// histogram rather than sorting every pause on each scrape.
type processCollector struct {
	gcDuration    *prometheus.Desc
	gcDurationSum *prometheus.Desc
	heapAlloc     *prometheus.Desc
	heapObjects   *prometheus.Desc
	goroutines    *prometheus.Desc
	gomaxprocs    *prometheus.Desc
}

func newProcessCollector() *processCollector {
	return &processCollector{
		gcDuration:    prometheus.NewDesc("go_gc_duration_seconds", "A summary of the pause duration of garbage collection cycles.", []string{"quantile"}, nil),
		gcDurationSum: prometheus.NewDesc("go_gc_duration_seconds_sum", "Total seconds spent in garbage collection pauses.", nil, nil),
		heapAlloc:     prometheus.NewDesc("go_memstats_heap_alloc_bytes", "Bytes of allocated heap objects.", nil, nil),
		heapObjects:   prometheus.NewDesc("go_memstats_heap_objects", "Number of allocated heap objects.", nil, nil),
		goroutines:    prometheus.NewDesc("go_goroutines", "Number of goroutines that currently exist.", nil, nil),
		gomaxprocs:    prometheus.NewDesc("go_gomaxprocs", "The value of GOMAXPROCS.", nil, nil),
	}
}

func (c *processCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.gcDuration
	ch <- c.gcDurationSum
	ch <- c.heapAlloc
	ch <- c.heapObjects
	ch <- c.goroutines
	ch <- c.gomaxprocs
}

func (c *processCollector) Collect(ch chan<- prometheus.Metric) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	gcPauses := histogram.NewFast()
	for _, pauseNs := range ms.PauseNs[:] {
		gcPauses.Update(float64(pauseNs) / 1e9)
	}
	quantileValues := gcPauses.Quantiles(nil, gcQuantiles)
	for i, q := range gcQuantiles {
		ch <- prometheus.MustNewConstMetric(c.gcDuration, prometheus.GaugeValue, quantileValues[i], formatBound(q))
	}
	ch <- prometheus.MustNewConstMetric(c.gcDurationSum, prometheus.GaugeValue, float64(ms.PauseTotalNs)/1e9)
	ch <- prometheus.MustNewConstMetric(c.heapAlloc, prometheus.GaugeValue, float64(ms.HeapAlloc))
	ch <- prometheus.MustNewConstMetric(c.heapObjects, prometheus.GaugeValue, float64(ms.HeapObjects))
	ch <- prometheus.MustNewConstMetric(c.goroutines, prometheus.GaugeValue, float64(runtime.NumGoroutine()))
	ch <- prometheus.MustNewConstMetric(c.gomaxprocs, prometheus.GaugeValue, float64(runtime.GOMAXPROCS(0)))
}

func init() {
	prometheus.MustRegister(newProcessCollector())
}
