// Package promexport implements the Prometheus projection (C8), text
// exposition encoder (C9) and HTTP server (C10) that together turn
// broadcast MetricsSnapshots into a scrapeable /metrics endpoint.
package promexport

// DefaultBuckets is the fallback bucket ladder used for any histogram
// without a more specific entry in BucketsFor.
var DefaultBuckets = []float64{10, 30, 100, 300, 1000, 3000, 10000, 30000, 100000}

// HiccupBuckets spans tens of nanoseconds through hundreds of
// microseconds, matched to the resolution of the scheduler hiccup
// sampler (C6).
var HiccupBuckets = []float64{
	0.000_000_050, 0.000_000_100, 0.000_000_250, 0.000_000_500,
	0.000_001_000, 0.000_002_500, 0.000_005_000, 0.000_010_000,
	0.000_025_000, 0.000_050_000, 0.000_100_000,
}

// HTTPDurationBuckets matches the self-observed exposition endpoint's
// request-duration histogram.
var HTTPDurationBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.50, 1.0, 2.5, 5.0, 10.0,
}

const (
	hiccupMetricName      = "hiccups_duration_seconds"
	httpDurationMetricName = "prometheus_http_request_duration_seconds"
)

// bucketTable is the per-metric-name lookup table; an entry absent from
// it falls back to DefaultBuckets.
var bucketTable = map[string][]float64{
	hiccupMetricName:       HiccupBuckets,
	httpDurationMetricName: HTTPDurationBuckets,
}

// BucketsFor returns the bucket ladder configured for a metric name,
// falling back to DefaultBuckets when no specific entry exists.
func BucketsFor(name string) []float64 {
	if buckets, ok := bucketTable[name]; ok {
		return buckets
	}
	return DefaultBuckets
}

// RegisterBuckets overrides (or adds) the bucket ladder for a metric
// name, used by configuration loading to honor custom_buckets entries.
func RegisterBuckets(name string, buckets []float64) {
	bucketTable[name] = buckets
}
