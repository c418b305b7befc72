package promexport

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// requestDuration self-observes the exposition endpoint's own latency,
// exercising the conventional client_golang passthrough registry
// alongside the hand-rolled encoder used for the projector's own
// histograms.
var requestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    httpDurationMetricName,
	Help:    "Latency of /metrics scrape requests in seconds",
	Buckets: HTTPDurationBuckets,
})

func init() {
	prometheus.MustRegister(requestDuration)
}

// Server exposes a Projector's accumulated histograms, plus whatever is
// registered with client_golang's default registry (Go runtime and
// process collectors, and requestDuration above), as a single Prometheus
// text-format response.
type Server struct {
	path      string
	projector *Projector
	gatherer  prometheus.Gatherer
	mux       *http.ServeMux
}

// NewServer returns a Server that serves projector's histograms (and the
// default client_golang registry) on path.
func NewServer(path string, projector *Projector) *Server {
	if path == "" {
		path = "/metrics"
	}
	s := &Server{path: path, projector: projector, gatherer: prometheus.DefaultGatherer}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc(path, s.handleMetrics)
	return s
}

// Handler returns the http.Handler serving both the configured path and a
// 404 for everything else.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts an HTTP server bound to addr using this Server's
// handler. It blocks until the server stops or errors.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { requestDuration.Observe(time.Since(start).Seconds()) }()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	if err := Encode(w, s.projector); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The passthrough is appended to text already written, so it must not
	// negotiate another format from Accept or compress its part.
	passthroughReq := r.Clone(r.Context())
	passthroughReq.Header.Del("Accept")
	passthroughHandler := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{DisableCompression: true})
	passthroughHandler.ServeHTTP(w, passthroughReq)
}
