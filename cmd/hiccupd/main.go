// Command hiccupd runs the scheduler-hiccup monitor and serves its
// Prometheus-compatible /metrics endpoint.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	metrics "github.com/hiccupwatch/advisor"
	"github.com/hiccupwatch/advisor/hiccup"
	"github.com/hiccupwatch/advisor/internal/buildinfo"
	"github.com/hiccupwatch/advisor/internal/config"
	"github.com/hiccupwatch/advisor/promexport"
	"github.com/hiccupwatch/advisor/snapshotpipe"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	exitOK = iota
	exitInvalidConfig
	exitBindFailure
)

var (
	cfgPath  string
	logJSON  bool
	logLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInvalidConfig)
	}
}

var rootCmd = &cobra.Command{
	Use:     "hiccupd",
	Short:   "Measure scheduler hiccups and export them as Prometheus metrics",
	Version: buildinfo.Version,
	RunE:    run,
}

func init() {
	rootCmd.SetVersionTemplate(buildinfo.String() + "\n")
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "path to a YAML config file (optional)")
	rootCmd.Flags().BoolVar(&logJSON, "log-json", false, "emit structured JSON logs instead of console-formatted logs")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(exitInvalidConfig)
	}
	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	}
	metrics.SetLogger(logger)

	unit, err := metrics.UnitByName(cfg.HiccupsMonitor.HistogramSettings.Unit)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(exitInvalidConfig)
	}

	settings := metrics.HistogramSettings{
		Low:       cfg.HiccupsMonitor.HistogramSettings.Min,
		High:      cfg.HiccupsMonitor.HistogramSettings.Max,
		Precision: cfg.HiccupsMonitor.HistogramSettings.Precision,
		Unit:      unit,
	}

	description, err := metrics.NewMetricDescription(
		cfg.HiccupsMonitor.Name,
		cfg.HiccupsMonitor.Description,
		nil,
	)
	if err != nil {
		logger.Error().Err(err).Msg("invalid hiccup metric description")
		os.Exit(exitInvalidConfig)
	}

	registry := metrics.NewRegistry()
	histo, err := registry.GetOrRegisterHistogram(description, settings)
	if err != nil {
		logger.Error().Err(err).Msg("could not register hiccup histogram")
		os.Exit(exitInvalidConfig)
	}

	for name, buckets := range cfg.PrometheusExporter.Metrics.Histograms.Buckets.CustomBuckets {
		promexport.RegisterBuckets(name, buckets)
	}
	if len(cfg.PrometheusExporter.Metrics.Histograms.Buckets.Default) > 0 {
		promexport.DefaultBuckets = cfg.PrometheusExporter.Metrics.Histograms.Buckets.Default
	}

	sampler := hiccup.NewSampler(time.Duration(cfg.HiccupsMonitor.ResolutionNanos), histo.NewRecorder())
	sampler.Start()
	defer sampler.Stop()

	producer := snapshotpipe.NewProducer(registry, snapshotpipe.DefaultInterval)
	producer.SetLogger(logger)
	sub := producer.Subscribe()
	producer.Start()
	defer producer.Stop()

	projector := promexport.NewProjector()
	projectorDone := make(chan struct{})
	go func() {
		defer close(projectorDone)
		for snapshot := range sub.C {
			projector.ApplySnapshot(snapshot)
		}
	}()

	server := promexport.NewServer(cfg.PrometheusExporter.Path, projector)
	addr := fmt.Sprintf("%s:%d", cfg.PrometheusExporter.Host, cfg.PrometheusExporter.Port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("path", cfg.PrometheusExporter.Path).Msg("starting exporter")
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("exporter failed to bind")
		os.Exit(exitBindFailure)
	}

	producer.Unsubscribe(sub)
	return nil
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var writer io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if logJSON {
		writer = os.Stderr
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
