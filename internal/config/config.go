// Package config loads the daemon's configuration by composing, in
// increasing priority, builtin defaults, an optional YAML file, and
// RUSTY_-prefixed environment variables — the same three-tier precedence
// the upstream project's config loader uses, reimplemented here with
// gopkg.in/yaml.v3 and a reflection-based env overlay in the style of
// this module's own label-composition reflection helpers.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to every derived environment variable name.
const envPrefix = "RUSTY"

// Config is the root configuration record (spec.md §6).
type Config struct {
	Debug              bool                     `yaml:"debug"`
	PrometheusExporter PrometheusExporterConfig `yaml:"prometheus_exporter"`
	HiccupsMonitor     HiccupsMonitorConfig     `yaml:"hiccups_monitor"`
}

// PrometheusExporterConfig configures the HTTP exposition endpoint (C10).
type PrometheusExporterConfig struct {
	Host    string        `yaml:"host"`
	Port    uint16        `yaml:"port"`
	Path    string        `yaml:"path"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig configures bucket ladders for the Prometheus projector (C8).
type MetricsConfig struct {
	Histograms HistogramsConfig `yaml:"histograms"`
}

// HistogramsConfig holds the bucket configuration for all histograms.
type HistogramsConfig struct {
	Buckets BucketsConfig `yaml:"buckets"`
}

// BucketsConfig is the default bucket ladder plus per-metric overrides.
type BucketsConfig struct {
	Default       []float64            `yaml:"default"`
	CustomBuckets map[string][]float64 `yaml:"custom_buckets"`
}

// HiccupsMonitorConfig configures the hiccup sampler (C6).
type HiccupsMonitorConfig struct {
	Name              string                  `yaml:"name"`
	Description       string                  `yaml:"description"`
	ResolutionNanos   uint64                  `yaml:"resolution_nanos"`
	HistogramSettings HistogramSettingsConfig `yaml:"histogram_settings"`
}

// HistogramSettingsConfig is the wire form of metrics.HistogramSettings;
// Unit names one of the TimeUnitsSetting enum values from spec.md §6.
type HistogramSettingsConfig struct {
	Min       uint64 `yaml:"min"`
	Max       uint64 `yaml:"max"`
	Precision uint8  `yaml:"precision"`
	Unit      string `yaml:"unit"`
}

// Default returns the builtin configuration, the lowest-priority tier in
// the composition order.
func Default() Config {
	return Config{
		Debug: false,
		PrometheusExporter: PrometheusExporterConfig{
			Host: "0.0.0.0",
			Port: 9096,
			Path: "/metrics",
			Metrics: MetricsConfig{
				Histograms: HistogramsConfig{
					Buckets: BucketsConfig{
						Default: []float64{10, 30, 100, 300, 1000, 3000, 10000, 30000, 100000},
						CustomBuckets: map[string][]float64{
							"hiccups_duration_seconds": {
								0.000_000_050, 0.000_000_100, 0.000_000_250, 0.000_000_500,
								0.000_001_000, 0.000_002_500, 0.000_005_000, 0.000_010_000,
								0.000_025_000, 0.000_050_000, 0.000_100_000,
							},
							"prometheus_http_request_duration_seconds": {
								0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.50, 1.0, 2.5, 5.0, 10.0,
							},
						},
					},
				},
			},
		},
		HiccupsMonitor: HiccupsMonitorConfig{
			Name:            "hiccups_duration_seconds",
			Description:     "hiccups detected in the runtime scheduler, expressed in seconds",
			ResolutionNanos: 1_000_000,
			HistogramSettings: HistogramSettingsConfig{
				Min:       1,
				Max:       1_000_000_000,
				Precision: 2,
				Unit:      "TimeNanos",
			},
		},
	}
}

// Load composes the configuration: builtin defaults, then path if
// non-empty (skipped entirely if the file does not exist), then
// RUSTY_-prefixed environment variables — each tier only overrides
// fields it actually sets.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file %q: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(reflect.ValueOf(&cfg).Elem(), envPrefix, "_"); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants Load cannot express through types alone.
func (c *Config) Validate() error {
	if c.PrometheusExporter.Port == 0 {
		return fmt.Errorf("prometheus_exporter.port must be non-zero")
	}
	if c.PrometheusExporter.Path == "" {
		return fmt.Errorf("prometheus_exporter.path must not be empty")
	}
	if c.HiccupsMonitor.HistogramSettings.Min == 0 || c.HiccupsMonitor.HistogramSettings.Min > c.HiccupsMonitor.HistogramSettings.Max {
		return fmt.Errorf("hiccups_monitor.histogram_settings: require 0 < min <= max")
	}
	return nil
}

// applyEnvOverrides walks v (a struct) recursively, deriving an
// environment variable name per field from its yaml tag. sep separates
// envKey from this level's field name: the top-level call joins with a
// single "_" (RUSTY_DEBUG, RUSTY_PROMETHEUS_EXPORTER), while every nested
// level joins with "__" (RUSTY_PROMETHEUS_EXPORTER__PORT), matching
// spec.md's documented RUSTY_<PREFIX>__<FIELD> contract exactly.
func applyEnvOverrides(v reflect.Value, envKey, sep string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		fieldKey := envKey + sep + strings.ToUpper(tag)
		fieldValue := v.Field(i)

		if fieldValue.Kind() == reflect.Struct {
			if err := applyEnvOverrides(fieldValue, fieldKey, "__"); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(fieldKey)
		if !ok {
			continue
		}
		if err := setFromString(fieldValue, raw); err != nil {
			return fmt.Errorf("%s=%q: %w", fieldKey, raw, err)
		}
	}
	return nil
}

func setFromString(v reflect.Value, raw string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported config field kind %s for environment override", v.Kind())
	}
	return nil
}
