package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the analytics engine and
// the benchmark harness.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Clients   ClientsConfig   `yaml:"clients"`
	Influx    InfluxConfig    `yaml:"influx"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
}

// ServerConfig controls the metrics listener and shutdown behaviour.
type ServerConfig struct {
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// ClientsConfig groups integrations with upstream telemetry backends.
type ClientsConfig struct {
	Core CoreClientConfig `yaml:"core"`
}

// CoreClientConfig configures access to the telemetry-core query APIs.
type CoreClientConfig struct {
	BaseURL       string        `yaml:"baseURL"`
	SamplesPath   string        `yaml:"samplesPath"`
	IncidentsPath string        `yaml:"incidentsPath"`
	Timeout       time.Duration `yaml:"timeout"`
}

// InfluxConfig configures the optional InfluxDB sample source.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls caching of fetched sample windows. Derived analysis
// results are never cached.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	SampleWindowTTL time.Duration `yaml:"sampleWindowTTL"`
}

// BenchmarkConfig holds harness-wide defaults a suite may override per run.
type BenchmarkConfig struct {
	Rate       int           `yaml:"rate"`
	Duration   time.Duration `yaml:"duration"`
	Workers    int           `yaml:"workers"`
	Timeout    time.Duration `yaml:"timeout"`
	ReportPath string        `yaml:"reportPath"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TELEMETRY_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Clients: ClientsConfig{
			Core: CoreClientConfig{
				SamplesPath:   "/api/v1/telemetry/samples",
				IncidentsPath: "/api/v1/telemetry/incidents",
				Timeout:       5 * time.Second,
			},
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Enabled:         false,
			SampleWindowTTL: 2 * time.Minute,
		},
		Benchmark: BenchmarkConfig{
			Rate:     50,
			Duration: 30 * time.Second,
			Workers:  10,
			Timeout:  10 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEMETRY_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("TELEMETRY_CORE_BASE_URL"); v != "" {
		cfg.Clients.Core.BaseURL = v
	}
	if v := os.Getenv("TELEMETRY_CORE_SAMPLES_PATH"); v != "" {
		cfg.Clients.Core.SamplesPath = v
	}
	if v := os.Getenv("TELEMETRY_CORE_INCIDENTS_PATH"); v != "" {
		cfg.Clients.Core.IncidentsPath = v
	}
	if v := os.Getenv("TELEMETRY_CORE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Clients.Core.Timeout = d
		}
	}
	if v := os.Getenv("TELEMETRY_INFLUX_URL"); v != "" {
		cfg.Influx.URL = v
	}
	if v := os.Getenv("TELEMETRY_INFLUX_TOKEN"); v != "" {
		cfg.Influx.Token = v
	}
	if v := os.Getenv("TELEMETRY_INFLUX_ORG"); v != "" {
		cfg.Influx.Org = v
	}
	if v := os.Getenv("TELEMETRY_INFLUX_BUCKET"); v != "" {
		cfg.Influx.Bucket = v
	}
	if v := os.Getenv("TELEMETRY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TELEMETRY_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("TELEMETRY_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("TELEMETRY_CACHE_SAMPLE_WINDOW_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.SampleWindowTTL = d
		}
	}
	if v := os.Getenv("TELEMETRY_BENCH_RATE"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			cfg.Benchmark.Rate = rate
		}
	}
	if v := os.Getenv("TELEMETRY_BENCH_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Benchmark.Duration = d
		}
	}
	if v := os.Getenv("TELEMETRY_BENCH_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Benchmark.Workers = workers
		}
	}
	if v := os.Getenv("TELEMETRY_BENCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Benchmark.Timeout = d
		}
	}
	if v := os.Getenv("TELEMETRY_BENCH_REPORT_PATH"); v != "" {
		cfg.Benchmark.ReportPath = v
	}
}
