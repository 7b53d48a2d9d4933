package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vantagestack/telemetry-engine/internal/bench"
	"github.com/vantagestack/telemetry-engine/internal/config"
	"github.com/vantagestack/telemetry-engine/internal/metrics"
	"github.com/vantagestack/telemetry-engine/internal/utils"
)

func main() {
	var (
		configPath string
		suitePath  string
		reportPath string
		baseline   string
		comparison string
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&suitePath, "suite", "", "Path to benchmark suite file")
	flag.StringVar(&reportPath, "report", "", "Report output path (default stdout)")
	flag.StringVar(&baseline, "baseline", "", "Baseline environment for cross-env comparison")
	flag.StringVar(&comparison, "comparison", "", "Comparison environment for cross-env comparison")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	suite, err := config.LoadSuite(suitePath)
	if err != nil {
		logger.Error("failed to load suite", slog.String("path", suitePath), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("starting benchmark run", slog.String("suite", suite.Name), slog.Int("environments", len(suite.Environments)))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	if reportPath == "" {
		reportPath = cfg.Benchmark.ReportPath
	}

	runErr := run(ctx, logger, cfg, suite, reportPath, baseline, comparison)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	if runErr != nil {
		logger.Error("benchmark run failed", slog.Any("error", runErr))
		os.Exit(1)
	}
	logger.Info("benchmark run complete", slog.String("suite", suite.Name))
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, suite *config.Suite, reportPath, baseline, comparison string) error {
	params := loadParams(cfg.Benchmark, suite.Load)
	benchmarker := bench.NewHTTPBenchmarker(logger)
	writer := bench.NewReportWriter()

	out, closeOut, err := openReport(reportPath)
	if err != nil {
		return err
	}
	defer closeOut()

	if baseline != "" || comparison != "" {
		baseEnv, err := findEnvironment(suite, baseline)
		if err != nil {
			return err
		}
		compEnv, err := findEnvironment(suite, comparison)
		if err != nil {
			return err
		}
		report, err := benchmarker.CompareEnvironments(ctx, baseEnv, compEnv, params)
		if err != nil {
			return fmt.Errorf("compare environments: %w", err)
		}
		return writer.WriteCrossEnvReport(out, report)
	}

	for _, env := range suite.Environments {
		target := toEnvironmentSet(env)
		results, err := benchmarker.RunEndpoints(ctx, target, params)
		if err != nil {
			return fmt.Errorf("environment %s: %w", env.Name, err)
		}
		title := suite.Name + " / " + env.Name
		if err := writer.WriteEndpointReport(out, title, results); err != nil {
			return fmt.Errorf("write report for %s: %w", env.Name, err)
		}
	}
	return nil
}

// loadParams merges suite overrides onto the configured defaults.
func loadParams(defaults config.BenchmarkConfig, override config.SuiteLoad) bench.HTTPLoadParams {
	params := bench.HTTPLoadParams{
		Rate:     defaults.Rate,
		Duration: defaults.Duration,
		Workers:  defaults.Workers,
		Timeout:  defaults.Timeout,
	}
	if override.Rate > 0 {
		params.Rate = override.Rate
	}
	if override.Duration > 0 {
		params.Duration = override.Duration
	}
	if override.Workers > 0 {
		params.Workers = override.Workers
	}
	if override.Timeout > 0 {
		params.Timeout = override.Timeout
	}
	return params
}

func findEnvironment(suite *config.Suite, name string) (bench.EnvironmentSet, error) {
	if name == "" {
		return bench.EnvironmentSet{}, fmt.Errorf("both -baseline and -comparison are required for cross-env comparison")
	}
	for _, env := range suite.Environments {
		if env.Name == name {
			return toEnvironmentSet(env), nil
		}
	}
	return bench.EnvironmentSet{}, fmt.Errorf("suite %s has no environment named %s", suite.Name, name)
}

func toEnvironmentSet(env config.SuiteEnvironment) bench.EnvironmentSet {
	set := bench.EnvironmentSet{
		Name:      env.Name,
		BaseURL:   env.BaseURL,
		Endpoints: make([]bench.EndpointTarget, 0, len(env.Endpoints)),
	}
	for _, ep := range env.Endpoints {
		method := ep.Method
		if method == "" {
			method = http.MethodGet
		}
		target := bench.EndpointTarget{Method: method, Path: ep.Path}
		if ep.Body != "" {
			target.Body = []byte(ep.Body)
		}
		if len(ep.Header) > 0 {
			target.Header = make(http.Header, len(ep.Header))
			for k, v := range ep.Header {
				target.Header.Set(k, v)
			}
		}
		set.Endpoints = append(set.Endpoints, target)
	}
	return set
}

func openReport(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create report file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
