package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vantagestack/telemetry-engine/internal/cache"
	"github.com/vantagestack/telemetry-engine/internal/config"
	"github.com/vantagestack/telemetry-engine/internal/metrics"
	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/patterns"
	"github.com/vantagestack/telemetry-engine/internal/repo"
	"github.com/vantagestack/telemetry-engine/internal/services"
	"github.com/vantagestack/telemetry-engine/internal/utils"
)

type options struct {
	analysis       string
	series         string
	source         string
	backend        string
	start          string
	end            string
	interval       int
	minePatterns   bool
	forecastHours  int
	perfMetric     string
	businessMetric string
	eventType      string
	windowHours    float64
	changeTime     string
	beforeHours    float64
	afterHours     float64
	cost           float64
	valuePerUnit   float64
}

func main() {
	var configPath string
	var opts options
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.analysis, "analysis", "aggregate", "Analysis to run: aggregate|trend|anomalies|forecast|correlate|impact|roi")
	flag.StringVar(&opts.series, "series", "", "Metric series name")
	flag.StringVar(&opts.source, "source", "", "Optional source filter for the series")
	flag.StringVar(&opts.backend, "backend", "core", "Sample backend: core|influx")
	flag.StringVar(&opts.start, "start", "", "Window start (RFC3339)")
	flag.StringVar(&opts.end, "end", "", "Window end (RFC3339)")
	flag.IntVar(&opts.interval, "interval", 5, "Bucket interval in minutes")
	flag.BoolVar(&opts.minePatterns, "patterns", false, "Mine hour-of-day hotspots from detected anomalies")
	flag.IntVar(&opts.forecastHours, "forecast-hours", 1, "Projection horizon in hours")
	flag.StringVar(&opts.perfMetric, "perf-metric", "", "Performance metric for correlate/roi")
	flag.StringVar(&opts.businessMetric, "business-metric", "", "Business metric for correlate/impact/roi")
	flag.StringVar(&opts.eventType, "event-type", "", "Incident event type for impact analysis")
	flag.Float64Var(&opts.windowHours, "window-hours", 1, "Impact window in hours")
	flag.StringVar(&opts.changeTime, "change-time", "", "Change time for roi (RFC3339)")
	flag.Float64Var(&opts.beforeHours, "before-hours", 24, "Hours before the change for roi")
	flag.Float64Var(&opts.afterHours, "after-hours", 24, "Hours after the change for roi")
	flag.Float64Var(&opts.cost, "cost", 0, "Implementation cost for roi")
	flag.Float64Var(&opts.valuePerUnit, "value-per-unit", 1, "Business value per metric unit for roi")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(logger, cfg, opts.backend)
	if err != nil {
		logger.Error("failed to build analytics service", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	result, err := runAnalysis(ctx, logger, svc, opts)
	if err != nil {
		logger.Error("analysis failed", slog.String("analysis", opts.analysis), slog.Any("error", err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("failed to encode result", slog.Any("error", err))
		os.Exit(1)
	}
}

func buildService(logger *slog.Logger, cfg *config.Config, backend string) (*services.AnalyticsService, func(), error) {
	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled {
		cacheProvider = cache.NewMemoryProvider()
	}
	cleanup := func() { _ = cacheProvider.Close() }

	core := repo.NewTelemetryAPIClient(
		cfg.Clients.Core.BaseURL,
		cfg.Clients.Core.SamplesPath,
		cfg.Clients.Core.IncidentsPath,
		cfg.Clients.Core.Timeout,
		cacheProvider,
		cfg.Cache.SampleWindowTTL,
	)

	switch backend {
	case "core":
		if cfg.Clients.Core.BaseURL == "" {
			return nil, nil, fmt.Errorf("clients.core.baseURL is required for the core backend")
		}
		return services.NewAnalyticsService(logger, core, core), cleanup, nil
	case "influx":
		if cfg.Influx.URL == "" {
			return nil, nil, fmt.Errorf("influx.url is required for the influx backend")
		}
		influx := repo.NewInfluxSource(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		wrapped := cleanup
		cleanup = func() {
			influx.Close()
			wrapped()
		}
		// Incidents still come from telemetry-core; Influx holds samples only.
		return services.NewAnalyticsService(logger, influx, core), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func runAnalysis(ctx context.Context, logger *slog.Logger, svc *services.AnalyticsService, opts options) (any, error) {
	switch opts.analysis {
	case "aggregate", "trend", "anomalies", "forecast":
		req, err := analysisRequest(opts)
		if err != nil {
			return nil, err
		}
		switch opts.analysis {
		case "aggregate":
			return svc.AggregateSeries(ctx, req)
		case "trend":
			return svc.AnalyzeTrend(ctx, req)
		case "anomalies":
			report, err := svc.DetectAnomalies(ctx, req)
			if err != nil || !opts.minePatterns {
				return report, err
			}
			return mineAnomalyPatterns(ctx, logger, opts.series, report)
		default:
			return svc.Forecast(ctx, models.ForecastRequest{
				AnalysisRequest: req,
				ForecastHours:   opts.forecastHours,
			})
		}
	case "correlate":
		start, end, err := parseWindow(opts)
		if err != nil {
			return nil, err
		}
		return svc.CorrelateMetrics(ctx, models.CorrelationRequest{
			PerformanceMetric: opts.perfMetric,
			BusinessMetric:    opts.businessMetric,
			Start:             start,
			End:               end,
			IntervalMinutes:   opts.interval,
		})
	case "impact":
		start, end, err := parseWindow(opts)
		if err != nil {
			return nil, err
		}
		return svc.AnalyzeIncidentImpact(ctx, models.ImpactRequest{
			EventType:      opts.eventType,
			BusinessMetric: opts.businessMetric,
			Start:          start,
			End:            end,
			WindowHours:    opts.windowHours,
		})
	case "roi":
		changeTime, err := utils.ParseRFC3339(opts.changeTime)
		if err != nil {
			return nil, fmt.Errorf("change-time: %w", err)
		}
		return svc.CalculateRoi(ctx, models.RoiRequest{
			PerformanceMetric:  opts.perfMetric,
			BusinessMetric:     opts.businessMetric,
			ChangeTime:         changeTime,
			BeforeHours:        opts.beforeHours,
			AfterHours:         opts.afterHours,
			ImplementationCost: opts.cost,
			ValuePerUnit:       opts.valuePerUnit,
		})
	default:
		return nil, fmt.Errorf("unknown analysis %q", opts.analysis)
	}
}

type anomalyOutput struct {
	models.AnomalyReport
	Patterns []models.AnomalyPattern `json:"patterns,omitempty"`
}

func mineAnomalyPatterns(ctx context.Context, logger *slog.Logger, series string, report models.AnomalyReport) (any, error) {
	mined, err := patterns.NewMiner(logger, nil).Mine(ctx, []patterns.SeriesAnomalies{
		{SeriesName: series, Report: report},
	})
	if err != nil {
		return nil, err
	}
	return anomalyOutput{AnomalyReport: report, Patterns: mined}, nil
}

func analysisRequest(opts options) (models.AnalysisRequest, error) {
	start, end, err := parseWindow(opts)
	if err != nil {
		return models.AnalysisRequest{}, err
	}
	return models.AnalysisRequest{
		SeriesName:      opts.series,
		Source:          opts.source,
		Start:           start,
		End:             end,
		IntervalMinutes: opts.interval,
	}, nil
}

func parseWindow(opts options) (time.Time, time.Time, error) {
	start, err := utils.ParseRFC3339(opts.start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	end, err := utils.ParseRFC3339(opts.end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}
