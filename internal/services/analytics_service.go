// Package services exposes the engine's analyses behind a single facade
// that validates requests, fetches samples through the repository boundary,
// and records operational metrics.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/aggregate"
	"github.com/vantagestack/telemetry-engine/internal/engine"
	"github.com/vantagestack/telemetry-engine/internal/metrics"
	"github.com/vantagestack/telemetry-engine/internal/models"
	"github.com/vantagestack/telemetry-engine/internal/repo"
	"github.com/vantagestack/telemetry-engine/internal/utils"
)

// AnalyticsService is the entry point for all on-demand analyses. Results
// are pure functions of (series, time range, parameters); nothing derived
// is ever stored.
type AnalyticsService struct {
	logger     *slog.Logger
	samples    repo.SampleSource
	incidents  repo.IncidentSource
	trends     *engine.TrendDetector
	forecaster *engine.Forecaster
	correlator *engine.CorrelationAnalyzer
	impacts    *engine.ImpactAnalyzer
	roi        *engine.RoiAnalyzer
	latencies  *utils.LatencyTracker
}

// NewAnalyticsService constructs the analytics facade.
func NewAnalyticsService(logger *slog.Logger, samples repo.SampleSource, incidents repo.IncidentSource) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		logger:     logger,
		samples:    samples,
		incidents:  incidents,
		trends:     engine.NewTrendDetector(),
		forecaster: engine.NewForecaster(),
		correlator: engine.NewCorrelationAnalyzer(),
		impacts:    engine.NewImpactAnalyzer(),
		roi:        engine.NewRoiAnalyzer(),
		latencies:  utils.NewLatencyTracker(1024),
	}
}

// AggregateSeries buckets one series into interval windows and returns the
// per-window and whole-range statistics.
func (s *AnalyticsService) AggregateSeries(ctx context.Context, req models.AnalysisRequest) (models.SeriesSummary, error) {
	if err := validateAnalysis(req); err != nil {
		return models.SeriesSummary{}, err
	}
	started := time.Now()

	samples, err := s.fetchSamples(ctx, "AggregateSeries", req)
	if err != nil {
		metrics.ObserveAnalysis("aggregate", time.Since(started), metrics.OutcomeError)
		return models.SeriesSummary{}, err
	}
	rng := models.TimeRange{Start: req.Start, End: req.End}
	summary := aggregate.Summarize(req.SeriesName, samples, rng, req.IntervalMinutes)
	s.observe("aggregate", started)
	return summary, nil
}

// AnalyzeTrend fits a linear trend over the bucketed series.
func (s *AnalyticsService) AnalyzeTrend(ctx context.Context, req models.AnalysisRequest) (models.TrendResult, error) {
	if err := validateAnalysis(req); err != nil {
		return models.TrendResult{}, err
	}
	started := time.Now()

	samples, err := s.fetchSamples(ctx, "AnalyzeTrend", req)
	if err != nil {
		metrics.ObserveAnalysis("trend", time.Since(started), metrics.OutcomeError)
		return models.TrendResult{}, err
	}
	trend := s.trends.AnalyzeTrend(samples, req.IntervalMinutes)
	s.observe("trend", started)
	return trend, nil
}

// DetectAnomalies flags samples above the dynamic threshold for the range.
func (s *AnalyticsService) DetectAnomalies(ctx context.Context, req models.AnalysisRequest) (models.AnomalyReport, error) {
	if err := validateRange(req.SeriesName, req.Start, req.End); err != nil {
		return models.AnomalyReport{}, err
	}
	started := time.Now()

	samples, err := s.fetchSamples(ctx, "DetectAnomalies", req)
	if err != nil {
		metrics.ObserveAnalysis("anomaly", time.Since(started), metrics.OutcomeError)
		return models.AnomalyReport{}, err
	}
	report := s.trends.DetectAnomalies(samples)
	s.observe("anomaly", started)
	return report, nil
}

// Forecast projects the series forward by the requested horizon.
func (s *AnalyticsService) Forecast(ctx context.Context, req models.ForecastRequest) ([]models.ForecastPoint, error) {
	if err := validateAnalysis(req.AnalysisRequest); err != nil {
		return nil, err
	}
	if req.ForecastHours <= 0 {
		return nil, fmt.Errorf("forecast hours must be positive, got %d", req.ForecastHours)
	}
	started := time.Now()

	samples, err := s.fetchSamples(ctx, "Forecast", req.AnalysisRequest)
	if err != nil {
		metrics.ObserveAnalysis("forecast", time.Since(started), metrics.OutcomeError)
		return nil, err
	}
	points := s.forecaster.Forecast(samples, req.IntervalMinutes, req.ForecastHours)
	s.observe("forecast", started)
	return points, nil
}

// CorrelateMetrics quantifies the relationship between two series.
func (s *AnalyticsService) CorrelateMetrics(ctx context.Context, req models.CorrelationRequest) (models.CorrelationResult, error) {
	if req.PerformanceMetric == "" || req.BusinessMetric == "" {
		return models.CorrelationResult{}, fmt.Errorf("both metric names are required")
	}
	if req.IntervalMinutes <= 0 {
		return models.CorrelationResult{}, fmt.Errorf("interval must be positive, got %d", req.IntervalMinutes)
	}
	if err := validateRange(req.PerformanceMetric, req.Start, req.End); err != nil {
		return models.CorrelationResult{}, err
	}
	started := time.Now()

	perf, err := s.samples.FetchSamples(ctx, req.PerformanceMetric, "", req.Start, req.End)
	if err != nil {
		metrics.ObserveAnalysis("correlation", time.Since(started), metrics.OutcomeError)
		return models.CorrelationResult{}, utils.NewAppError("CorrelateMetrics", "fetch performance samples", err)
	}
	biz, err := s.samples.FetchSamples(ctx, req.BusinessMetric, "", req.Start, req.End)
	if err != nil {
		metrics.ObserveAnalysis("correlation", time.Since(started), metrics.OutcomeError)
		return models.CorrelationResult{}, utils.NewAppError("CorrelateMetrics", "fetch business samples", err)
	}

	result := s.correlator.Correlate(perf, biz, req.IntervalMinutes)
	result.PerformanceMetric = req.PerformanceMetric
	result.BusinessMetric = req.BusinessMetric
	s.observe("correlation", started)
	return result, nil
}

// AnalyzeIncidentImpact measures business-metric movement around incidents.
func (s *AnalyticsService) AnalyzeIncidentImpact(ctx context.Context, req models.ImpactRequest) (models.ImpactReport, error) {
	if req.BusinessMetric == "" {
		return models.ImpactReport{}, fmt.Errorf("business metric name is required")
	}
	if req.WindowHours <= 0 {
		return models.ImpactReport{}, fmt.Errorf("window hours must be positive, got %f", req.WindowHours)
	}
	if err := validateRange(req.BusinessMetric, req.Start, req.End); err != nil {
		return models.ImpactReport{}, err
	}
	if s.incidents == nil {
		return models.ImpactReport{}, fmt.Errorf("incident source not configured")
	}
	started := time.Now()

	incidents, err := s.incidents.FetchIncidents(ctx, req.EventType, req.Start, req.End)
	if err != nil {
		metrics.ObserveAnalysis("impact", time.Since(started), metrics.OutcomeError)
		return models.ImpactReport{}, utils.NewAppError("AnalyzeIncidentImpact", "fetch incidents", err)
	}

	// Widen the sample fetch so the first and last incidents keep full
	// baseline and impact windows.
	window := time.Duration(req.WindowHours * float64(time.Hour))
	samples, err := s.samples.FetchSamples(ctx, req.BusinessMetric, "", req.Start.Add(-window), req.End.Add(window))
	if err != nil {
		metrics.ObserveAnalysis("impact", time.Since(started), metrics.OutcomeError)
		return models.ImpactReport{}, utils.NewAppError("AnalyzeIncidentImpact", "fetch business samples", err)
	}

	report := s.impacts.Analyze(incidents, samples, req.WindowHours)
	report.Metric = req.BusinessMetric
	s.observe("impact", started)
	return report, nil
}

// CalculateRoi attributes value to a change against its implementation cost.
func (s *AnalyticsService) CalculateRoi(ctx context.Context, req models.RoiRequest) (models.RoiResult, error) {
	if req.PerformanceMetric == "" || req.BusinessMetric == "" {
		return models.RoiResult{}, fmt.Errorf("both metric names are required")
	}
	if req.BeforeHours <= 0 || req.AfterHours <= 0 {
		return models.RoiResult{}, fmt.Errorf("window hours must be positive, got %f/%f", req.BeforeHours, req.AfterHours)
	}
	started := time.Now()

	start := req.ChangeTime.Add(-time.Duration(req.BeforeHours * float64(time.Hour)))
	end := req.ChangeTime.Add(time.Duration(req.AfterHours * float64(time.Hour)))

	perf, err := s.samples.FetchSamples(ctx, req.PerformanceMetric, "", start, end)
	if err != nil {
		metrics.ObserveAnalysis("roi", time.Since(started), metrics.OutcomeError)
		return models.RoiResult{}, utils.NewAppError("CalculateRoi", "fetch performance samples", err)
	}
	biz, err := s.samples.FetchSamples(ctx, req.BusinessMetric, "", start, end)
	if err != nil {
		metrics.ObserveAnalysis("roi", time.Since(started), metrics.OutcomeError)
		return models.RoiResult{}, utils.NewAppError("CalculateRoi", "fetch business samples", err)
	}

	result := s.roi.Analyze(engine.RoiInput{
		PerfSamples:  perf,
		BizSamples:   biz,
		ChangeTime:   req.ChangeTime,
		BeforeHours:  req.BeforeHours,
		AfterHours:   req.AfterHours,
		Cost:         req.ImplementationCost,
		ValuePerUnit: req.ValuePerUnit,
	})
	s.observe("roi", started)
	return result, nil
}

func (s *AnalyticsService) fetchSamples(ctx context.Context, op string, req models.AnalysisRequest) ([]models.Sample, error) {
	if s.samples == nil {
		return nil, fmt.Errorf("sample source not configured")
	}
	samples, err := s.samples.FetchSamples(ctx, req.SeriesName, req.Source, req.Start, req.End)
	if err != nil {
		s.logger.Error("sample fetch failed", slog.String("op", op), slog.String("series", req.SeriesName), slog.Any("error", err))
		return nil, utils.NewAppError(op, "fetch samples", err)
	}
	return samples, nil
}

func (s *AnalyticsService) observe(analysis string, started time.Time) {
	duration := time.Since(started)
	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(analysis, duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 50 && count%50 == 0 {
		s.logger.Info("analysis latency",
			slog.Duration("p95", s.latencies.Percentile(95)),
			slog.Int("samples", count))
	}
}

func validateAnalysis(req models.AnalysisRequest) error {
	if req.IntervalMinutes <= 0 {
		return fmt.Errorf("interval must be positive, got %d", req.IntervalMinutes)
	}
	return validateRange(req.SeriesName, req.Start, req.End)
}

func validateRange(name string, start, end time.Time) error {
	if name == "" {
		return fmt.Errorf("series name is required")
	}
	if !end.After(start) {
		return fmt.Errorf("end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}
