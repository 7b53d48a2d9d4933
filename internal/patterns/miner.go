package patterns

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

// Store abstracts persistence for mined anomaly patterns.
type Store interface {
	StorePatterns(ctx context.Context, patterns []models.AnomalyPattern) error
}

// SeriesAnomalies pairs a series name with its anomaly report.
type SeriesAnomalies struct {
	SeriesName string
	Report     models.AnomalyReport
}

// Miner mines recurring hour-of-day anomaly hotspots from anomaly reports.
type Miner struct {
	store  Store
	logger *slog.Logger
}

// NewMiner constructs a Miner; store may be nil for dry runs.
func NewMiner(logger *slog.Logger, store Store) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{store: store, logger: logger}
}

// Mine groups each series' anomalies by UTC hour of day and returns one
// pattern per (series, hour), ordered by occurrence count descending.
// Series with no anomalies contribute nothing.
func (m *Miner) Mine(ctx context.Context, reports []SeriesAnomalies) ([]models.AnomalyPattern, error) {
	if len(reports) == 0 {
		return nil, nil
	}

	patterns := make([]models.AnomalyPattern, 0)
	for _, series := range reports {
		if len(series.Report.Anomalies) == 0 {
			continue
		}
		hourStats := make(map[int]*hourAggregate)
		for _, record := range series.Report.Anomalies {
			hour := record.Timestamp.UTC().Hour()
			agg, ok := hourStats[hour]
			if !ok {
				agg = &hourAggregate{}
				hourStats[hour] = agg
			}
			agg.count++
			if record.Threshold > 0 {
				agg.deviationSum += record.Value / record.Threshold
			}
			if record.Timestamp.After(agg.lastSeen) {
				agg.lastSeen = record.Timestamp
			}
		}

		total := len(series.Report.Anomalies)
		for hour, agg := range hourStats {
			patterns = append(patterns, models.AnomalyPattern{
				SeriesName:   series.SeriesName,
				HourOfDay:    hour,
				Occurrences:  agg.count,
				Prevalence:   float64(agg.count) / float64(total),
				AvgDeviation: agg.deviationSum / float64(agg.count),
				LastSeen:     agg.lastSeen,
			})
		}
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Occurrences != patterns[j].Occurrences {
			return patterns[i].Occurrences > patterns[j].Occurrences
		}
		if patterns[i].SeriesName != patterns[j].SeriesName {
			return patterns[i].SeriesName < patterns[j].SeriesName
		}
		return patterns[i].HourOfDay < patterns[j].HourOfDay
	})

	if m.store != nil && len(patterns) > 0 {
		if err := m.store.StorePatterns(ctx, patterns); err != nil {
			m.logger.Warn("pattern store failed", slog.Any("error", err))
		}
	}

	return patterns, nil
}

type hourAggregate struct {
	count        int
	deviationSum float64
	lastSeen     time.Time
}
