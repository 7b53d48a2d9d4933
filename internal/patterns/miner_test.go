package patterns

import (
	"context"
	"testing"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

type fakePatternStore struct {
	stored int
}

func (f *fakePatternStore) StorePatterns(ctx context.Context, patterns []models.AnomalyPattern) error {
	f.stored += len(patterns)
	return nil
}

func TestMinerGroupsByHourOfDay(t *testing.T) {
	store := &fakePatternStore{}
	miner := NewMiner(nil, store)

	day1 := time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 14, 40, 0, 0, time.UTC)
	day3 := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	reports := []SeriesAnomalies{
		{
			SeriesName: "latency_ms",
			Report: models.AnomalyReport{
				Threshold: 100,
				Anomalies: []models.AnomalyRecord{
					{Timestamp: day1, Value: 200, Threshold: 100},
					{Timestamp: day2, Value: 300, Threshold: 100},
					{Timestamp: day3, Value: 150, Threshold: 100},
				},
			},
		},
	}

	patterns, err := miner.Mine(context.Background(), reports)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}

	top := patterns[0]
	if top.HourOfDay != 14 || top.Occurrences != 2 {
		t.Fatalf("unexpected top pattern %+v", top)
	}
	if top.AvgDeviation != 2.5 {
		t.Fatalf("expected avg deviation 2.5, got %f", top.AvgDeviation)
	}
	if !top.LastSeen.Equal(day2) {
		t.Fatalf("expected last seen %v, got %v", day2, top.LastSeen)
	}
	if top.Prevalence != 2.0/3.0 {
		t.Fatalf("unexpected prevalence %f", top.Prevalence)
	}

	if store.stored != 2 {
		t.Fatalf("expected 2 stored patterns, got %d", store.stored)
	}
}

func TestMinerSkipsEmptyReports(t *testing.T) {
	miner := NewMiner(nil, nil)
	patterns, err := miner.Mine(context.Background(), []SeriesAnomalies{
		{SeriesName: "orders", Report: models.AnomalyReport{Threshold: 10}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 0 {
		t.Fatalf("expected no patterns, got %d", len(patterns))
	}
}
