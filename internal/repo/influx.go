package repo

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

// InfluxSource reads samples from an InfluxDB bucket via Flux queries.
// Each measurement maps to a series name; the "source" tag narrows to one
// producer when set.
type InfluxSource struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	bucket   string
}

// NewInfluxSource connects a sample source to an InfluxDB instance.
func NewInfluxSource(serverURL, token, org, bucket string) *InfluxSource {
	client := influxdb2.NewClient(serverURL, token)
	return &InfluxSource{
		client:   client,
		queryAPI: client.QueryAPI(org),
		bucket:   bucket,
	}
}

// FetchSamples queries the bucket for one measurement within [start, end).
func (s *InfluxSource) FetchSamples(ctx context.Context, name, source string, start, end time.Time) ([]models.Sample, error) {
	if s == nil || s.queryAPI == nil {
		return nil, fmt.Errorf("influx source not initialised")
	}

	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == %q)`,
		s.bucket, start.Format(time.RFC3339), end.Format(time.RFC3339), name)
	if source != "" {
		flux += fmt.Sprintf("\n  |> filter(fn: (r) => r.source == %q)", source)
	}

	result, err := s.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("influx query failed: %w", err)
	}

	var samples []models.Sample
	for result.Next() {
		record := result.Record()
		value, ok := record.Value().(float64)
		if !ok {
			continue
		}
		sample := models.Sample{
			Name:      name,
			Value:     value,
			Timestamp: record.Time(),
			Unit:      record.Field(),
		}
		if tag, ok := record.ValueByKey("source").(string); ok {
			sample.Source = tag
		}
		samples = append(samples, sample)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("influx result stream: %w", result.Err())
	}
	return samples, nil
}

// Close releases the underlying HTTP resources.
func (s *InfluxSource) Close() {
	if s != nil && s.client != nil {
		s.client.Close()
	}
}
