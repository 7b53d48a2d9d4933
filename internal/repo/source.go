// Package repo provides read-only access to recorded samples and incident
// events. Persistence itself lives outside the engine; these sources only
// fetch immutable collections for a series and time range.
package repo

import (
	"context"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

// SampleSource fetches recorded metric samples for one series. The source
// field narrows to a single producer when non-empty.
type SampleSource interface {
	FetchSamples(ctx context.Context, name, source string, start, end time.Time) ([]models.Sample, error)
}

// IncidentSource fetches incident events of one type within a time range.
type IncidentSource interface {
	FetchIncidents(ctx context.Context, eventType string, start, end time.Time) ([]models.IncidentEvent, error)
}
