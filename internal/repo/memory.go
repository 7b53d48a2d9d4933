package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

// MemoryStore is an append-only in-memory sample and incident store. It
// implements both SampleSource and IncidentSource and is safe for
// concurrent use. Intended for embedding and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	samples   []models.Sample
	incidents []models.IncidentEvent
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// RecordSample appends one sample. Samples are immutable once recorded.
func (m *MemoryStore) RecordSample(sample models.Sample) {
	m.mu.Lock()
	m.samples = append(m.samples, sample)
	m.mu.Unlock()
}

// RecordIncident appends one incident event.
func (m *MemoryStore) RecordIncident(event models.IncidentEvent) {
	m.mu.Lock()
	m.incidents = append(m.incidents, event)
	m.mu.Unlock()
}

// FetchSamples returns samples matching name, optional source, and
// [start, end), ordered by timestamp.
func (m *MemoryStore) FetchSamples(_ context.Context, name, source string, start, end time.Time) ([]models.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.Sample
	for _, sample := range m.samples {
		if sample.Name != name {
			continue
		}
		if source != "" && sample.Source != source {
			continue
		}
		if sample.Timestamp.Before(start) || !sample.Timestamp.Before(end) {
			continue
		}
		matched = append(matched, sample)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})
	return matched, nil
}

// FetchIncidents returns incidents whose event_type property matches within
// [start, end), ordered by timestamp.
func (m *MemoryStore) FetchIncidents(_ context.Context, eventType string, start, end time.Time) ([]models.IncidentEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.IncidentEvent
	for _, event := range m.incidents {
		if eventType != "" && event.Properties["event_type"] != eventType {
			continue
		}
		if event.Timestamp.Before(start) || !event.Timestamp.Before(end) {
			continue
		}
		matched = append(matched, event)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})
	return matched, nil
}
