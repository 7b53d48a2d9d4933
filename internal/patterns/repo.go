package patterns

import (
	"context"

	"github.com/vantagestack/telemetry-engine/internal/models"
)

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, patterns []models.AnomalyPattern) error

// StorePatterns implements Store.
func (f StoreFunc) StorePatterns(ctx context.Context, patterns []models.AnomalyPattern) error {
	return f(ctx, patterns)
}
