package sentiment

import (
	"context"
	"time"
)

// Repository defines the interface for sentiment history storage (ClickHouse)
type Repository interface {
	// InsertScoredHeadlines persists a batch of scored headlines
	InsertScoredHeadlines(ctx context.Context, headlines []ScoredHeadline) error

	// InsertDailySeries persists a computed daily series for a symbol
	InsertDailySeries(ctx context.Context, symbol string, points []DailyPoint) error

	// GetDailySeries retrieves previously computed points for a symbol
	GetDailySeries(ctx context.Context, symbol string, from, to time.Time) ([]DailyPoint, error)
}
