package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"cassandra/internal/domain/sentiment"
	"cassandra/pkg/errors"
)

// Compile-time check
var _ sentiment.Repository = (*SentimentRepository)(nil)

// SentimentRepository implements sentiment.Repository using ClickHouse
type SentimentRepository struct {
	conn driver.Conn
}

// NewSentimentRepository creates a new sentiment repository
func NewSentimentRepository(conn driver.Conn) *SentimentRepository {
	return &SentimentRepository{conn: conn}
}

// InsertScoredHeadlines persists a batch of scored headlines
func (r *SentimentRepository) InsertScoredHeadlines(ctx context.Context, headlines []sentiment.ScoredHeadline) error {
	if len(headlines) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO scored_headlines (
			symbol, headline, source, url, label, score, signed, published_at, scored_at
		)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare headline batch")
	}

	for _, h := range headlines {
		if err := batch.Append(
			h.Symbol, h.Headline, h.Source, h.URL,
			h.Label, h.Score, h.Signed, h.PublishedAt, h.ScoredAt,
		); err != nil {
			return errors.Wrap(err, "failed to append headline to batch")
		}
	}

	return batch.Send()
}

// InsertDailySeries persists a computed daily series for a symbol
func (r *SentimentRepository) InsertDailySeries(ctx context.Context, symbol string, points []sentiment.DailyPoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO daily_sentiment (
			symbol, date, avg_sentiment, price, volume, price_source, computed_at
		)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare daily series batch")
	}

	computedAt := time.Now().UTC()
	for _, p := range points {
		if err := batch.Append(
			symbol, p.Date, p.AvgSentiment, p.Price, int32(p.Volume),
			string(p.PriceSource), computedAt,
		); err != nil {
			return errors.Wrap(err, "failed to append point to batch")
		}
	}

	return batch.Send()
}

type dailyPointRow struct {
	Date         time.Time `ch:"date"`
	AvgSentiment float64   `ch:"avg_sentiment"`
	Price        float64   `ch:"price"`
	Volume       int32     `ch:"volume"`
	PriceSource  string    `ch:"price_source"`
}

// GetDailySeries retrieves previously computed points for a symbol.
// With the ReplacingMergeTree schema the latest computation wins per day.
func (r *SentimentRepository) GetDailySeries(ctx context.Context, symbol string, from, to time.Time) ([]sentiment.DailyPoint, error) {
	query := `
		SELECT date, avg_sentiment, price, volume, price_source
		FROM daily_sentiment FINAL
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	var rows []dailyPointRow
	if err := r.conn.Select(ctx, &rows, query, symbol, from, to); err != nil {
		return nil, errors.Wrap(err, "failed to query daily series")
	}

	points := make([]sentiment.DailyPoint, len(rows))
	for i, row := range rows {
		points[i] = sentiment.DailyPoint{
			Date:         row.Date,
			AvgSentiment: row.AvgSentiment,
			Price:        row.Price,
			Volume:       int(row.Volume),
			PriceSource:  sentiment.PriceSource(row.PriceSource),
		}
	}
	return points, nil
}
