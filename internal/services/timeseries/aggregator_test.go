package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cassandra/internal/domain/market"
	"cassandra/internal/domain/news"
	"cassandra/internal/domain/sentiment"
	"cassandra/pkg/errors"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	require.NoError(t, err)
	return parsed
}

func scoredItem(at time.Time, label sentiment.Label, score float64) news.Item {
	return news.Item{
		PublishedAt: at,
		Headline:    "headline",
		Sentiment:   &sentiment.Observation{At: at, Label: label, Score: score},
	}
}

func TestWindow_Validate(t *testing.T) {
	from := day(t, "2026-08-01")

	tests := []struct {
		name    string
		window  Window
		wantErr bool
	}{
		{"normal window", Window{From: from, To: from.AddDate(0, 0, 6)}, false},
		{"zero-day window", Window{From: from, To: from}, false},
		{"same day different hours", Window{From: from.Add(18 * time.Hour), To: from.Add(2 * time.Hour)}, false},
		{"inverted window", Window{From: from.AddDate(0, 0, 3), To: from}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.window.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidWindow)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWindow_Days(t *testing.T) {
	from := day(t, "2026-08-01")

	assert.Equal(t, 1, Window{From: from, To: from}.Days())
	assert.Equal(t, 7, Window{From: from, To: from.AddDate(0, 0, 6)}.Days())
	assert.Equal(t, 31, Window{From: from, To: from.AddDate(0, 0, 30)}.Days())
}

func TestAggregate_SeriesLengthMatchesWindow(t *testing.T) {
	agg := NewAggregator()
	from := day(t, "2026-08-01")

	for _, days := range []int{1, 7, 30} {
		window := Window{From: from, To: from.AddDate(0, 0, days-1)}

		points, err := agg.Aggregate(window, nil, nil, 0)
		require.NoError(t, err)
		assert.Len(t, points, days, "series length must equal window length even with no inputs")
	}
}

func TestAggregate_InvertedWindowRejected(t *testing.T) {
	agg := NewAggregator()
	from := day(t, "2026-08-10")
	window := Window{From: from, To: from.AddDate(0, 0, -3)}

	_, err := agg.Aggregate(window, nil, nil, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidWindow)
}

func TestAggregate_DailyMeanAndGaps(t *testing.T) {
	agg := NewAggregator()
	from := day(t, "2026-08-01")
	window := Window{From: from, To: from.AddDate(0, 0, 2)}

	// Day 1: +0.8 and -0.6 average to 0.1; day 2 is silent; day 3 is neutral
	items := []news.Item{
		scoredItem(from.Add(9*time.Hour), sentiment.LabelPositive, 0.8),
		scoredItem(from.Add(15*time.Hour), sentiment.LabelNegative, 0.6),
		scoredItem(from.AddDate(0, 0, 2).Add(11*time.Hour), sentiment.LabelNeutral, 0.9),
	}

	points, err := agg.Aggregate(window, items, nil, 0)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.InDelta(t, 0.1, points[0].AvgSentiment, 1e-9)
	assert.Equal(t, 2, points[0].Volume)

	assert.Equal(t, 0.0, points[1].AvgSentiment, "empty day is exactly zero")
	assert.Equal(t, 0, points[1].Volume)

	assert.Equal(t, 0.0, points[2].AvgSentiment, "neutral maps to zero regardless of confidence")
	assert.Equal(t, 1, points[2].Volume)
}

func TestAggregate_UnscoredAndOutOfWindowItemsSkipped(t *testing.T) {
	agg := NewAggregator()
	from := day(t, "2026-08-01")
	window := Window{From: from, To: from.AddDate(0, 0, 1)}

	items := []news.Item{
		{PublishedAt: from.Add(time.Hour), Headline: "unscored"},
		scoredItem(from.AddDate(0, 0, -1), sentiment.LabelPositive, 0.9),
		scoredItem(from.AddDate(0, 0, 5), sentiment.LabelPositive, 0.9),
		scoredItem(from.Add(time.Hour), sentiment.LabelPositive, 0.5),
	}

	points, err := agg.Aggregate(window, items, nil, 0)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 1, points[0].Volume)
	assert.InDelta(t, 0.5, points[0].AvgSentiment, 1e-9)
	assert.Equal(t, 0, points[1].Volume)
}

func TestAggregate_PriceCarryForward(t *testing.T) {
	agg := NewAggregator()
	from := day(t, "2026-08-01")
	window := Window{From: from, To: from.AddDate(0, 0, 4)}

	closes := []market.Candle{
		{Date: from.AddDate(0, 0, 1), Close: 110},
		{Date: from.AddDate(0, 0, 3), Close: 120},
	}

	points, err := agg.Aggregate(window, nil, closes, 100)
	require.NoError(t, err)
	require.Len(t, points, 5)

	// Base price before the first close, then carry-forward across gaps
	assert.Equal(t, 100.0, points[0].Price)
	assert.Equal(t, sentiment.PriceSourceCarried, points[0].PriceSource)

	assert.Equal(t, 110.0, points[1].Price)
	assert.Equal(t, sentiment.PriceSourceClose, points[1].PriceSource)

	assert.Equal(t, 110.0, points[2].Price)
	assert.Equal(t, sentiment.PriceSourceCarried, points[2].PriceSource)

	assert.Equal(t, 120.0, points[3].Price)
	assert.Equal(t, sentiment.PriceSourceClose, points[3].PriceSource)

	assert.Equal(t, 120.0, points[4].Price)
	assert.Equal(t, sentiment.PriceSourceCarried, points[4].PriceSource)
}

func TestAggregate_NoPriceDataAtAll(t *testing.T) {
	agg := NewAggregator()
	from := day(t, "2026-08-01")
	window := Window{From: from, To: from.AddDate(0, 0, 2)}

	points, err := agg.Aggregate(window, nil, nil, 0)
	require.NoError(t, err)

	for _, p := range points {
		assert.Equal(t, sentiment.PriceSourceNone, p.PriceSource)
		assert.Equal(t, 0.0, p.Price)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	agg := NewAggregator()
	from := day(t, "2026-08-01")
	window := Window{From: from, To: from.AddDate(0, 0, 6)}

	items := []news.Item{
		scoredItem(from.Add(time.Hour), sentiment.LabelPositive, 0.7),
		scoredItem(from.AddDate(0, 0, 3), sentiment.LabelNegative, 0.4),
	}
	closes := []market.Candle{{Date: from, Close: 42}}

	first, err := agg.Aggregate(window, items, closes, 40)
	require.NoError(t, err)

	second, err := agg.Aggregate(window, items, closes, 40)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same inputs must produce identical series")
}

func TestAggregate_DatesAscending(t *testing.T) {
	agg := NewAggregator()
	from := day(t, "2026-08-01")
	window := Window{From: from, To: from.AddDate(0, 0, 9)}

	points, err := agg.Aggregate(window, nil, nil, 0)
	require.NoError(t, err)

	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Date.After(points[i-1].Date))
		assert.Equal(t, points[i-1].Date.AddDate(0, 0, 1), points[i].Date,
			"points advance by exactly one calendar day")
	}
}

func TestWindow_DaysAcrossDSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	restore := time.Local
	time.Local = loc
	defer func() { time.Local = restore }()

	// 2025-03-09 is a 23-hour day, 2025-11-02 a 25-hour one; the
	// inclusive count must not depend on elapsed wall-clock duration
	spring := Window{
		From: time.Date(2025, 3, 8, 0, 0, 0, 0, loc),
		To:   time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
	}
	assert.Equal(t, 3, spring.Days())

	fall := Window{
		From: time.Date(2025, 11, 1, 0, 0, 0, 0, loc),
		To:   time.Date(2025, 11, 3, 0, 0, 0, 0, loc),
	}
	assert.Equal(t, 3, fall.Days())
}

func TestAggregate_SpansDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	restore := time.Local
	time.Local = loc
	defer func() { time.Local = restore }()

	agg := NewAggregator()
	window := Window{
		From: time.Date(2025, 3, 8, 0, 0, 0, 0, loc),
		To:   time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
	}

	// Item on the final day of the window, after the clock change
	items := []news.Item{
		scoredItem(time.Date(2025, 3, 10, 9, 0, 0, 0, loc), sentiment.LabelPositive, 0.7),
	}

	points, err := agg.Aggregate(window, items, nil, 0)
	require.NoError(t, err)
	require.Len(t, points, 3, "short DST day must not shrink the series")

	last := points[2]
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), last.Date)
	assert.Equal(t, 1, last.Volume)
	assert.InDelta(t, 0.7, last.AvgSentiment, 1e-9)
}
