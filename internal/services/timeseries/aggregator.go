package timeseries

import (
	"time"

	"cassandra/internal/domain/market"
	"cassandra/internal/domain/news"
	"cassandra/internal/domain/sentiment"
	"cassandra/pkg/errors"
	"cassandra/pkg/logger"
)

// Window is an inclusive calendar-day range in local time
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow builds a window ending today and reaching back the given
// number of days
func NewWindow(days int) Window {
	now := time.Now()
	return Window{From: now.AddDate(0, 0, -days), To: now}
}

// Validate rejects windows whose truncated start falls after the end.
// A zero-day window (from == to) is valid and yields one bucket.
func (w Window) Validate() error {
	if truncateDay(w.From).After(truncateDay(w.To)) {
		return errors.Wrapf(errors.ErrInvalidWindow, "from %s after to %s",
			w.From.Format("2006-01-02"), w.To.Format("2006-01-02"))
	}
	return nil
}

// Days returns the inclusive calendar day count of the window.
// Counted date-arithmetically: DST days are 23 or 25 hours long, so
// elapsed-duration division would miscount them.
func (w Window) Days() int {
	to := truncateDay(w.To)
	days := 1
	for d := truncateDay(w.From); d.Before(to); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// Aggregator folds scored news and daily closes into a gap-filled daily
// sentiment/price series
type Aggregator struct {
	log *logger.Logger
}

// NewAggregator creates a new daily aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		log: logger.Get().With("component", "timeseries"),
	}
}

// Aggregate produces exactly one point per calendar day of the window,
// ascending by date, regardless of how sparse the inputs are.
//
// Items without an attached sentiment, or whose local calendar day falls
// outside the window, are skipped silently. A day with no exact close in
// the price series carries the last known close forward (basePrice before
// the first known close) and is tagged PriceSourceCarried so filled gaps
// stay distinguishable from real closes. With no price data at all every
// point is tagged PriceSourceNone.
func (a *Aggregator) Aggregate(
	window Window,
	items []news.Item,
	closes []market.Candle,
	basePrice float64,
) ([]sentiment.DailyPoint, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	from := truncateDay(window.From)
	days := window.Days()

	// One bucket per calendar day, created up front so output length
	// depends only on the window
	buckets := make([]sentiment.DailyBucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		buckets[i] = sentiment.DailyBucket{Date: date}
		index[dayKey(date)] = i
	}

	dropped := 0
	for _, item := range items {
		if item.Sentiment == nil {
			dropped++
			continue
		}
		i, ok := index[dayKey(truncateDay(item.PublishedAt))]
		if !ok {
			dropped++
			continue
		}
		buckets[i].Signed = append(buckets[i].Signed, item.Sentiment.SignedValue())
		buckets[i].Volume++
	}
	if dropped > 0 {
		a.log.Debug("Items outside window or unscored", "dropped", dropped, "total", len(items))
	}

	closeByDay := make(map[string]float64, len(closes))
	for _, c := range closes {
		closeByDay[dayKey(truncateDay(c.Date))] = c.Close
	}
	hasPrices := len(closeByDay) > 0 || basePrice > 0

	points := make([]sentiment.DailyPoint, days)
	lastClose := basePrice
	for i, b := range buckets {
		point := sentiment.DailyPoint{
			Date:         b.Date,
			AvgSentiment: b.AvgSentiment(),
			Volume:       b.Volume,
		}

		if close, ok := closeByDay[dayKey(b.Date)]; ok {
			point.Price = close
			point.PriceSource = sentiment.PriceSourceClose
			lastClose = close
		} else if hasPrices {
			point.Price = lastClose
			point.PriceSource = sentiment.PriceSourceCarried
		} else {
			point.PriceSource = sentiment.PriceSourceNone
		}

		points[i] = point
	}

	return points, nil
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
