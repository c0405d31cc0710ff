package market

import (
	"context"
	"time"
)

// Quote is a point-in-time quote for a symbol
type Quote struct {
	Symbol        string    `json:"symbol"`
	Current       float64   `json:"current"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previous_close"`
	Timestamp     time.Time `json:"timestamp"`
}

// Candle is one daily close; only Date and Close matter to the pipeline
type Candle struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// QuoteProvider fetches the current quote for a symbol
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// CandleProvider fetches historical daily closes for a symbol
// May legitimately return an empty slice (no history for the window)
type CandleProvider interface {
	GetDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]Candle, error)
}
