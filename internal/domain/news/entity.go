package news

import (
	"context"
	"time"

	"cassandra/internal/domain/sentiment"
)

// Item is a news headline owned by the pipeline for one fetch cycle
// Sentiment is attached after scoring; nil means unscored
type Item struct {
	PublishedAt time.Time              `json:"published_at"`
	Headline    string                 `json:"headline"`
	Source      string                 `json:"source"`
	URL         string                 `json:"url"`
	Sentiment   *sentiment.Observation `json:"sentiment,omitempty"`
}

// Provider fetches recent headlines for a symbol from an external source
type Provider interface {
	GetNews(ctx context.Context, symbol string, from, to time.Time) ([]Item, error)
}

// Classifier labels a piece of text with a sentiment class and confidence
// Implementations may call a hosted model or run local inference; they
// fail with an error rather than fabricating a label
type Classifier interface {
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}
