package sentiment

import "time"

// Label is the closed set of sentiment classes a classifier may emit
type Label string

const (
	LabelPositive Label = "POSITIVE"
	LabelNegative Label = "NEGATIVE"
	LabelNeutral  Label = "NEUTRAL"
)

// ParseLabel validates a raw classifier label against the closed set
// Unrecognized labels are a contract violation and must be rejected at
// the classifier boundary, never mapped to a default class
func ParseLabel(raw string) (Label, bool) {
	switch Label(raw) {
	case LabelPositive, LabelNegative, LabelNeutral:
		return Label(raw), true
	}
	return "", false
}

// Observation is a single scored headline: a label plus the classifier's
// confidence in [0,1]. Immutable once produced.
type Observation struct {
	At    time.Time `json:"at"`
	Label Label     `json:"label"`
	Score float64   `json:"score"`
}

// SignedValue maps the label/confidence pair onto a single scalar in [-1,1]:
// POSITIVE keeps the score, NEGATIVE negates it, NEUTRAL is exactly 0
func (o Observation) SignedValue() float64 {
	switch o.Label {
	case LabelPositive:
		return o.Score
	case LabelNegative:
		return -o.Score
	default:
		return 0
	}
}

// PriceSource tags where a daily price came from, so filled gaps are
// never indistinguishable from real closes
type PriceSource string

const (
	PriceSourceClose   PriceSource = "close"   // exact close for that day
	PriceSourceCarried PriceSource = "carried" // last known close carried forward
	PriceSourceNone    PriceSource = "none"    // no price data at all
)

// DailyBucket accumulates one calendar day's worth of signed sentiment
// values, headline volume and price while folding
type DailyBucket struct {
	Date   time.Time
	Signed []float64
	Volume int
	Price  float64
}

// AvgSentiment is the arithmetic mean of the bucket's signed values,
// or exactly 0 for an empty bucket
func (b DailyBucket) AvgSentiment() float64 {
	if len(b.Signed) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range b.Signed {
		sum += v
	}
	return sum / float64(len(b.Signed))
}

// DailyPoint is one finished element of the gap-filled daily series
type DailyPoint struct {
	Date         time.Time   `json:"date" ch:"date"`
	AvgSentiment float64     `json:"avg_sentiment" ch:"avg_sentiment"`
	Price        float64     `json:"price" ch:"price"`
	Volume       int         `json:"volume" ch:"volume"`
	PriceSource  PriceSource `json:"price_source" ch:"price_source"`
}

// ScoredHeadline is the persisted form of a scored news item
type ScoredHeadline struct {
	Symbol      string    `ch:"symbol"`
	Headline    string    `ch:"headline"`
	Source      string    `ch:"source"`
	URL         string    `ch:"url"`
	Label       string    `ch:"label"`
	Score       float64   `ch:"score"`
	Signed      float64   `ch:"signed"`
	PublishedAt time.Time `ch:"published_at"`
	ScoredAt    time.Time `ch:"scored_at"`
}
