package scoring

import (
	"context"
	"strings"
	"sync"
	"time"

	"cassandra/internal/domain/news"
	"cassandra/internal/domain/sentiment"
	"cassandra/internal/metrics"
	"cassandra/pkg/errors"
	"cassandra/pkg/logger"
)

// Service scores headline text via a pluggable classifier and normalizes
// the output to a signed sentiment observation
type Service struct {
	classifier  news.Classifier
	concurrency int
	timeout     time.Duration
	log         *logger.Logger
}

// NewService creates a new scoring service
func NewService(classifier news.Classifier, concurrency int, timeout time.Duration) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		classifier:  classifier,
		concurrency: concurrency,
		timeout:     timeout,
		log:         logger.Get().With("component", "scoring"),
	}
}

// Score classifies a single text and returns a sentiment observation.
//
// Empty or whitespace-only text deterministically scores as NEUTRAL/0 and
// is never an error; classifier failures are reported as
// ErrClassificationUnavailable. Retry policy belongs to the caller.
func (s *Service) Score(ctx context.Context, text string) (sentiment.Observation, error) {
	now := time.Now()

	if strings.TrimSpace(text) == "" {
		return sentiment.Observation{At: now, Label: sentiment.LabelNeutral, Score: 0}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rawLabel, score, err := s.classifier.Classify(ctx, text)
	metrics.ClassifierLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ClassifierCalls.WithLabelValues("error").Inc()
		return sentiment.Observation{}, errors.Wrap(errors.ErrClassificationUnavailable, err.Error())
	}

	label, ok := sentiment.ParseLabel(rawLabel)
	if !ok {
		metrics.ClassifierCalls.WithLabelValues("error").Inc()
		return sentiment.Observation{}, errors.Wrapf(errors.ErrClassificationUnavailable, "classifier returned unknown label %q", rawLabel)
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	metrics.ClassifierCalls.WithLabelValues("success").Inc()
	return sentiment.Observation{At: now, Label: label, Score: score}, nil
}

// ScoreAll scores every item's headline concurrently, bounded by the
// configured concurrency cap, and attaches observations in place.
//
// A headline whose classification fails stays unscored (Sentiment == nil);
// it is never dropped and never given a fabricated label. Returns the
// number of items that could not be scored.
func (s *Service) ScoreAll(ctx context.Context, items []news.Item) ([]news.Item, int) {
	if len(items) == 0 {
		return items, 0
	}

	scored := make([]news.Item, len(items))
	copy(scored, items)

	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, s.concurrency)
		failed    int64
		mu        sync.Mutex
	)

	for i := range scored {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			obs, err := s.Score(ctx, scored[idx].Headline)
			if err != nil {
				s.log.Warn("Headline left unscored",
					"headline", scored[idx].Headline,
					"error", err,
				)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			obs.At = scored[idx].PublishedAt
			scored[idx].Sentiment = &obs
		}(i)
	}

	wg.Wait()
	return scored, int(failed)
}

// OverallSentiment computes the mean signed value over the scored items,
// or exactly 0 when none carry a sentiment
func OverallSentiment(items []news.Item) float64 {
	sum := 0.0
	n := 0
	for _, item := range items {
		if item.Sentiment == nil {
			continue
		}
		sum += item.Sentiment.SignedValue()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
