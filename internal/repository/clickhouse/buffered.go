package clickhouse

import (
	"context"
	"time"

	"cassandra/internal/domain/sentiment"
	ch "cassandra/pkg/clickhouse"
)

// Compile-time check
var _ sentiment.Repository = (*BufferedSentimentRepository)(nil)

// BufferedSentimentRepository wraps SentimentRepository with write
// buffering for scored headlines. Analysis runs produce small headline
// batches; buffering coalesces them into ClickHouse-friendly inserts.
// Series writes and all reads pass straight through.
type BufferedSentimentRepository struct {
	*SentimentRepository
	writer *ch.BatchWriter
}

// NewBufferedSentimentRepository creates a buffered sentiment repository.
// Call Start before use and Stop on shutdown to drain the buffer.
func NewBufferedSentimentRepository(repo *SentimentRepository) *BufferedSentimentRepository {
	r := &BufferedSentimentRepository{SentimentRepository: repo}

	r.writer = ch.NewBatchWriter(ch.BatchWriterConfig{
		TableName:    "scored_headlines",
		MaxBatchSize: 500,
		MaxAge:       5 * time.Second,
		FlushFunc: func(ctx context.Context, batch []interface{}) error {
			headlines := make([]sentiment.ScoredHeadline, 0, len(batch))
			for _, item := range batch {
				if h, ok := item.(sentiment.ScoredHeadline); ok {
					headlines = append(headlines, h)
				}
			}
			return repo.InsertScoredHeadlines(ctx, headlines)
		},
	})

	return r
}

// Start begins the background flush loop
func (r *BufferedSentimentRepository) Start(ctx context.Context) {
	r.writer.Start(ctx)
}

// Stop drains the buffer and stops the flush loop
func (r *BufferedSentimentRepository) Stop(ctx context.Context) error {
	return r.writer.Stop(ctx)
}

// InsertScoredHeadlines enqueues headlines for batched insertion
func (r *BufferedSentimentRepository) InsertScoredHeadlines(ctx context.Context, headlines []sentiment.ScoredHeadline) error {
	for _, h := range headlines {
		if err := r.writer.Add(ctx, h); err != nil {
			return err
		}
	}
	return nil
}
