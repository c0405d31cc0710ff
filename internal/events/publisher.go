package events

import (
	"context"

	"cassandra/internal/adapters/kafka"
	"cassandra/pkg/errors"
	"cassandra/pkg/logger"
)

// Publisher publishes pipeline events to Kafka
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		log:      logger.Get().With("component", "events"),
	}
}

// PublishAnalysisCompleted publishes an analysis completed event
func (p *Publisher) PublishAnalysisCompleted(ctx context.Context, event AnalysisCompletedEvent) error {
	if p == nil || p.producer == nil {
		return nil
	}
	if err := p.producer.Publish(ctx, TopicAnalysis, event.Symbol, event); err != nil {
		return errors.Wrap(err, "publish analysis completed")
	}
	return nil
}
