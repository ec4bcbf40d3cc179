// Package messaging carries domain events over RabbitMQ to the
// notification worker.
package messaging

import (
	"context"

	"github.com/obakengshepherd/InsureClaim/internal/application"
)

// jsonPublisher is satisfied by helpers.RabbitPublisher.
type jsonPublisher interface {
	PublishJSON(ctx context.Context, eventType string, body any) error
}

// EventCounter records publish outcomes per event type.
type EventCounter interface {
	IncrEvent(eventType, result string)
}

// Publisher implements application.EventPublisher on top of a queue.
type Publisher struct {
	queue   jsonPublisher
	metrics EventCounter
}

func NewPublisher(queue jsonPublisher, metrics EventCounter) *Publisher {
	return &Publisher{queue: queue, metrics: metrics}
}

func (p *Publisher) Publish(ctx context.Context, e application.Event) error {
	err := p.queue.PublishJSON(ctx, e.Type, e)
	if p.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		p.metrics.IncrEvent(e.Type, result)
	}
	return err
}
