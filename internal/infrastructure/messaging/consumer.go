package messaging

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/application"
)

// ErrPermanent marks a handler failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

// HandlerFunc processes one decoded event.
type HandlerFunc func(ctx context.Context, e application.Event) error

// Consume drains deliveries until ctx is done or the channel closes.
// Malformed and permanently failing messages are dropped; other failures
// are requeued once and dropped on redelivery.
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, handle HandlerFunc, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			process(ctx, d, handle, logger)
		}
	}
}

func process(ctx context.Context, d amqp.Delivery, handle HandlerFunc, logger *logrus.Logger) {
	log := logger.WithFields(logrus.Fields{"message_id": d.MessageId, "type": d.Type})

	var e application.Event
	if err := json.Unmarshal(d.Body, &e); err != nil {
		log.WithError(err).Warn("bad message")
		_ = d.Nack(false, false)
		return
	}
	log = log.WithField("reference", e.Reference)

	if err := handle(ctx, e); err != nil {
		requeue := !errors.Is(err, ErrPermanent) && !d.Redelivered
		log.WithError(err).WithField("requeue", requeue).Warn("handle event failed")
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
	log.Debug("event handled")
}
