package services

import (
	"context"

	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
)

// publish emits a domain event. Delivery failures never fail the request.
func publish(ctx context.Context, producer queue.Publisher, log *logger.Logger, key string, eventType queue.EventType, data interface{}) {
	if err := producer.Publish(ctx, key, queue.NewEvent(eventType, data)); err != nil {
		log.WithError(err).WithField("event", eventType).Error("Failed to publish event")
	}
}
