package command

import (
	"context"

	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/logger"
)

// publish emits an event after the state change committed. A failed publish
// does not fail the command.
func publish(ctx context.Context, events kafka.EventPublisher, event kafka.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event_type", event.EventType).
			Uint("recipe_id", event.RecipeID).
			Msg("Failed to publish event")
	}
}
