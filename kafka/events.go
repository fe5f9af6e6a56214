package kafka

import (
	"context"
	"time"
)

// Event is a domain event emitted after a committed state change
type Event struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    uint      `json:"user_id"`
	RecipeID  uint      `json:"recipe_id,omitempty"`
	// TargetUserID is the followee of follow events.
	TargetUserID uint `json:"target_user_id,omitempty"`
	// AffectedUserIDs lists users whose derived state depends on the change.
	AffectedUserIDs []uint    `json:"affected_user_ids,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeFavoriteAdded   = "favorite.added"
	EventTypeFavoriteRemoved = "favorite.removed"
	EventTypeCartAdded       = "cart.added"
	EventTypeCartRemoved     = "cart.removed"
	EventTypeFollowAdded     = "follow.added"
	EventTypeFollowRemoved   = "follow.removed"
	EventTypeRecipeCreated   = "recipe.created"
	EventTypeRecipeUpdated   = "recipe.updated"
	EventTypeRecipeDeleted   = "recipe.deleted"
)

// Kafka topics
const (
	TopicMemberships = "foodgram-memberships"
	TopicRecipes     = "foodgram-recipes"
)

// TopicFor routes an event type to its topic.
func TopicFor(eventType string) string {
	switch eventType {
	case EventTypeRecipeCreated, EventTypeRecipeUpdated, EventTypeRecipeDeleted:
		return TopicRecipes
	default:
		return TopicMemberships
	}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
