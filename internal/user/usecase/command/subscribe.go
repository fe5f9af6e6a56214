package command

import (
	"context"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/user/domain"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/logger"
)

// SubscriptionCommand names a follower and the author they (un)follow
type SubscriptionCommand struct {
	FollowerID uint
	AuthorID   uint
}

func (cmd SubscriptionCommand) check(ctx context.Context, repo domain.UserRepository) error {
	if cmd.FollowerID == cmd.AuthorID {
		return apperr.Validation(domain.MsgSelfSubscribe)
	}
	_, err := repo.FindByID(ctx, cmd.AuthorID)
	return err
}

func publish(ctx context.Context, events kafka.EventPublisher, event kafka.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		logger.Warn(ctx).Err(err).Str("event_type", event.EventType).Msg("Failed to publish event")
	}
}

// SubscribeHandler handles the follow command
type SubscribeHandler struct {
	repo   domain.UserRepository
	events kafka.EventPublisher
}

// NewSubscribeHandler creates a new subscribe handler
func NewSubscribeHandler(repo domain.UserRepository, events kafka.EventPublisher) *SubscribeHandler {
	return &SubscribeHandler{repo: repo, events: events}
}

// Handle executes the subscribe command
func (h *SubscribeHandler) Handle(ctx context.Context, cmd SubscriptionCommand) error {
	if err := cmd.check(ctx, h.repo); err != nil {
		return err
	}
	if err := h.repo.Subscribe(ctx, cmd.FollowerID, cmd.AuthorID); err != nil {
		return err
	}

	logger.Info(ctx).Uint("follower_id", cmd.FollowerID).Uint("author_id", cmd.AuthorID).Msg("Subscribed")
	publish(ctx, h.events, kafka.Event{
		EventType:    kafka.EventTypeFollowAdded,
		UserID:       cmd.FollowerID,
		TargetUserID: cmd.AuthorID,
	})
	return nil
}

// UnsubscribeHandler handles the unfollow command
type UnsubscribeHandler struct {
	repo   domain.UserRepository
	events kafka.EventPublisher
}

// NewUnsubscribeHandler creates a new unsubscribe handler
func NewUnsubscribeHandler(repo domain.UserRepository, events kafka.EventPublisher) *UnsubscribeHandler {
	return &UnsubscribeHandler{repo: repo, events: events}
}

// Handle executes the unsubscribe command
func (h *UnsubscribeHandler) Handle(ctx context.Context, cmd SubscriptionCommand) error {
	if err := cmd.check(ctx, h.repo); err != nil {
		return err
	}
	if err := h.repo.Unsubscribe(ctx, cmd.FollowerID, cmd.AuthorID); err != nil {
		return err
	}

	logger.Info(ctx).Uint("follower_id", cmd.FollowerID).Uint("author_id", cmd.AuthorID).Msg("Unsubscribed")
	publish(ctx, h.events, kafka.Event{
		EventType:    kafka.EventTypeFollowRemoved,
		UserID:       cmd.FollowerID,
		TargetUserID: cmd.AuthorID,
	})
	return nil
}
