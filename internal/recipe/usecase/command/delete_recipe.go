package command

import (
	"context"
	"fmt"

	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/logger"
)

// DeleteRecipeCommand represents the command to delete a recipe
type DeleteRecipeCommand struct {
	RecipeID uint
	Actor    auth.Principal
}

// DeleteRecipeHandler handles recipe deletion command
type DeleteRecipeHandler struct {
	repo   domain.RecipeRepository
	events kafka.EventPublisher
}

// NewDeleteRecipeHandler creates a new delete recipe handler
func NewDeleteRecipeHandler(repo domain.RecipeRepository, events kafka.EventPublisher) *DeleteRecipeHandler {
	return &DeleteRecipeHandler{repo: repo, events: events}
}

// Handle executes the delete recipe command
func (h *DeleteRecipeHandler) Handle(ctx context.Context, cmd DeleteRecipeCommand) error {
	recipe, err := h.repo.FindHeader(ctx, cmd.RecipeID)
	if err != nil {
		return err
	}
	if err := canModify(cmd.Actor, recipe); err != nil {
		return err
	}

	affected, err := h.repo.Delete(ctx, recipe.ID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	logger.Info(ctx).
		Uint("recipe_id", recipe.ID).
		Uint("actor_id", cmd.Actor.UserID).
		Msg("Recipe deleted")

	publish(ctx, h.events, kafka.Event{
		EventType:       kafka.EventTypeRecipeDeleted,
		UserID:          cmd.Actor.UserID,
		RecipeID:        recipe.ID,
		AffectedUserIDs: affected,
	})
	return nil
}
