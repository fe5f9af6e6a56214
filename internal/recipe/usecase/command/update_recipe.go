package command

import (
	"context"
	"fmt"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/auth"
	"github.com/tair/foodgram/pkg/logger"
	"github.com/tair/foodgram/pkg/storage"
)

// UpdateRecipeCommand represents the command to replace a recipe.
// An empty Draft.Image keeps the current image.
type UpdateRecipeCommand struct {
	RecipeID uint
	Actor    auth.Principal
	Draft    domain.RecipeDraft
}

// UpdateRecipeHandler handles recipe update command
type UpdateRecipeHandler struct {
	repo   domain.RecipeRepository
	images storage.ImageStore
	events kafka.EventPublisher
}

// NewUpdateRecipeHandler creates a new update recipe handler
func NewUpdateRecipeHandler(repo domain.RecipeRepository, images storage.ImageStore, events kafka.EventPublisher) *UpdateRecipeHandler {
	return &UpdateRecipeHandler{repo: repo, images: images, events: events}
}

func canModify(actor auth.Principal, recipe *domain.Recipe) error {
	if actor.IsAdmin() || (actor.UserID != 0 && actor.UserID == recipe.AuthorID) {
		return nil
	}
	return apperr.Forbidden(domain.MsgNotRecipeAuthor)
}

// Handle executes the update recipe command
func (h *UpdateRecipeHandler) Handle(ctx context.Context, cmd UpdateRecipeCommand) (*domain.Recipe, error) {
	recipe, err := h.repo.FindHeader(ctx, cmd.RecipeID)
	if err != nil {
		return nil, err
	}
	if err := canModify(cmd.Actor, recipe); err != nil {
		return nil, err
	}
	if err := cmd.Draft.Validate(); err != nil {
		return nil, err
	}

	draft := cmd.Draft
	var key string
	if draft.Image != "" {
		url, stored, err := storeImage(ctx, h.images, draft.Image)
		if err != nil {
			return nil, err
		}
		draft.Image, key = url, stored
	}

	affected, err := h.repo.Replace(ctx, recipe, draft)
	if err != nil {
		if key != "" {
			discardImage(ctx, h.images, key)
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	logger.Info(ctx).
		Uint("recipe_id", recipe.ID).
		Uint("actor_id", cmd.Actor.UserID).
		Int("affected_carts", len(affected)).
		Msg("Recipe updated")

	publish(ctx, h.events, kafka.Event{
		EventType:       kafka.EventTypeRecipeUpdated,
		UserID:          cmd.Actor.UserID,
		RecipeID:        recipe.ID,
		AffectedUserIDs: affected,
	})

	return h.repo.FindByID(ctx, recipe.ID)
}
