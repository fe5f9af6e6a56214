package command

import (
	"context"

	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/kafka"
	"github.com/tair/foodgram/pkg/logger"
)

// RecipeListCommand adds a recipe to, or removes it from, one of the user's lists
type RecipeListCommand struct {
	UserID   uint
	RecipeID uint
}

// toggle runs one membership transition against an existing recipe.
func toggle(
	ctx context.Context,
	repo domain.RecipeRepository,
	events kafka.EventPublisher,
	cmd RecipeListCommand,
	eventType string,
	apply func(ctx context.Context, userID, recipeID uint) error,
) (*domain.Recipe, error) {
	recipe, err := repo.FindHeader(ctx, cmd.RecipeID)
	if err != nil {
		return nil, err
	}
	if err := apply(ctx, cmd.UserID, recipe.ID); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("event_type", eventType).
		Uint("user_id", cmd.UserID).
		Uint("recipe_id", recipe.ID).
		Msg("Recipe list changed")

	publish(ctx, events, kafka.Event{EventType: eventType, UserID: cmd.UserID, RecipeID: recipe.ID})
	return recipe, nil
}

// dropShoppingList evicts the user's cached list after a cart change.
func dropShoppingList(ctx context.Context, cache domain.ShoppingListCache, userID uint) {
	if err := cache.Invalidate(ctx, userID); err != nil {
		logger.Error(ctx).Err(err).Uint("user_id", userID).Msg("Failed to invalidate shopping list")
	}
}

// AddFavoriteHandler handles the add-to-favourites command
type AddFavoriteHandler struct {
	repo   domain.RecipeRepository
	events kafka.EventPublisher
}

// NewAddFavoriteHandler creates a new add favorite handler
func NewAddFavoriteHandler(repo domain.RecipeRepository, events kafka.EventPublisher) *AddFavoriteHandler {
	return &AddFavoriteHandler{repo: repo, events: events}
}

// Handle executes the add favorite command
func (h *AddFavoriteHandler) Handle(ctx context.Context, cmd RecipeListCommand) (*domain.ShortRecipe, error) {
	recipe, err := toggle(ctx, h.repo, h.events, cmd, kafka.EventTypeFavoriteAdded, h.repo.AddFavorite)
	if err != nil {
		return nil, err
	}
	short := recipe.Short()
	return &short, nil
}

// RemoveFavoriteHandler handles the remove-from-favourites command
type RemoveFavoriteHandler struct {
	repo   domain.RecipeRepository
	events kafka.EventPublisher
}

// NewRemoveFavoriteHandler creates a new remove favorite handler
func NewRemoveFavoriteHandler(repo domain.RecipeRepository, events kafka.EventPublisher) *RemoveFavoriteHandler {
	return &RemoveFavoriteHandler{repo: repo, events: events}
}

// Handle executes the remove favorite command
func (h *RemoveFavoriteHandler) Handle(ctx context.Context, cmd RecipeListCommand) error {
	_, err := toggle(ctx, h.repo, h.events, cmd, kafka.EventTypeFavoriteRemoved, h.repo.RemoveFavorite)
	return err
}

// AddToCartHandler handles the add-to-shopping-cart command
type AddToCartHandler struct {
	repo   domain.RecipeRepository
	cache  domain.ShoppingListCache
	events kafka.EventPublisher
}

// NewAddToCartHandler creates a new add to cart handler
func NewAddToCartHandler(repo domain.RecipeRepository, cache domain.ShoppingListCache, events kafka.EventPublisher) *AddToCartHandler {
	return &AddToCartHandler{repo: repo, cache: cache, events: events}
}

// Handle executes the add to cart command
func (h *AddToCartHandler) Handle(ctx context.Context, cmd RecipeListCommand) (*domain.ShortRecipe, error) {
	recipe, err := toggle(ctx, h.repo, h.events, cmd, kafka.EventTypeCartAdded, h.repo.AddToCart)
	if err != nil {
		return nil, err
	}
	dropShoppingList(ctx, h.cache, cmd.UserID)
	short := recipe.Short()
	return &short, nil
}

// RemoveFromCartHandler handles the remove-from-shopping-cart command
type RemoveFromCartHandler struct {
	repo   domain.RecipeRepository
	cache  domain.ShoppingListCache
	events kafka.EventPublisher
}

// NewRemoveFromCartHandler creates a new remove from cart handler
func NewRemoveFromCartHandler(repo domain.RecipeRepository, cache domain.ShoppingListCache, events kafka.EventPublisher) *RemoveFromCartHandler {
	return &RemoveFromCartHandler{repo: repo, cache: cache, events: events}
}

// Handle executes the remove from cart command
func (h *RemoveFromCartHandler) Handle(ctx context.Context, cmd RecipeListCommand) error {
	if _, err := toggle(ctx, h.repo, h.events, cmd, kafka.EventTypeCartRemoved, h.repo.RemoveFromCart); err != nil {
		return err
	}
	dropShoppingList(ctx, h.cache, cmd.UserID)
	return nil
}
