package command

import (
	"context"
	"fmt"

	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/kafka"
)

// InvalidateShoppingListsHandler evicts the cached shopping lists of every
// user named in a recipe.updated or recipe.deleted event.
type InvalidateShoppingListsHandler struct {
	cache domain.ShoppingListCache
}

// NewInvalidateShoppingListsHandler creates a new invalidation handler
func NewInvalidateShoppingListsHandler(cache domain.ShoppingListCache) *InvalidateShoppingListsHandler {
	return &InvalidateShoppingListsHandler{cache: cache}
}

// Handle matches kafka.EventHandler
func (h *InvalidateShoppingListsHandler) Handle(ctx context.Context, event kafka.Event) error {
	if len(event.AffectedUserIDs) == 0 {
		return nil
	}
	if err := h.cache.Invalidate(ctx, event.AffectedUserIDs...); err != nil {
		return fmt.Errorf("failed to invalidate shopping lists for recipe %d: %w", event.RecipeID, err)
	}
	return nil
}

// Register subscribes the handler to recipe change events.
func (h *InvalidateShoppingListsHandler) Register(bus interface {
	RegisterHandler(eventType string, handler kafka.EventHandler)
}) {
	bus.RegisterHandler(kafka.EventTypeRecipeUpdated, h.Handle)
	bus.RegisterHandler(kafka.EventTypeRecipeDeleted, h.Handle)
}
