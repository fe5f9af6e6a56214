package query

import (
	"context"
	"fmt"

	"github.com/tair/foodgram/internal/recipe/domain"
	"github.com/tair/foodgram/pkg/logger"
)

// DownloadShoppingListQuery represents the query to build a user's shopping list
type DownloadShoppingListQuery struct {
	UserID uint
}

// DownloadShoppingListHandler aggregates the ingredients of every recipe in a cart
type DownloadShoppingListHandler struct {
	repo  domain.RecipeRepository
	cache domain.ShoppingListCache
}

// NewDownloadShoppingListHandler creates a new download shopping list handler
func NewDownloadShoppingListHandler(repo domain.RecipeRepository, cache domain.ShoppingListCache) *DownloadShoppingListHandler {
	return &DownloadShoppingListHandler{repo: repo, cache: cache}
}

// Handle returns the aggregated items sorted by name, then unit.
// Cache failures fall back to the store.
func (h *DownloadShoppingListHandler) Handle(ctx context.Context, q DownloadShoppingListQuery) ([]domain.ShoppingItem, error) {
	items, hit, err := h.cache.Get(ctx, q.UserID)
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("user_id", q.UserID).Msg("Shopping list cache unavailable")
	}
	if hit {
		return items, nil
	}

	// Read before the store so a concurrent invalidation makes Set a no-op.
	version, versionErr := h.cache.Version(ctx, q.UserID)

	lines, err := h.repo.ShoppingLines(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}
	items = domain.Aggregate(lines)

	if versionErr != nil {
		logger.Warn(ctx).Err(versionErr).Uint("user_id", q.UserID).Msg("Shopping list generation unavailable, not caching")
		return items, nil
	}
	if err := h.cache.Set(ctx, q.UserID, version, items); err != nil {
		logger.Warn(ctx).Err(err).Uint("user_id", q.UserID).Msg("Failed to cache shopping list")
	}
	return items, nil
}

